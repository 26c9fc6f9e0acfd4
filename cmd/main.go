package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/league-system/config"
	"github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/identity"
	"github.com/Dosada05/league-system/live"
	"github.com/Dosada05/league-system/notify"
	"github.com/Dosada05/league-system/repositories"
	api "github.com/Dosada05/league-system/routes"
	"github.com/Dosada05/league-system/services"
	"github.com/Dosada05/league-system/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("identity_provider", cfg.Identity.Provider))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.RunMigrations {
		if err := db.Migrate(dbConn); err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	gateway, err := newIdentityGateway(rootCtx, cfg)
	if err != nil {
		logger.Error("failed to initialize identity gateway", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("identity gateway initialized", slog.String("provider", cfg.Identity.Provider))

	var avatarUploader storage.FileUploader
	if cfg.R2.Configured() {
		avatarUploader, err = storage.NewCloudflareR2Uploader(rootCtx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, avatar uploads disabled")
	}

	emailSender, smsSender := newNotificationChannels(rootCtx, cfg, logger)

	wsHub := live.NewHub(logger)
	go wsHub.Run(rootCtx)
	logger.Info("WebSocket Hub started")

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	logger.Info("Repositories initialized")

	dispatcher := services.NewNotificationDispatcher(services.DispatcherConfig{
		Workers:     cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
		Timeout:     cfg.Notification.Timeout,
		FrontendURL: cfg.FrontendURL,
	}, playerRepo, emailSender, smsSender, logger)
	dispatcher.Start()

	txRunner := db.NewTxRunner(dbConn)
	standingsService := services.NewStandingsService(txRunner, standingRepo, matchRepo, wsHub, logger)
	matchService := services.NewMatchService(matchRepo, standingsService, dispatcher, wsHub, logger)
	playerService := services.NewPlayerService(playerRepo, avatarUploader, logger)
	logger.Info("Services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, gateway, cfg.CORSAllowedOrigins, api.Handlers{
		Player: handlers.NewPlayerHandler(playerService),
		Match:  handlers.NewMatchHandler(matchService),
		League: handlers.NewLeagueHandler(standingsService),
		Dashboard: handlers.NewDashboardHandler(standingsService, dbConn, handlers.PublicConfig{
			IdentityProviderURL: cfg.Identity.ProviderURL,
			IdentityPublicKey:   cfg.Identity.PublicKey,
			APIBaseURL:          cfg.APIBaseURL,
		}),
		WebSocket: handlers.NewWebSocketHandler(wsHub, standingsService, cfg.CORSAllowedOrigins),
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}

		if err := dispatcher.Stop(shutdownCtx); err != nil {
			logger.Warn("notification queue not drained before shutdown", slog.Any("error", err))
		}
	}

	cancelRoot()
	logger.Info("application exited")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func newIdentityGateway(ctx context.Context, cfg *config.Config) (identity.Gateway, error) {
	switch cfg.Identity.Provider {
	case config.IdentityProviderCognito:
		awsCfg, err := cfg.AWS.SDKConfig(ctx, cfg.Identity.CognitoRegion)
		if err != nil {
			return nil, err
		}
		return identity.NewCognitoGateway(awsCfg), nil
	default:
		gateway, err := identity.NewJWTGateway(cfg.Identity.JWTSecret, cfg.Identity.ProviderURL)
		if err != nil {
			return nil, err
		}
		return gateway, nil
	}
}

// newNotificationChannels builds the enabled senders. A channel that is not
// configured stays nil and the dispatcher skips it.
func newNotificationChannels(ctx context.Context, cfg *config.Config, logger *slog.Logger) (notify.EmailSender, notify.SMSSender) {
	if cfg.AWS.Region == "" {
		logger.Warn("AWS_REGION not set, email and SMS notifications disabled")
		return nil, nil
	}
	awsCfg, err := cfg.AWS.SDKConfig(ctx, "")
	if err != nil {
		logger.Error("failed to load AWS config, notifications disabled", slog.Any("error", err))
		return nil, nil
	}
	if cfg.AWS.Configured() {
		logger.Info("AWS clients using static credentials", slog.String("region", cfg.AWS.Region))
	} else {
		logger.Info("AWS clients using default credential chain", slog.String("region", cfg.AWS.Region))
	}

	var emailSender notify.EmailSender
	if cfg.Notification.EmailSender != "" {
		ses, err := notify.NewSESSender(awsCfg, cfg.Notification.EmailSender)
		if err != nil {
			logger.Error("failed to initialize SES sender", slog.Any("error", err))
		} else {
			emailSender = ses
			logger.Info("SES email notifications enabled")
		}
	}

	var smsSender notify.SMSSender
	if cfg.Notification.SMSSenderID != "" {
		sns, err := notify.NewSNSSender(awsCfg, cfg.Notification.SMSSenderID)
		if err != nil {
			logger.Error("failed to initialize SNS sender", slog.Any("error", err))
		} else {
			smsSender = sns
			logger.Info("SNS SMS notifications enabled")
		}
	}
	return emailSender, smsSender
}
