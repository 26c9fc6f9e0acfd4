package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	IdentityProviderJWT     = "jwt"
	IdentityProviderCognito = "cognito"
)

// Config holds every runtime setting of the league server.
type Config struct {
	DatabaseURL   string `envconfig:"DATABASE_URL" required:"true"`
	ServerPort    int    `envconfig:"SERVER_PORT" default:"3001"`
	RunMigrations bool   `envconfig:"RUN_MIGRATIONS" default:"true"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	APIBaseURL         string   `envconfig:"API_BASE_URL" default:"http://localhost:3001"`
	FrontendURL        string   `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`

	// Nested groups are read with their group name as prefix,
	// e.g. IDENTITY_PROVIDER, AWS_REGION, NOTIFY_WORKERS, R2_BUCKET_NAME.
	Identity     Identity     `envconfig:"IDENTITY"`
	AWS          AWS          `envconfig:"AWS"`
	Notification Notification `envconfig:"NOTIFY"`
	R2           R2           `envconfig:"R2"`
}

type Identity struct {
	Provider      string `envconfig:"PROVIDER" default:"jwt"`
	ProviderURL   string `envconfig:"PROVIDER_URL"`
	JWTSecret     string `envconfig:"JWT_SECRET"`
	PublicKey     string `envconfig:"PUBLIC_KEY"`
	CognitoRegion string `envconfig:"COGNITO_REGION"`
}

type AWS struct {
	Region          string `envconfig:"REGION"`
	AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
}

// Configured reports whether static credentials for AWS clients are present.
func (a AWS) Configured() bool {
	return a.Region != "" && a.AccessKeyID != "" && a.SecretAccessKey != ""
}

type Notification struct {
	EmailSender string        `envconfig:"EMAIL_SENDER"`
	SMSSenderID string        `envconfig:"SMS_SENDER_ID"`
	Workers     int           `envconfig:"WORKERS" default:"2"`
	QueueSize   int           `envconfig:"QUEUE_SIZE" default:"100"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

type R2 struct {
	AccountID       string `envconfig:"ACCOUNT_ID"`
	AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
	BucketName      string `envconfig:"BUCKET_NAME"`
	PublicBaseURL   string `envconfig:"PUBLIC_BASE_URL"`
}

// Configured reports whether avatar uploads can be enabled.
func (r R2) Configured() bool {
	return r.AccountID != "" && r.AccessKeyID != "" && r.SecretAccessKey != "" && r.BucketName != "" && r.PublicBaseURL != ""
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}

	switch c.Identity.Provider {
	case IdentityProviderJWT:
		if c.Identity.JWTSecret == "" {
			return fmt.Errorf("IDENTITY_JWT_SECRET is required when IDENTITY_PROVIDER=%s", IdentityProviderJWT)
		}
	case IdentityProviderCognito:
		if c.Identity.CognitoRegion == "" {
			return fmt.Errorf("IDENTITY_COGNITO_REGION is required when IDENTITY_PROVIDER=%s", IdentityProviderCognito)
		}
	default:
		return fmt.Errorf("unsupported IDENTITY_PROVIDER %q", c.Identity.Provider)
	}

	if c.Notification.Workers <= 0 {
		return fmt.Errorf("NOTIFY_WORKERS must be positive, got %d", c.Notification.Workers)
	}
	if c.Notification.QueueSize < 0 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE must not be negative, got %d", c.Notification.QueueSize)
	}
	if c.Notification.Timeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be positive, got %s", c.Notification.Timeout)
	}
	return nil
}
