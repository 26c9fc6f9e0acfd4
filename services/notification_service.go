package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/notify"
	"github.com/Dosada05/league-system/repositories"
	"golang.org/x/sync/errgroup"
)

var ErrDispatcherStopped = errors.New("notification dispatcher is stopped")

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	Timeout     time.Duration
	FrontendURL string
}

type notificationJob struct {
	match models.Match
}

// NotificationDispatcher delivers match notifications from a bounded queue on
// a fixed set of workers. Enqueueing never blocks; a full queue drops the job.
type NotificationDispatcher struct {
	players repositories.PlayerRepository
	email   notify.EmailSender
	sms     notify.SMSSender
	cfg     DispatcherConfig
	logger  *slog.Logger

	jobs    chan notificationJob
	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewNotificationDispatcher builds a dispatcher. email and sms may be nil to
// disable a channel.
func NewNotificationDispatcher(
	cfg DispatcherConfig,
	players repositories.PlayerRepository,
	email notify.EmailSender,
	sms notify.SMSSender,
	logger *slog.Logger,
) *NotificationDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &NotificationDispatcher{
		players: players,
		email:   email,
		sms:     sms,
		cfg:     cfg,
		logger:  logger,
		jobs:    make(chan notificationJob, cfg.QueueSize),
	}
}

func (d *NotificationDispatcher) Start() {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Info("notification dispatcher started",
		slog.Int("workers", d.cfg.Workers),
		slog.Int("queue_size", d.cfg.QueueSize),
		slog.Bool("email_enabled", d.email != nil),
		slog.Bool("sms_enabled", d.sms != nil))
}

// Stop stops accepting jobs and waits for queued ones to drain or for ctx to
// expire.
func (d *NotificationDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *NotificationDispatcher) NotifyMatchScheduled(match *models.Match) {
	if match == nil {
		return
	}
	if err := d.enqueue(notificationJob{match: *match}); err != nil {
		d.logger.Warn("match notification dropped",
			slog.String("match_id", match.ID),
			slog.Any("error", err))
	}
}

func (d *NotificationDispatcher) enqueue(job notificationJob) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrDispatcherStopped
	}
	select {
	case d.jobs <- job:
		return nil
	default:
		return errors.New("notification queue is full")
	}
}

func (d *NotificationDispatcher) worker(id int) {
	defer d.wg.Done()
	for job := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
		d.dispatchMatch(ctx, job.match)
		cancel()
	}
	d.logger.Debug("notification worker exiting", slog.Int("worker", id))
}

// dispatchMatch notifies both sides of a match concurrently.
func (d *NotificationDispatcher) dispatchMatch(ctx context.Context, match models.Match) {
	var g errgroup.Group
	g.Go(func() error {
		return d.NotifySchedule(ctx, match.Player1ID, match.Player2ID, match.ID, match.ScheduledDate)
	})
	g.Go(func() error {
		return d.NotifySchedule(ctx, match.Player2ID, match.Player1ID, match.ID, match.ScheduledDate)
	})
	if err := g.Wait(); err != nil {
		d.logger.Warn("match notification incomplete", slog.String("match_id", match.ID), slog.Any("error", err))
	}
}

// NotifySchedule emails the player and, when a phone number is on file, sends
// an SMS. Channel failures are independent and not retried; they are joined
// into the returned error.
func (d *NotificationDispatcher) NotifySchedule(ctx context.Context, playerID, opponentID, matchID string, scheduledDate time.Time) error {
	logger := d.logger.With(slog.String("player_id", playerID), slog.String("match_id", matchID))

	player, err := d.players.GetByID(ctx, playerID)
	if err != nil {
		logger.Warn("notification skipped, player not loaded", slog.Any("error", err))
		return fmt.Errorf("load player %s: %w", playerID, err)
	}

	opponentName := "your opponent"
	if opponentID != "" {
		if opponent, err := d.players.GetByID(ctx, opponentID); err == nil {
			opponentName = opponent.DisplayName
		} else {
			logger.Debug("opponent not loaded for notification", slog.Any("error", err))
		}
	}

	msg, err := notify.BuildMatchScheduled(notify.MatchScheduledDetails{
		PlayerName:    player.DisplayName,
		OpponentName:  opponentName,
		ScheduledDate: scheduledDate,
		FixturesURL:   d.fixturesURL(),
	})
	if err != nil {
		logger.Error("failed to build match notification", slog.Any("error", err))
		return fmt.Errorf("build notification: %w", err)
	}

	var errs []error
	if d.email != nil && player.Email != "" {
		if err := d.email.Send(ctx, player.Email, msg.Subject, msg.HTMLBody, msg.TextBody); err != nil {
			logger.Error("email notification failed", slog.Any("error", err))
			errs = append(errs, fmt.Errorf("email %s: %w", playerID, err))
		} else {
			logger.Info("email notification sent")
		}
	}

	if d.sms != nil && player.Phone != nil && *player.Phone != "" {
		if err := d.sms.SendSMS(ctx, *player.Phone, msg.SMSBody); err != nil {
			logger.Error("sms notification failed", slog.Any("error", err))
			errs = append(errs, fmt.Errorf("sms %s: %w", playerID, err))
		} else {
			logger.Info("sms notification sent")
		}
	}
	return errors.Join(errs...)
}

func (d *NotificationDispatcher) fixturesURL() string {
	base := strings.TrimRight(d.cfg.FrontendURL, "/")
	if base == "" {
		return ""
	}
	return base + "/fixtures"
}
