package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"storedash/internal/dashboard"
	"storedash/internal/models"
	"storedash/internal/pkg/dedup"
)

const pollTimeout = 45 * time.Second

// Notifier delivers a newly awaiting payment to the store admins.
type Notifier interface {
	NotifyPayment(ctx context.Context, p models.Payment, currency string) error
}

// Scheduler runs the payment poller.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	ctrl     *dashboard.Controller
	notifier Notifier
	deduper  dedup.Deduper
	logger   *zap.Logger
}

// New creates a scheduler. spec uses the six-field format with seconds.
func New(spec string, ctrl *dashboard.Controller, notifier Notifier, deduper dedup.Deduper, logger *zap.Logger) *Scheduler {
	cl := zapCronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:     spec,
		ctrl:     ctrl,
		notifier: notifier,
		deduper:  deduper,
		logger:   logger,
	}
}

// Start registers the poller and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("Starting cron scheduler...", zap.String("poll_spec", s.spec))

	if _, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Debug("Running: poll awaiting payments")
		ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
		defer cancel()
		if _, err := s.PollPayments(ctx); err != nil {
			s.logger.Warn("Payment poll failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid POLL_SPEC %q: %w", s.spec, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler. The returned context is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// PollPayments notifies admins about each awaiting payment they have not
// been told about yet and returns how many notices went out. It does
// nothing while logged out. A payment whose notice fails is retried on the
// next tick.
func (s *Scheduler) PollPayments(ctx context.Context) (int, error) {
	if !s.ctrl.Session().LoggedIn() {
		return 0, nil
	}

	payments, err := s.ctrl.FetchAwaiting(ctx)
	if err != nil {
		return 0, err
	}

	currency := ""
	if v := s.ctrl.StoreView(); v != nil {
		currency = v.Currency
	}

	sent := 0
	for _, p := range payments {
		if !p.Actionable() {
			continue
		}
		key := "payment:" + p.ID.String()
		seen, err := s.deduper.Seen(ctx, key)
		if err != nil {
			// A duplicate notice beats a missed one.
			s.logger.Warn("Dedup check failed, notifying anyway", zap.String("key", key), zap.Error(err))
		} else if seen {
			continue
		}

		if err := s.notifier.NotifyPayment(ctx, p, currency); err != nil {
			s.logger.Error("Failed to notify admins", zap.Stringer("payment_id", p.ID), zap.Error(err))
			if ferr := s.deduper.Forget(ctx, key); ferr != nil {
				s.logger.Warn("Failed to reset dedup key", zap.String("key", key), zap.Error(ferr))
			}
			continue
		}
		sent++
		s.logger.Info("Admins notified of awaiting payment",
			zap.Stringer("payment_id", p.ID),
			zap.Stringer("order_id", p.OrderID),
		)
	}
	return sent, nil
}

// zapCronLogger adapts zap to cron.Logger.
type zapCronLogger struct {
	logger *zap.Logger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
