package notifications

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ripplehq/ripple/backend/internal/repositories"
	"github.com/ripplehq/ripple/backend/pkg/logger"
)

// ReadRetention is how long a read notification survives before the sweep
// removes it.
const ReadRetention = 24 * time.Hour

const sweepTimeout = 30 * time.Second

// Reaper periodically deletes notifications that have been read for longer
// than the retention window. Running it as a durable query instead of a
// per-record timer means pending cleanups survive process restarts, and an
// explicit user delete simply leaves nothing for the sweep to match.
type Reaper struct {
	store     repositories.NotificationRepository
	retention time.Duration
	cron      *cron.Cron
	log       *zap.Logger
}

// NewReaper constructs a Reaper with the given retention window.
func NewReaper(store repositories.NotificationRepository, retention time.Duration) *Reaper {
	if retention <= 0 {
		retention = ReadRetention
	}
	return &Reaper{
		store:     store,
		retention: retention,
		log:       logger.WithModule("reaper"),
	}
}

// Start schedules the sweep with a cron spec such as "@every 10m".
func (r *Reaper) Start(spec string) error {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(spec, r.Sweep); err != nil {
		return err
	}
	r.cron.Start()
	r.log.Info("read-notification sweep scheduled", zap.String("spec", spec))
	return nil
}

// Stop halts the scheduled sweep, waiting for a running one to finish.
func (r *Reaper) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// Sweep deletes every notification read before the retention cutoff.
func (r *Reaper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	cutoff := time.Now().Add(-r.retention)
	deleted, err := r.store.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		r.log.Error("expire read notifications", zap.Error(err))
		return
	}
	if deleted > 0 {
		r.log.Info("expired read notifications", zap.Int64("count", deleted))
	}
}
