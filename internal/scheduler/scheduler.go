package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/logistics/internal/config"
	"github.com/mamadbah2/logistics/internal/service/reporting"
)

const publishTimeout = 2 * time.Minute

// Publisher runs one reporting cycle.
type Publisher interface {
	Publish(ctx context.Context, source string) (reporting.PublishResult, error)
}

// Scheduler periodically reloads the inventory and publishes a cost report.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	publisher Publisher
	logger    *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, publisher Publisher, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		schedule:  cfg.CronSchedule,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// Start registers the publish job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.publish); err != nil {
		return fmt.Errorf("schedule cost report %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) publish() {
	s.logger.Info("publishing scheduled cost report")
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	result, err := s.publisher.Publish(ctx, "scheduler")
	if err != nil {
		s.logger.Error("scheduled cost report incomplete", zap.Error(err))
		return
	}

	s.logger.Info("scheduled cost report published",
		zap.String("snapshot_id", result.SnapshotID),
		zap.String("message_id", result.MessageID))
}
