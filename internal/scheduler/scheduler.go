package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrifleet/internal/config"
	"github.com/mamadbah2/agrifleet/internal/domain/models"
)

const (
	snapshotTimeout = 5 * time.Minute
	reportTimeout   = 2 * time.Minute
)

// FleetPersister saves the state of every registered record.
type FleetPersister interface {
	PersistAll(ctx context.Context) error
}

// Reporter builds the weekly digest.
type Reporter interface {
	GenerateWeeklyReport(ctx context.Context, now time.Time) (models.WeeklyReport, error)
}

// ReportArchive keeps generated reports.
type ReportArchive interface {
	SaveWeeklyReport(ctx context.Context, report models.WeeklyReport) error
}

// Notifier delivers the digest to the fleet manager.
type Notifier interface {
	NotifyManager(ctx context.Context, message string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.SchedulerConfig
	fleet    FleetPersister
	reporter Reporter
	archive  ReportArchive
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance. archive and notifier are
// optional; the weekly report is still logged without them.
func NewScheduler(cfg config.SchedulerConfig, fleet FleetPersister, reporter Reporter, archive ReportArchive, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		fleet:    fleet,
		reporter: reporter,
		archive:  archive,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().In(loc) },
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("snapshot_schedule", s.cfg.SnapshotSchedule),
		zap.String("report_schedule", s.cfg.ReportSchedule),
		zap.String("timezone", s.cfg.Timezone))

	if _, err := s.cron.AddFunc(s.cfg.SnapshotSchedule, s.persistFleet); err != nil {
		return fmt.Errorf("schedule fleet snapshot: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.ReportSchedule, s.sendWeeklyReport); err != nil {
		return fmt.Errorf("schedule weekly report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) persistFleet() {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	if err := s.fleet.PersistAll(ctx); err != nil {
		s.logger.Error("fleet snapshot incomplete", zap.Error(err))
		return
	}
	s.logger.Info("fleet snapshot saved")
}

func (s *Scheduler) sendWeeklyReport() {
	s.logger.Info("generating weekly report")
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	report, err := s.reporter.GenerateWeeklyReport(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to generate weekly report", zap.Error(err))
		return
	}

	if s.archive != nil {
		if err := s.archive.SaveWeeklyReport(ctx, report); err != nil {
			s.logger.Error("failed to archive weekly report", zap.Error(err))
		}
	}

	if s.notifier == nil {
		s.logger.Info("weekly report ready", zap.String("report", report.Text))
		return
	}
	if err := s.notifier.NotifyManager(ctx, report.Text); err != nil {
		s.logger.Error("failed to send weekly report", zap.Error(err))
	} else {
		s.logger.Info("weekly report sent successfully")
	}
}
