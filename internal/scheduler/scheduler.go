package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfeed/internal/config"
	"github.com/mamadbah2/dairyfeed/internal/repository/mongodb"
)

// Scheduler manages the periodic maintenance tasks: purging expired OTP
// challenges and rolling up per-organization usage counters.
type Scheduler struct {
	cron   *cron.Cron
	auth   mongodb.AuthRepository
	usage  mongodb.UsageRepository
	cfg    config.JobsConfig
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.JobsConfig, auth mongodb.AuthRepository, usage mongodb.UsageRepository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:   cron.New(),
		auth:   auth,
		usage:  usage,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.OTPPurgeSchedule, s.purgeExpiredOTPs); err != nil {
		s.logger.Error("failed to schedule otp purge", zap.Error(err))
	}
	if _, err := s.cron.AddFunc(s.cfg.UsageRollupSchedule, s.rollupUsage); err != nil {
		s.logger.Error("failed to schedule usage rollup", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) purgeExpiredOTPs() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	removed, err := s.auth.PurgeExpiredOTPs(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to purge otp challenges", zap.Error(err))
		return
	}
	s.logger.Info("otp challenges purged", zap.Int64("removed", removed))
}

func (s *Scheduler) rollupUsage() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	records, err := s.usage.RollupDay(ctx, yesterday)
	if err != nil {
		s.logger.Error("failed to roll up usage", zap.Error(err))
		return
	}

	var total, denied int64
	for _, rec := range records {
		total += rec.Requests
		denied += rec.Denied
	}

	s.logger.Info("daily usage rollup",
		zap.String("day", yesterday.Format("2006-01-02")),
		zap.Int("organizations", len(records)),
		zap.Int64("requests", total),
		zap.Int64("denied", denied))
}
