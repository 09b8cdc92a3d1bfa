package approval

import (
	"context"
	"strconv"
	"time"

	"bank-backoffice/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PendingSweeper periodically reports Pending approvals that have been
// waiting longer than the configured age, so operations can chase the
// reviewer. It observes only; it never mutates workflow state.
type PendingSweeper struct {
	Repo   ApprovalRepository
	Logger *zap.Logger

	maxAge    time.Duration
	scheduler *cron.Cron
}

func NewPendingSweeper(cfg *config.Config, repo ApprovalRepository, logger *zap.Logger) *PendingSweeper {
	hours, err := strconv.Atoi(cfg.PendingApprovalMaxAgeHours)
	if err != nil || hours < 1 {
		hours = 24
	}

	return &PendingSweeper{
		Repo:   repo,
		Logger: logger,
		maxAge: time.Duration(hours) * time.Hour,
	}
}

func (s *PendingSweeper) InitializeScheduler(ctx context.Context) error {
	s.scheduler = cron.New()

	_, err := s.scheduler.AddFunc("@hourly", s.sweep)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	s.Logger.Info("pending approval sweeper started",
		zap.Duration("max_age", s.maxAge))
	return nil
}

func (s *PendingSweeper) StopScheduler() error {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	return nil
}

func (s *PendingSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.maxAge)
	stale, err := s.Repo.ListStalePending(ctx, cutoff)
	if err != nil {
		s.Logger.Error("pending approval sweep failed", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	ids := make([]string, 0, len(stale))
	for _, a := range stale {
		ids = append(ids, a.ID.Hex())
	}
	s.Logger.Warn("approvals pending past their review window",
		zap.Int("count", len(stale)),
		zap.Strings("approval_ids", ids),
		zap.Time("cutoff", cutoff))
}
