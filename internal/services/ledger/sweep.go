package ledger

import (
	"context"
	"time"

	"invoice-ledger-backend/internal/repository"

	"go.uber.org/zap"
)

type SweepResult struct {
	LineItems int64 `json:"line_items"`
	Payments  int64 `json:"payments"`
}

// Sweeper removes line items and payments left behind without an invoice.
// Deletion is transactional, so this only finds work after manual edits or
// an interrupted cascade on a store without transactions.
type Sweeper struct {
	repo     repository.Repository
	log      *zap.Logger
	interval time.Duration
}

func NewSweeper(repo repository.Repository, log *zap.Logger, interval time.Duration) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		repo:     repo,
		log:      log.Named("ledger.sweeper"),
		interval: interval,
	}
}

func (s *Sweeper) SweepOrphans(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	err := s.repo.Transaction(ctx, func(repo repository.Repository) error {
		lines, payments, err := repo.DeleteOrphans(ctx)
		if err != nil {
			return err
		}
		result = SweepResult{LineItems: lines, Payments: payments}
		return nil
	})
	if err != nil {
		return SweepResult{}, classify("SweepOrphans", err)
	}

	if result.LineItems > 0 || result.Payments > 0 {
		s.log.Warn("orphaned ledger rows removed",
			zap.Int64("line_items", result.LineItems),
			zap.Int64("payments", result.Payments),
		)
	}
	return result, nil
}

// RunForever sweeps on every tick until ctx is cancelled.
func (s *Sweeper) RunForever(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.SweepOrphans(ctx); err != nil {
			s.log.Warn("orphan sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
