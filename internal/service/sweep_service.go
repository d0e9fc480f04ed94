package service

import (
	"context"
	"log"
	"time"

	"course-commerce/internal/events"
	"course-commerce/internal/model"
	"course-commerce/internal/repository"

	"gorm.io/gorm"
)

const DefaultSweepMaxAge = 12 * time.Hour

type SweepService interface {
	// SweepStale fails every pending row created before now-maxAge and
	// returns the number of rows moved.
	SweepStale(ctx context.Context, now time.Time, maxAge time.Duration) (int64, error)
}

type sweepService struct {
	db        *gorm.DB
	txRepo    repository.TransactionRepository
	publisher events.Publisher
}

func NewSweepService(db *gorm.DB, txRepo repository.TransactionRepository, publisher events.Publisher) SweepService {
	return &sweepService{db: db, txRepo: txRepo, publisher: publisher}
}

func (s *sweepService) SweepStale(ctx context.Context, now time.Time, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		maxAge = DefaultSweepMaxAge
	}
	cutoff := now.Add(-maxAge).UTC()

	var (
		orderIDs []string
		affected int64
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if orderIDs, err = s.txRepo.StaleOrderIDs(tx, cutoff); err != nil {
			return err
		}
		if len(orderIDs) == 0 {
			return nil
		}
		affected, err = s.txRepo.MarkStaleFailed(tx, cutoff)
		return err
	})
	if err != nil {
		log.Printf("Stale sweep failed: %v", err)
		return 0, err
	}

	if affected > 0 {
		log.Printf("Stale sweep: %d row(s) in %d order(s) marked failed (cutoff %s)",
			affected, len(orderIDs), cutoff.Format(time.RFC3339))
	}
	for _, id := range orderIDs {
		rows, err := s.txRepo.FindByOrderID(id)
		if err != nil {
			log.Printf("Reload %s after sweep failed: %v", id, err)
			continue
		}
		if model.OrderStatus(rows) != model.StatusFailed {
			continue
		}
		publish(ctx, s.publisher, events.OrderExpired, rows, now)
	}
	return affected, nil
}
