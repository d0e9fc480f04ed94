package worker

import (
	"context"
	"log"
	"time"

	"course-commerce/internal/service"
)

// Sweeper fails stale pending orders on a fixed interval until its context
// is cancelled.
type Sweeper struct {
	svc      service.SweepService
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
}

func NewSweeper(svc service.SweepService, interval, maxAge time.Duration) *Sweeper {
	return &Sweeper{svc: svc, interval: interval, maxAge: maxAge, now: time.Now}
}

// Run sweeps once immediately, then on every tick. It returns when ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	log.Printf("Stale sweeper started (every %s, max age %s)", s.interval, s.maxAge)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Println("Stale sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.svc.SweepStale(ctx, s.now(), s.maxAge); err != nil {
		log.Printf("sweep error: %v", err)
	}
}
