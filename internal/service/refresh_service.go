package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RefreshService re-evaluates time-relative derived views on a fixed tick
// (offer expiry, "ends in Xh" labels). Every tick is read-only: stored
// records are never mutated, only presented state changes.
type RefreshService struct {
	offers   *OfferService
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
	wg      sync.WaitGroup
}

// NewRefreshService constructs RefreshService. Intervals below one second
// are raised to one minute.
func NewRefreshService(offers *OfferService, interval time.Duration, logger *zap.Logger) *RefreshService {
	if interval < time.Second {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshService{offers: offers, interval: interval, logger: logger}
}

// Start launches the tick loop. Calling Start twice is a no-op.
func (s *RefreshService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop halts the tick loop and waits for it to exit.
func (s *RefreshService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.started = false
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *RefreshService) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *RefreshService) tick(ctx context.Context) {
	expired := s.offers.CountExpired(ctx)
	if expired > 0 {
		s.logger.Debug("refresh tick", zap.Int("expired_offers", expired))
	}
}
