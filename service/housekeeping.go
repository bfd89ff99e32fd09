package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/layer-3/zkauth/ports"
)

// HousekeepingService periodically removes expired challenges from stores
// that have no native expiry.
type HousekeepingService struct {
	Store    ports.ExpiringStore
	Logger   *slog.Logger
	Interval time.Duration
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 minute.
func NewHousekeepingService(store ports.ExpiringStore, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *HousekeepingService) Run(ctx context.Context) error {
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
	defer s.Logger.Info("housekeeping service stopped")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(ctx)

	for {
		select {
		case <-ticker.C:
			s.Cleanup(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// Cleanup performs a single sweep and returns the number of removed challenges.
func (s *HousekeepingService) Cleanup(ctx context.Context) int {
	deleted, err := s.Store.DeleteExpired(ctx)
	if err != nil {
		s.Logger.Error("failed to delete expired challenges", "error", err)
		return deleted
	}
	s.Logger.Debug("housekeeping cleanup completed", "deleted", deleted)
	return deleted
}
