package service

import (
	"context"

	"carhive/internal/domain"
	"carhive/internal/models"

	"github.com/rs/zerolog"
)

// ComputeStats folds a booking collection into a stats snapshot. Active
// counts only confirmed bookings; revenue counts confirmed and completed,
// so a pending booking contributes to TotalBookings but nowhere else.
func ComputeStats(bookings []models.Booking) models.Stats {
	stats := models.Stats{TotalBookings: len(bookings)}
	for _, b := range bookings {
		switch b.Status {
		case models.StatusPending:
			stats.PendingBookings++
		case models.StatusConfirmed:
			stats.ActiveBookings++
			stats.TotalRevenue += b.TotalPrice
		case models.StatusCompleted:
			stats.TotalRevenue += b.TotalPrice
		}
	}
	return stats
}

type StatsService struct {
	store  domain.BookingStore
	logger *zerolog.Logger
}

func NewStatsService(bookingStore domain.BookingStore, logger *zerolog.Logger) *StatsService {
	return &StatsService{store: bookingStore, logger: logger}
}

// Snapshot recomputes the stats from the full collection on every call.
func (s *StatsService) Snapshot(ctx context.Context) (*models.Stats, error) {
	bookings, err := s.store.AllBookings(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load bookings for stats")
		return nil, err
	}
	stats := ComputeStats(bookings)
	return &stats, nil
}
