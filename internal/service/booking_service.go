package service

import (
	"context"
	"fmt"
	"time"

	"carhive/internal/catalog"
	"carhive/internal/domain"
	"carhive/internal/events"
	"carhive/internal/models"
	"carhive/internal/store"

	"github.com/rs/zerolog"
)

type BookingService struct {
	store        domain.BookingStore
	fleet        *catalog.Catalog
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	logger       *zerolog.Logger
}

func NewBookingService(bookingStore domain.BookingStore, fleet *catalog.Catalog, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:        bookingStore,
		fleet:        fleet,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		logger:       logger,
	}
}

// CreateBooking validates the request, prices the rental period and writes
// the booking with status pending. The request must already carry a resolved
// user id; anonymous requests are turned away before any validation so the
// caller can hold them through authentication and resubmit.
func (s *BookingService) CreateBooking(ctx context.Context, req *models.Booking) (*models.Booking, error) {
	if req.UserID == "" {
		return nil, store.ErrAuthRequired
	}

	car, ok := s.fleet.ByID(req.CarID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownCar, req.CarID)
	}

	quote, err := BuildQuote(car.PricePerDay, req.PickupDate, req.ReturnDate, time.Now())
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		CarID:         car.ID,
		CarMake:       car.Make,
		CarModel:      car.Model,
		CarYear:       car.Year,
		UserID:        req.UserID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		PickupDate:    req.PickupDate,
		ReturnDate:    req.ReturnDate,
		TotalDays:     quote.TotalDays,
		TotalPrice:    quote.TotalPrice,
		Status:        models.StatusPending,
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("car_id", booking.CarID).
		Str("user_id", booking.UserID).
		Int("total_days", booking.TotalDays).
		Float64("total_price", booking.TotalPrice).
		Msg("booking created")

	s.publishEvent(events.EventBookingCreated, booking)
	s.enqueueSync(ctx, booking, "upsert")

	return booking, nil
}

// TransitionBooking moves a booking one step along the status graph.
// Anything outside the graph is rejected and the booking is left untouched.
func (s *BookingService) TransitionBooking(ctx context.Context, id, target string) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !models.ValidStatus(target) || !models.CanTransition(booking.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", store.ErrInvalidTransition, booking.Status, target)
	}

	if err := s.store.UpdateBookingStatus(ctx, id, target); err != nil {
		return nil, err
	}
	booking.Status = target

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("status", target).
		Msg("booking status updated")

	s.publishEvent(events.EventTypeForStatus(target), booking)
	s.enqueueSync(ctx, booking, "update_status")

	return booking, nil
}

// BookingsForUser returns the account's bookings, newest first. When the
// account has none, the email fallback picks up records written before the
// customer signed up.
func (s *BookingService) BookingsForUser(ctx context.Context, userID, email string) ([]models.Booking, error) {
	bookings, err := s.store.BookingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(bookings) > 0 || email == "" {
		return bookings, nil
	}
	return s.store.BookingsByEmail(ctx, email)
}

func (s *BookingService) AllBookings(ctx context.Context) ([]models.Booking, error) {
	return s.store.AllBookings(ctx)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID:     booking.ID,
		CarID:         booking.CarID,
		CarMake:       booking.CarMake,
		CarModel:      booking.CarModel,
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		PickupDate:    booking.PickupDate,
		ReturnDate:    booking.ReturnDate,
		TotalDays:     booking.TotalDays,
		TotalPrice:    booking.TotalPrice,
		Status:        booking.Status,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish booking event")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, booking *models.Booking, taskType string) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueTask(ctx, taskType, booking, booking.Status); err != nil {
		s.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("failed to enqueue sync task")
	}
}
