package service

import (
	"context"
	"io"
	"testing"
	"time"

	"carhive/internal/catalog"
	"carhive/internal/models"
	"carhive/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockStore) BookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockStore) BookingsByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockStore) AllBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockStore) UpdateBookingStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *mockStore) CreateSyncTask(ctx context.Context, task *models.SyncTask) error {
	return m.Called(ctx, task).Error(0)
}
func (m *mockStore) GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SyncTask), args.Error(1)
}
func (m *mockStore) UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	return m.Called(ctx, id, status, errMsg, nextRetryAt).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockWorker struct {
	mock.Mock
}

func (m *mockWorker) EnqueueTask(ctx context.Context, taskType string, booking *models.Booking, status string) error {
	return m.Called(ctx, taskType, booking, status).Error(0)
}

func testFleet(t *testing.T) *catalog.Catalog {
	fleet, err := catalog.New([]models.Car{
		{Make: "Toyota", Model: "Camry", Year: 2023, FuelType: models.FuelGasoline, Transmission: "a", Seats: 5, PricePerDay: 50},
		{Make: "Honda", Model: "Odyssey", Year: 2022, FuelType: models.FuelGasoline, Transmission: "a", Seats: 8, PricePerDay: 90},
	})
	require.NoError(t, err)
	return fleet
}

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(models.DateLayout)
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(mockStore)
		bus := new(mockPublisher)
		worker := new(mockWorker)
		svc := NewBookingService(repo, testFleet(t), bus, worker, testLogger())

		repo.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).Return(nil)
		bus.On("PublishJSON", "booking_created", mock.Anything).Return(nil)
		worker.On("EnqueueTask", ctx, "upsert", mock.Anything, models.StatusPending).Return(nil)

		booking, err := svc.CreateBooking(ctx, &models.Booking{
			CarID:         "toyota-camry-2023-0",
			UserID:        "user-1",
			CustomerName:  "Test Customer",
			CustomerEmail: "customer@example.com",
			PickupDate:    futureDate(7),
			ReturnDate:    futureDate(10),
		})
		require.NoError(t, err)

		assert.Equal(t, models.StatusPending, booking.Status)
		assert.Equal(t, "Toyota", booking.CarMake)
		assert.Equal(t, "Camry", booking.CarModel)
		assert.Equal(t, 3, booking.TotalDays)
		assert.Equal(t, 150.0, booking.TotalPrice)

		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
		worker.AssertExpectations(t)
	})

	t.Run("anonymous request", func(t *testing.T) {
		repo := new(mockStore)
		svc := NewBookingService(repo, testFleet(t), nil, nil, testLogger())

		_, err := svc.CreateBooking(ctx, &models.Booking{
			CarID:      "toyota-camry-2023-0",
			PickupDate: futureDate(7),
			ReturnDate: futureDate(10),
		})
		assert.ErrorIs(t, err, store.ErrAuthRequired)
		repo.AssertNotCalled(t, "CreateBooking")
	})

	t.Run("unknown car", func(t *testing.T) {
		svc := NewBookingService(new(mockStore), testFleet(t), nil, nil, testLogger())

		_, err := svc.CreateBooking(ctx, &models.Booking{
			CarID:      "tesla-model-s-2024-0",
			UserID:     "user-1",
			PickupDate: futureDate(7),
			ReturnDate: futureDate(10),
		})
		assert.ErrorIs(t, err, store.ErrUnknownCar)
	})

	t.Run("invalid dates do not reach the store", func(t *testing.T) {
		repo := new(mockStore)
		svc := NewBookingService(repo, testFleet(t), nil, nil, testLogger())

		_, err := svc.CreateBooking(ctx, &models.Booking{
			CarID:      "toyota-camry-2023-0",
			UserID:     "user-1",
			PickupDate: futureDate(10),
			ReturnDate: futureDate(7),
		})
		assert.ErrorIs(t, err, store.ErrReturnNotAfterPickup)
		repo.AssertNotCalled(t, "CreateBooking")
	})
}

func TestTransitionBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("pending to confirmed", func(t *testing.T) {
		repo := new(mockStore)
		bus := new(mockPublisher)
		worker := new(mockWorker)
		svc := NewBookingService(repo, testFleet(t), bus, worker, testLogger())

		repo.On("GetBooking", ctx, "b-1").Return(&models.Booking{ID: "b-1", Status: models.StatusPending}, nil)
		repo.On("UpdateBookingStatus", ctx, "b-1", models.StatusConfirmed).Return(nil)
		bus.On("PublishJSON", "booking_confirmed", mock.Anything).Return(nil)
		worker.On("EnqueueTask", ctx, "update_status", mock.Anything, models.StatusConfirmed).Return(nil)

		booking, err := svc.TransitionBooking(ctx, "b-1", models.StatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, booking.Status)

		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("pending to completed is rejected", func(t *testing.T) {
		repo := new(mockStore)
		svc := NewBookingService(repo, testFleet(t), nil, nil, testLogger())

		repo.On("GetBooking", ctx, "b-1").Return(&models.Booking{ID: "b-1", Status: models.StatusPending}, nil)

		_, err := svc.TransitionBooking(ctx, "b-1", models.StatusCompleted)
		assert.ErrorIs(t, err, store.ErrInvalidTransition)
		repo.AssertNotCalled(t, "UpdateBookingStatus")
	})

	t.Run("terminal state is frozen", func(t *testing.T) {
		repo := new(mockStore)
		svc := NewBookingService(repo, testFleet(t), nil, nil, testLogger())

		repo.On("GetBooking", ctx, "b-1").Return(&models.Booking{ID: "b-1", Status: models.StatusCancelled}, nil)

		_, err := svc.TransitionBooking(ctx, "b-1", models.StatusConfirmed)
		assert.ErrorIs(t, err, store.ErrInvalidTransition)
	})

	t.Run("unknown target status", func(t *testing.T) {
		repo := new(mockStore)
		svc := NewBookingService(repo, testFleet(t), nil, nil, testLogger())

		repo.On("GetBooking", ctx, "b-1").Return(&models.Booking{ID: "b-1", Status: models.StatusPending}, nil)

		_, err := svc.TransitionBooking(ctx, "b-1", "archived")
		assert.ErrorIs(t, err, store.ErrInvalidTransition)
	})

	t.Run("missing booking", func(t *testing.T) {
		repo := new(mockStore)
		svc := NewBookingService(repo, testFleet(t), nil, nil, testLogger())

		repo.On("GetBooking", ctx, "nope").Return(nil, store.ErrNotFound)

		_, err := svc.TransitionBooking(ctx, "nope", models.StatusConfirmed)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestBookingsForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("account has bookings", func(t *testing.T) {
		repo := new(mockStore)
		svc := NewBookingService(repo, testFleet(t), nil, nil, testLogger())

		repo.On("BookingsByUser", ctx, "user-1").Return([]models.Booking{{ID: "b-1"}}, nil)

		bookings, err := svc.BookingsForUser(ctx, "user-1", "customer@example.com")
		require.NoError(t, err)
		assert.Len(t, bookings, 1)
		repo.AssertNotCalled(t, "BookingsByEmail")
	})

	t.Run("falls back to email", func(t *testing.T) {
		repo := new(mockStore)
		svc := NewBookingService(repo, testFleet(t), nil, nil, testLogger())

		repo.On("BookingsByUser", ctx, "user-1").Return([]models.Booking{}, nil)
		repo.On("BookingsByEmail", ctx, "customer@example.com").Return([]models.Booking{{ID: "b-legacy"}}, nil)

		bookings, err := svc.BookingsForUser(ctx, "user-1", "customer@example.com")
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, "b-legacy", bookings[0].ID)
	})

	t.Run("no email no fallback", func(t *testing.T) {
		repo := new(mockStore)
		svc := NewBookingService(repo, testFleet(t), nil, nil, testLogger())

		repo.On("BookingsByUser", ctx, "user-1").Return([]models.Booking{}, nil)

		bookings, err := svc.BookingsForUser(ctx, "user-1", "")
		require.NoError(t, err)
		assert.Empty(t, bookings)
		repo.AssertNotCalled(t, "BookingsByEmail")
	})
}
