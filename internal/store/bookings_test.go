package store

import (
	"context"
	"os"
	"testing"
	"time"

	"carhive/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	return db
}

func testBooking() *models.Booking {
	return &models.Booking{
		CarID:         "toyota-camry-2023-1",
		CarMake:       "Toyota",
		CarModel:      "Camry",
		CarYear:       2023,
		UserID:        "user-1",
		CustomerName:  "Test Customer",
		CustomerEmail: "customer@example.com",
		CustomerPhone: "+15550001",
		PickupDate:    "2025-01-10",
		ReturnDate:    "2025-01-13",
		TotalDays:     3,
		TotalPrice:    150,
		Status:        models.StatusPending,
	}
}

func TestCreateAndGetBooking(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	booking := testBooking()
	err := db.CreateBooking(ctx, booking)
	require.NoError(t, err)

	assert.NotEmpty(t, booking.ID, "store must assign the id")
	assert.False(t, booking.CreatedAt.IsZero(), "store must assign created_at")

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.CarID, got.CarID)
	assert.Equal(t, booking.CustomerEmail, got.CustomerEmail)
	assert.Equal(t, 3, got.TotalDays)
	assert.Equal(t, 150.0, got.TotalPrice)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestGetBookingNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetBooking(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingsByUserOrderedNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		b := testBooking()
		err := db.CreateBooking(ctx, b)
		require.NoError(t, err)
		ids = append(ids, b.ID)
		// created_at has sub-second precision but keep ordering deterministic
		time.Sleep(5 * time.Millisecond)
	}

	other := testBooking()
	other.UserID = "user-2"
	require.NoError(t, db.CreateBooking(ctx, other))

	bookings, err := db.BookingsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, bookings, 3)

	assert.Equal(t, ids[2], bookings[0].ID)
	assert.Equal(t, ids[0], bookings[2].ID)
	for i := 1; i < len(bookings); i++ {
		assert.False(t, bookings[i-1].CreatedAt.Before(bookings[i].CreatedAt))
	}
}

func TestBookingsByEmail(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	legacy := testBooking()
	legacy.UserID = ""
	legacy.CustomerEmail = "legacy@example.com"
	require.NoError(t, db.CreateBooking(ctx, legacy))

	bookings, err := db.BookingsByEmail(ctx, "legacy@example.com")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, legacy.ID, bookings[0].ID)

	none, err := db.BookingsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateBookingStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	booking := testBooking()
	require.NoError(t, db.CreateBooking(ctx, booking))

	err := db.UpdateBookingStatus(ctx, booking.ID, models.StatusConfirmed)
	require.NoError(t, err)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)

	err = db.UpdateBookingStatus(ctx, "missing", models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertRejectsUnknownField(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.Insert(context.Background(), collectionBookings, map[string]any{
		"car_id":  "x",
		"dropped": "value",
	})
	assert.Error(t, err)
}

func TestUpdateFieldRejectsImmutableColumns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	booking := testBooking()
	require.NoError(t, db.CreateBooking(ctx, booking))

	err := db.UpdateField(ctx, collectionBookings, booking.ID, map[string]any{"id": "other"})
	assert.Error(t, err)

	err = db.UpdateField(ctx, collectionBookings, booking.ID, map[string]any{"created_at": time.Now()})
	assert.Error(t, err)
}

func TestDecodeBookingRejectsMalformedRecords(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	booking := testBooking()
	require.NoError(t, db.CreateBooking(ctx, booking))

	// corrupt the row behind the typed layer's back
	_, err := db.db.ExecContext(ctx, `UPDATE bookings SET status = 'archived' WHERE id = ?`, booking.ID)
	require.NoError(t, err)

	_, err = db.GetBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = db.db.ExecContext(ctx, `UPDATE bookings SET status = 'pending', pickup_date = '10.01.2025' WHERE id = ?`, booking.ID)
	require.NoError(t, err)

	_, err = db.GetBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestAllBookings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, db.CreateBooking(ctx, testBooking()))
	}

	bookings, err := db.AllBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
}

func TestSyncQueueLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	task := &models.SyncTask{
		TaskType:  "booking_created",
		BookingID: "booking-1",
		Payload:   `{"id":"booking-1"}`,
		Status:    "pending",
	}
	require.NoError(t, db.CreateSyncTask(ctx, task))
	assert.NotZero(t, task.ID)

	pending, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "booking-1", pending[0].BookingID)

	next := time.Now().Add(time.Hour)
	err = db.UpdateSyncTaskStatus(ctx, task.ID, "retry", "temporary failure", &next)
	require.NoError(t, err)

	// retry scheduled in the future must not be picked up yet
	pending, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	err = db.UpdateSyncTaskStatus(ctx, task.ID, "failed", "gave up", nil)
	require.NoError(t, err)

	failed, err := db.GetFailedSyncTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].RetryCount)
	assert.NotNil(t, failed[0].ProcessedAt)
}
