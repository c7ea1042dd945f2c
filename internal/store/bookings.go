package store

import (
	"context"
	"fmt"
	"time"

	"carhive/internal/models"
)

// CreateBooking persists a new booking document and fills in the
// server-assigned id and creation timestamp.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	doc := map[string]any{
		"car_id":         booking.CarID,
		"car_make":       booking.CarMake,
		"car_model":      booking.CarModel,
		"car_year":       booking.CarYear,
		"user_id":        booking.UserID,
		"customer_name":  booking.CustomerName,
		"customer_email": booking.CustomerEmail,
		"customer_phone": booking.CustomerPhone,
		"pickup_date":    booking.PickupDate,
		"return_date":    booking.ReturnDate,
		"total_days":     booking.TotalDays,
		"total_price":    booking.TotalPrice,
		"status":         booking.Status,
	}

	id, err := db.Insert(ctx, collectionBookings, doc)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	created, err := db.GetBooking(ctx, id)
	if err != nil {
		return fmt.Errorf("read back created booking: %w", err)
	}
	*booking = *created
	return nil
}

// GetBooking loads one booking by id.
func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	docs, err := db.QueryByField(ctx, collectionBookings, "id", id, "")
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	booking, err := decodeBooking(docs[0])
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// BookingsByUser returns the account's bookings, newest first.
func (db *DB) BookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return db.bookingsBy(ctx, "user_id", userID)
}

// BookingsByEmail returns bookings matched by customer email, newest first.
// This serves records created before the customer had an account.
func (db *DB) BookingsByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	return db.bookingsBy(ctx, "customer_email", email)
}

func (db *DB) bookingsBy(ctx context.Context, field, value string) ([]models.Booking, error) {
	docs, err := db.QueryByField(ctx, collectionBookings, field, value, "created_at DESC")
	if err != nil {
		return nil, err
	}
	return decodeBookings(docs)
}

// AllBookings returns the full collection, newest first. The stats snapshot
// is always derived from this authoritative read.
func (db *DB) AllBookings(ctx context.Context) ([]models.Booking, error) {
	rows, err := db.db.QueryContext(ctx, `SELECT * FROM bookings ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query all bookings: %w", mapSQLError(err))
	}
	defer rows.Close()

	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	return decodeBookings(docs)
}

// UpdateBookingStatus persists a status change. The transition itself is
// checked by the booking service before this is called.
func (db *DB) UpdateBookingStatus(ctx context.Context, id, status string) error {
	if err := db.UpdateField(ctx, collectionBookings, id, map[string]any{"status": status}); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return nil
}

func decodeBookings(docs []map[string]any) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0, len(docs))
	for _, doc := range docs {
		b, err := decodeBooking(doc)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, nil
}

// decodeBooking validates a raw store document against the booking schema.
// The store is external; nothing read from it is trusted without this check.
func decodeBooking(doc map[string]any) (*models.Booking, error) {
	b := &models.Booking{
		ID:            docString(doc, "id"),
		CarID:         docString(doc, "car_id"),
		CarMake:       docString(doc, "car_make"),
		CarModel:      docString(doc, "car_model"),
		CarYear:       int(docInt(doc, "car_year")),
		UserID:        docString(doc, "user_id"),
		CustomerName:  docString(doc, "customer_name"),
		CustomerEmail: docString(doc, "customer_email"),
		CustomerPhone: docString(doc, "customer_phone"),
		PickupDate:    docString(doc, "pickup_date"),
		ReturnDate:    docString(doc, "return_date"),
		TotalDays:     int(docInt(doc, "total_days")),
		TotalPrice:    docFloat(doc, "total_price"),
		Status:        docString(doc, "status"),
	}

	if b.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedRecord)
	}
	if !models.ValidStatus(b.Status) {
		return nil, fmt.Errorf("%w: unknown status %q (booking %s)", ErrMalformedRecord, b.Status, b.ID)
	}
	if _, err := time.Parse(models.DateLayout, b.PickupDate); err != nil {
		return nil, fmt.Errorf("%w: bad pickup date %q (booking %s)", ErrMalformedRecord, b.PickupDate, b.ID)
	}
	if _, err := time.Parse(models.DateLayout, b.ReturnDate); err != nil {
		return nil, fmt.Errorf("%w: bad return date %q (booking %s)", ErrMalformedRecord, b.ReturnDate, b.ID)
	}
	if b.TotalDays < 1 || b.TotalPrice < 0 {
		return nil, fmt.Errorf("%w: non-positive totals (booking %s)", ErrMalformedRecord, b.ID)
	}

	switch v := doc["created_at"].(type) {
	case time.Time:
		b.CreatedAt = v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("%w: bad created_at %q (booking %s)", ErrMalformedRecord, v, b.ID)
		}
		b.CreatedAt = t
	default:
		return nil, fmt.Errorf("%w: missing created_at (booking %s)", ErrMalformedRecord, b.ID)
	}

	return b, nil
}

func docString(doc map[string]any, field string) string {
	switch v := doc[field].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func docInt(doc map[string]any, field string) int64 {
	switch v := doc[field].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func docFloat(doc map[string]any, field string) float64 {
	switch v := doc[field].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}
