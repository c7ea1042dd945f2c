package models

import "time"

// BookingDraft is a booking request held while the visitor authenticates.
// It is keyed by an opaque session identifier and lives only in the draft
// repository with a TTL; it is resubmitted or dropped by the caller and is
// never written to the booking store.
type BookingDraft struct {
	SessionID     string    `json:"session_id"`
	CarID         string    `json:"car_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	PickupDate    string    `json:"pickup_date"`
	ReturnDate    string    `json:"return_date"`
	CreatedAt     time.Time `json:"created_at"`
}
