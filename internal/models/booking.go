package models

import "time"

// Booking is the persisted reservation document. Pickup and return dates are
// calendar dates without time-of-day, stored in the document as "2006-01-02"
// strings; TotalDays and TotalPrice are derived by the service and never
// edited independently.
type Booking struct {
	ID            string    `json:"id"`
	CarID         string    `json:"car_id"`
	CarMake       string    `json:"car_make"`
	CarModel      string    `json:"car_model"`
	CarYear       int       `json:"car_year,omitempty"`
	UserID        string    `json:"user_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	PickupDate    string    `json:"pickup_date"`
	ReturnDate    string    `json:"return_date"`
	TotalDays     int       `json:"total_days"`
	TotalPrice    float64   `json:"total_price"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Stats is the derived snapshot over a booking collection. It is recomputed
// from the authoritative collection on every read and carries no identity of
// its own.
type Stats struct {
	TotalBookings   int     `json:"total_bookings"`
	PendingBookings int     `json:"pending_bookings"`
	ActiveBookings  int     `json:"active_bookings"`
	TotalRevenue    float64 `json:"total_revenue"`
}
