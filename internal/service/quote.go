package service

import (
	"time"

	"carhive/internal/models"
	"carhive/internal/store"
)

// Quote is the derived cost of a rental period. Both fields are computed
// from the dates and the car's daily rate, never taken from the caller.
type Quote struct {
	TotalDays  int
	TotalPrice float64
}

// BuildQuote validates a rental period against the calendar and prices it.
// Dates are "2006-01-02" strings; rules are checked in order and the first
// failure wins, so callers see one error at a time.
func BuildQuote(pricePerDay float64, pickupDate, returnDate string, now time.Time) (Quote, error) {
	pickup, err := time.Parse(models.DateLayout, pickupDate)
	if err != nil {
		return Quote{}, store.ErrBadDate
	}
	ret, err := time.Parse(models.DateLayout, returnDate)
	if err != nil {
		return Quote{}, store.ErrBadDate
	}

	// "today" is midnight of the current day: a pickup today is allowed
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if pickup.Before(today) {
		return Quote{}, store.ErrPastPickup
	}
	if !ret.After(pickup) {
		return Quote{}, store.ErrReturnNotAfterPickup
	}

	days := int(ret.Sub(pickup).Hours() / 24)
	return Quote{
		TotalDays:  days,
		TotalPrice: float64(days) * pricePerDay,
	}, nil
}
