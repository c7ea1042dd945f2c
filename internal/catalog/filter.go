package catalog

import (
	"strconv"
	"strings"

	"carhive/internal/models"
)

// Criteria is one fleet search. Zero values mean "no constraint"; all set
// predicates apply as a logical AND.
type Criteria struct {
	Manufacturer string // case-insensitive substring of make
	Model        string // case-insensitive substring of model
	Fuel         string // case-insensitive exact fuel type
	Year         int    // exact production year
	Transmission string // exact transmission code ("a"/"m")
	PriceRange   string // "min-max" inclusive, or "min+" for min and up
	Seats        string // exact seat count; "7" means 7 or more
	Page         int    // 1-indexed, clamped to 1
	PageSize     int    // defaults to models.DefaultPageSize
}

// Page is one filtered, ordered, paged view of the catalog.
type Page struct {
	Cars         []models.Car `json:"cars"`
	TotalMatched int          `json:"total_matched"`
	TotalPages   int          `json:"total_pages"`
}

// Filter applies the criteria to the full catalog and returns the requested
// page. It is pure: the catalog is never mutated, and the same criteria
// always produce the same page.
func (c *Catalog) Filter(criteria Criteria) Page {
	matched := make([]models.Car, 0, len(c.cars))
	for _, car := range c.cars {
		if matches(car, criteria) {
			matched = append(matched, car)
		}
	}

	pageSize := criteria.PageSize
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	page := criteria.Page
	if page < 1 {
		page = 1
	}

	totalPages := (len(matched) + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}

	return Page{
		Cars:         matched[start:end:end],
		TotalMatched: len(matched),
		TotalPages:   totalPages,
	}
}

func matches(car models.Car, cr Criteria) bool {
	if cr.Manufacturer != "" &&
		!strings.Contains(strings.ToLower(car.Make), strings.ToLower(cr.Manufacturer)) {
		return false
	}
	if cr.Model != "" &&
		!strings.Contains(strings.ToLower(car.Model), strings.ToLower(cr.Model)) {
		return false
	}
	if cr.Fuel != "" && !strings.EqualFold(car.FuelType, cr.Fuel) {
		return false
	}
	if cr.Year != 0 && car.Year != cr.Year {
		return false
	}
	if cr.Transmission != "" && car.Transmission != cr.Transmission {
		return false
	}
	if cr.PriceRange != "" && !priceInRange(car.PricePerDay, cr.PriceRange) {
		return false
	}
	if cr.Seats != "" && !seatsMatch(car.Seats, cr.Seats) {
		return false
	}
	return true
}

// priceInRange parses "min-max" (both inclusive) or "min+" (min and up).
// Unparseable ranges match nothing.
func priceInRange(price float64, rng string) bool {
	rng = strings.TrimSpace(rng)
	if min, ok := strings.CutSuffix(rng, "+"); ok {
		lo, err := strconv.ParseFloat(min, 64)
		if err != nil {
			return false
		}
		return price >= lo
	}

	parts := strings.SplitN(rng, "-", 2)
	if len(parts) != 2 {
		return false
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return false
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return false
	}
	return price >= lo && price <= hi
}

// seatsMatch treats "7" as the "7+ seats" bucket; every other value is an
// exact seat count.
func seatsMatch(seats int, want string) bool {
	if want == "7" {
		return seats >= 7
	}
	n, err := strconv.Atoi(strings.TrimSpace(want))
	if err != nil {
		return false
	}
	return seats == n
}
