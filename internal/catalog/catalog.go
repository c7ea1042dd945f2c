package catalog

import (
	"fmt"
	"os"
	"strings"

	"carhive/internal/models"

	"gopkg.in/yaml.v2"
)

// Catalog is the static, read-only set of rentable vehicles. It is built
// once at startup and safe for concurrent use without synchronization.
// Identity is assigned at load time from the car's make, model, year and
// load position, so cars keep their ID even when a later filter reorders
// or subsets the view.
type Catalog struct {
	cars []models.Car
	byID map[string]models.Car
}

// Load reads the versioned catalog data file and builds the catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file struct {
		Cars []models.Car `yaml:"cars"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	return New(file.Cars)
}

// New validates the entries, assigns stable identifiers and builds the
// catalog. The input slice is copied; the caller may discard it.
func New(cars []models.Car) (*Catalog, error) {
	c := &Catalog{
		cars: make([]models.Car, len(cars)),
		byID: make(map[string]models.Car, len(cars)),
	}

	for i, car := range cars {
		if err := validateCar(car); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		car.ID = carID(car, i)
		if _, dup := c.byID[car.ID]; dup {
			return nil, fmt.Errorf("duplicate car id: %s", car.ID)
		}
		c.cars[i] = car
		c.byID[car.ID] = car
	}

	return c, nil
}

func validateCar(car models.Car) error {
	if car.Make == "" || car.Model == "" {
		return fmt.Errorf("make and model are required")
	}
	if car.Seats <= 0 {
		return fmt.Errorf("car '%s %s' has invalid seats %d", car.Make, car.Model, car.Seats)
	}
	if car.PricePerDay <= 0 {
		return fmt.Errorf("car '%s %s' has invalid price %v", car.Make, car.Model, car.PricePerDay)
	}
	return nil
}

// carID builds the routing slug used by the storefront, e.g.
// "toyota-corolla-cross-2023-4". The position suffix disambiguates
// identical make/model/year entries.
func carID(car models.Car, position int) string {
	slug := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
	}
	return fmt.Sprintf("%s-%s-%d-%d", slug(car.Make), slug(car.Model), car.Year, position)
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.cars) }

// Cars returns a copy of the full catalog in load order.
func (c *Catalog) Cars() []models.Car {
	out := make([]models.Car, len(c.cars))
	copy(out, c.cars)
	return out
}

// ByID looks a car up by its stable identifier.
func (c *Catalog) ByID(id string) (models.Car, bool) {
	car, ok := c.byID[id]
	return car, ok
}

// ModelsFor returns the distinct, case-preserving model names for a
// manufacturer, in catalog order. The manufacturer matches the same way the
// filter does: case-insensitive substring.
func (c *Catalog) ModelsFor(manufacturer string) []string {
	if strings.TrimSpace(manufacturer) == "" {
		return nil
	}
	needle := strings.ToLower(manufacturer)
	seen := make(map[string]bool)
	var out []string
	for _, car := range c.cars {
		if !strings.Contains(strings.ToLower(car.Make), needle) {
			continue
		}
		if seen[car.Model] {
			continue
		}
		seen[car.Model] = true
		out = append(out, car.Model)
	}
	return out
}

// ResetModel implements the storefront consistency rule: when a manufacturer
// is selected, a previously selected model survives only if it belongs to
// that manufacturer's model list. The caller applies the returned value; the
// catalog never holds selection state itself.
func (c *Catalog) ResetModel(manufacturer, model string) string {
	if model == "" {
		return ""
	}
	if strings.TrimSpace(manufacturer) == "" {
		return ""
	}
	for _, m := range c.ModelsFor(manufacturer) {
		if m == model {
			return model
		}
	}
	return ""
}
