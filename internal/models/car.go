package models

// Car is a single catalog entry. The catalog is loaded wholesale from a
// versioned data file and never mutated at runtime, so cars may be shared
// across any number of concurrent readers.
type Car struct {
	ID             string  `yaml:"-" json:"id"`
	Make           string  `yaml:"make" json:"make"`
	Model          string  `yaml:"model" json:"model"`
	Year           int     `yaml:"year" json:"year"`
	FuelType       string  `yaml:"fuel_type" json:"fuel_type"`
	Transmission   string  `yaml:"transmission" json:"transmission"` // "a" or "m"
	Drive          string  `yaml:"drive" json:"drive"`
	Seats          int     `yaml:"seats" json:"seats"`
	CityMPG        int     `yaml:"city_mpg" json:"city_mpg"`
	HighwayMPG     int     `yaml:"highway_mpg" json:"highway_mpg"`
	CombinationMPG int     `yaml:"combination_mpg" json:"combination_mpg"`
	Displacement   float64 `yaml:"displacement" json:"displacement"`
	Cylinders      int     `yaml:"cylinders" json:"cylinders"`
	Class          string  `yaml:"class" json:"class"`
	Color          string  `yaml:"color" json:"color"`
	PricePerDay    float64 `yaml:"price_per_day" json:"price_per_day"`
}

const (
	FuelGasoline    = "gasoline"
	FuelDiesel      = "diesel"
	FuelHybrid      = "hybrid"
	FuelElectricity = "electricity"
)

const (
	TransmissionAutomatic = "a"
	TransmissionManual    = "m"
)

// TransmissionLabel expands the single-letter transmission code.
func (c Car) TransmissionLabel() string {
	if c.Transmission == TransmissionAutomatic {
		return "Automatic"
	}
	return "Manual"
}
