package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"carhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssignsStableIDs(t *testing.T) {
	cars := []models.Car{
		{Make: "Toyota", Model: "Camry", Year: 2023, Seats: 5, PricePerDay: 50},
		{Make: "Toyota", Model: "Camry", Year: 2023, Seats: 5, PricePerDay: 52},
		{Make: "Toyota", Model: "Corolla Cross", Year: 2023, Seats: 5, PricePerDay: 48},
	}
	c, err := New(cars)
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	all := c.Cars()
	assert.Equal(t, "toyota-camry-2023-0", all[0].ID)
	assert.Equal(t, "toyota-camry-2023-1", all[1].ID)
	assert.Equal(t, "toyota-corolla-cross-2023-2", all[2].ID)

	car, ok := c.ByID("toyota-camry-2023-1")
	require.True(t, ok)
	assert.Equal(t, 52.0, car.PricePerDay)

	_, ok = c.ByID("toyota-camry-2023-9")
	assert.False(t, ok)
}

func TestNewValidation(t *testing.T) {
	t.Run("missing model", func(t *testing.T) {
		_, err := New([]models.Car{{Make: "Toyota", Seats: 5, PricePerDay: 50}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "make and model are required")
	})

	t.Run("invalid seats", func(t *testing.T) {
		_, err := New([]models.Car{{Make: "Toyota", Model: "Camry", Year: 2023, PricePerDay: 50}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid seats")
	})

	t.Run("invalid price", func(t *testing.T) {
		_, err := New([]models.Car{{Make: "Toyota", Model: "Camry", Year: 2023, Seats: 5}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid price")
	})

	t.Run("empty catalog is allowed", func(t *testing.T) {
		c, err := New(nil)
		require.NoError(t, err)
		assert.Zero(t, c.Len())
	})
}

func TestCarsReturnsCopy(t *testing.T) {
	c, err := New([]models.Car{
		{Make: "Toyota", Model: "Camry", Year: 2023, Seats: 5, PricePerDay: 50},
	})
	require.NoError(t, err)

	view := c.Cars()
	view[0].PricePerDay = 999

	again := c.Cars()
	assert.Equal(t, 50.0, again[0].PricePerDay)
}

func TestModelsFor(t *testing.T) {
	c, err := New([]models.Car{
		{Make: "Toyota", Model: "Camry", Year: 2023, Seats: 5, PricePerDay: 50},
		{Make: "Toyota", Model: "Corolla", Year: 2022, Seats: 5, PricePerDay: 42},
		{Make: "Toyota", Model: "Camry", Year: 2021, Seats: 5, PricePerDay: 45},
		{Make: "Honda", Model: "Odyssey", Year: 2022, Seats: 8, PricePerDay: 90},
	})
	require.NoError(t, err)

	t.Run("distinct models in catalog order", func(t *testing.T) {
		assert.Equal(t, []string{"Camry", "Corolla"}, c.ModelsFor("toyota"))
	})

	t.Run("case-insensitive substring", func(t *testing.T) {
		assert.Equal(t, []string{"Odyssey"}, c.ModelsFor("HON"))
	})

	t.Run("unknown manufacturer", func(t *testing.T) {
		assert.Empty(t, c.ModelsFor("tesla"))
	})

	t.Run("blank manufacturer", func(t *testing.T) {
		assert.Empty(t, c.ModelsFor("  "))
	})
}

func TestResetModel(t *testing.T) {
	c, err := New([]models.Car{
		{Make: "Toyota", Model: "Camry", Year: 2023, Seats: 5, PricePerDay: 50},
		{Make: "Honda", Model: "Odyssey", Year: 2022, Seats: 8, PricePerDay: 90},
	})
	require.NoError(t, err)

	t.Run("model of the manufacturer survives", func(t *testing.T) {
		assert.Equal(t, "Camry", c.ResetModel("toyota", "Camry"))
	})

	t.Run("model of another manufacturer is cleared", func(t *testing.T) {
		assert.Empty(t, c.ResetModel("toyota", "Odyssey"))
	})

	t.Run("no manufacturer clears the model", func(t *testing.T) {
		assert.Empty(t, c.ResetModel("", "Camry"))
	})

	t.Run("empty model stays empty", func(t *testing.T) {
		assert.Empty(t, c.ResetModel("toyota", ""))
	})
}

func TestLoadFromFile(t *testing.T) {
	data := `cars:
  - make: Toyota
    model: Camry
    year: 2023
    fuel_type: gasoline
    transmission: a
    seats: 5
    price_per_day: 50
  - make: Honda
    model: Odyssey
    year: 2022
    fuel_type: gasoline
    transmission: a
    seats: 8
    price_per_day: 90
`
	path := filepath.Join(t.TempDir(), "cars.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	car, ok := c.ByID("honda-odyssey-2022-1")
	require.True(t, ok)
	assert.Equal(t, 8, car.Seats)
	assert.Equal(t, 90.0, car.PricePerDay)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cars.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cars: [not a car"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
