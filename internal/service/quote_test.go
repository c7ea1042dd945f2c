package service

import (
	"testing"
	"time"

	"carhive/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuote(t *testing.T) {
	now := time.Date(2025, 1, 5, 15, 30, 0, 0, time.UTC)

	t.Run("three day rental", func(t *testing.T) {
		quote, err := BuildQuote(50, "2025-01-10", "2025-01-13", now)
		require.NoError(t, err)
		assert.Equal(t, 3, quote.TotalDays)
		assert.Equal(t, 150.0, quote.TotalPrice)
	})

	t.Run("single day rental", func(t *testing.T) {
		quote, err := BuildQuote(80, "2025-01-10", "2025-01-11", now)
		require.NoError(t, err)
		assert.Equal(t, 1, quote.TotalDays)
		assert.Equal(t, 80.0, quote.TotalPrice)
	})

	t.Run("pickup today is allowed", func(t *testing.T) {
		quote, err := BuildQuote(40, "2025-01-05", "2025-01-07", now)
		require.NoError(t, err)
		assert.Equal(t, 2, quote.TotalDays)
	})

	t.Run("pickup in the past", func(t *testing.T) {
		_, err := BuildQuote(40, "2025-01-04", "2025-01-07", now)
		assert.ErrorIs(t, err, store.ErrPastPickup)
	})

	t.Run("return equals pickup", func(t *testing.T) {
		_, err := BuildQuote(40, "2025-01-10", "2025-01-10", now)
		assert.ErrorIs(t, err, store.ErrReturnNotAfterPickup)
	})

	t.Run("return before pickup", func(t *testing.T) {
		_, err := BuildQuote(40, "2025-01-13", "2025-01-10", now)
		assert.ErrorIs(t, err, store.ErrReturnNotAfterPickup)
	})

	t.Run("unparseable dates", func(t *testing.T) {
		_, err := BuildQuote(40, "10.01.2025", "2025-01-13", now)
		assert.ErrorIs(t, err, store.ErrBadDate)

		_, err = BuildQuote(40, "2025-01-10", "not-a-date", now)
		assert.ErrorIs(t, err, store.ErrBadDate)
	})

	t.Run("bad date reported before past pickup", func(t *testing.T) {
		_, err := BuildQuote(40, "2020-01-01", "garbage", now)
		assert.ErrorIs(t, err, store.ErrBadDate)
	})
}
