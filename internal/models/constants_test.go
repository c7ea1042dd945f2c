package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := map[[2]string]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCompleted}: true,
	}

	statuses := []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]string{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	assert.False(t, CanTransition("archived", StatusConfirmed))
	assert.False(t, CanTransition(StatusPending, "archived"))
	assert.False(t, CanTransition("", ""))
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("archived"))
	assert.False(t, ValidStatus("Pending"))
	assert.False(t, ValidStatus(""))
}

func TestTransmissionLabel(t *testing.T) {
	assert.Equal(t, "Automatic", Car{Transmission: TransmissionAutomatic}.TransmissionLabel())
	assert.Equal(t, "Manual", Car{Transmission: TransmissionManual}.TransmissionLabel())
}
