package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatus_TerminalAndOpen(t *testing.T) {
	cases := []struct {
		status   ReservationStatus
		terminal bool
		open     bool
	}{
		{StatusQueued, false, false},
		{StatusHold, false, true},
		{StatusActive, false, true},
		{StatusFulfilled, true, false},
		{StatusCancelled, true, false},
		{StatusExpired, true, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.terminal, tc.status.Terminal(), "terminal(%s)", tc.status)
		assert.Equal(t, tc.open, tc.status.Open(), "open(%s)", tc.status)
	}
}

func TestPaymentMethod_Valid(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentCash, PaymentVodafoneCash, PaymentInstapay} {
		assert.True(t, m.Valid())
	}
	assert.False(t, PaymentMethod("cheque").Valid())
	assert.False(t, PaymentMethod("").Valid())
}

func TestHoldWindow_HalfOpenBounds(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w := HoldWindow{Start: start, End: start.Add(2 * time.Hour)}

	assert.True(t, w.Contains(start), "lower bound is inclusive")
	assert.True(t, w.Contains(start.Add(time.Hour)))
	assert.False(t, w.Contains(w.End), "upper bound is exclusive")
	assert.False(t, w.Contains(start.Add(-time.Second)))

	assert.False(t, w.Expired(w.End.Add(-time.Second)))
	assert.True(t, w.Expired(w.End), "the window expires exactly at its upper bound")
	assert.True(t, w.Expired(w.End.Add(time.Hour)))
}

func TestReservation_Window(t *testing.T) {
	var r Reservation
	_, ok := r.Window()
	assert.False(t, ok, "queued rows carry no window")

	start := time.Now().UTC()
	end := start.Add(time.Hour)
	r.WindowStart, r.WindowEnd = &start, &end

	w, ok := r.Window()
	assert.True(t, ok)
	assert.Equal(t, start, w.Start)
	assert.Equal(t, end, w.End)
}
