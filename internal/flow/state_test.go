package flow

import (
	"testing"
	"time"

	"agendalink/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	t.Run("NoBooking", func(t *testing.T) {
		assert.Equal(t, StateSelecting, Reduce(nil, nil))
		assert.Equal(t, StateSelecting, Reduce(nil, &models.PixPayment{Status: models.PixStatusApproved}))
	})

	t.Run("PendingWithPix", func(t *testing.T) {
		b := &models.Booking{Status: models.StatusPendingPayment}
		assert.Equal(t, StateAwaitingPayment, Reduce(b, &models.PixPayment{Status: "pending"}))
	})

	t.Run("PendingWithoutPix", func(t *testing.T) {
		b := &models.Booking{Status: models.StatusPendingPayment}
		assert.Equal(t, StateAwaitingPayment, Reduce(b, nil))
	})

	t.Run("ConfirmedBooking", func(t *testing.T) {
		b := &models.Booking{Status: models.StatusConfirmed}
		assert.Equal(t, StateApproved, Reduce(b, nil))
	})

	t.Run("ApprovedPixWinsOverPendingBooking", func(t *testing.T) {
		b := &models.Booking{Status: models.StatusPendingPayment}
		pix := &models.PixPayment{Status: models.PixStatusApproved}
		assert.Equal(t, StateApproved, Reduce(b, pix))
	})

	t.Run("ExpiredBooking", func(t *testing.T) {
		b := &models.Booking{Status: models.StatusExpired}
		assert.Equal(t, StateExpired, Reduce(b, nil))
	})

	t.Run("CancelledBookingFallsBackToAwaiting", func(t *testing.T) {
		b := &models.Booking{Status: models.StatusCancelled}
		assert.Equal(t, StateAwaitingPayment, Reduce(b, nil))
	})
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateSelecting:       "SELECTING",
		StateAwaitingPayment: "AWAITING_PAYMENT",
		StateApproved:        "APPROVED",
		StateExpired:         "EXPIRED",
		StateLinkInvalid:     "LINK_INVALID",
		StateLinkInactive:    "LINK_INACTIVE",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}

func TestStateTerminal(t *testing.T) {
	assert.False(t, StateSelecting.Terminal())
	assert.False(t, StateAwaitingPayment.Terminal())
	assert.True(t, StateApproved.Terminal())
	assert.True(t, StateExpired.Terminal())
	assert.True(t, StateLinkInvalid.Terminal())
	assert.True(t, StateLinkInactive.Terminal())
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "00:00", FormatRemaining(0))
	assert.Equal(t, "00:00", FormatRemaining(-5*time.Second))
	assert.Equal(t, "00:01", FormatRemaining(1500*time.Millisecond))
	assert.Equal(t, "00:59", FormatRemaining(59*time.Second))
	assert.Equal(t, "01:00", FormatRemaining(time.Minute))
	assert.Equal(t, "10:05", FormatRemaining(10*time.Minute+5*time.Second))
	assert.Equal(t, "120:00", FormatRemaining(2*time.Hour))
}
