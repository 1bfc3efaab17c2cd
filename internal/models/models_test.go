package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingPending(t *testing.T) {
	var nilBooking *Booking
	assert.False(t, nilBooking.Pending())
	assert.True(t, (&Booking{Status: StatusPendingPayment}).Pending())
	assert.False(t, (&Booking{Status: StatusConfirmed}).Pending())
	assert.False(t, (&Booking{Status: StatusExpired}).Pending())
}

func TestBookingDueCents(t *testing.T) {
	b := &Booking{SignalAmountCents: 2500, TotalPriceCents: 5000}
	assert.Equal(t, int64(2500), b.DueCents())

	full := &Booking{TotalPriceCents: 5000}
	assert.Equal(t, int64(5000), full.DueCents())
}

func TestPixApproved(t *testing.T) {
	var nilPix *PixPayment
	assert.False(t, nilPix.Approved())
	assert.True(t, (&PixPayment{Status: PixStatusApproved}).Approved())
	assert.False(t, (&PixPayment{Status: "pending"}).Approved())
	assert.False(t, (&PixPayment{Status: "rejected"}).Approved())
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "R$ 0.00", FormatMoney(0))
	assert.Equal(t, "R$ 0.05", FormatMoney(5))
	assert.Equal(t, "R$ 25.00", FormatMoney(2500))
	assert.Equal(t, "R$ 123.45", FormatMoney(12345))
	assert.Equal(t, "R$ -5.00", FormatMoney(-500))
}
