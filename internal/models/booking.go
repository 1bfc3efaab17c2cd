package models

import "time"

type Customer struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type Booking struct {
	ID                string         `json:"id"`
	Code              string         `json:"code"`
	StartAt           time.Time      `json:"startAt"`
	EndAt             time.Time      `json:"endAt"`
	Status            string         `json:"status"`
	SignalAmountCents int64          `json:"signalAmountCents"`
	TotalPriceCents   int64          `json:"totalPriceCents"`
	Service           ServiceSummary `json:"service"`
	Customer          Customer       `json:"customer"`
	CreatedAt         time.Time      `json:"createdAt"`
	ExpiresAt         *time.Time     `json:"expiresAt,omitempty"`
}

// Pending reports whether the booking still waits for its signal payment.
func (b *Booking) Pending() bool {
	return b != nil && b.Status == StatusPendingPayment
}

// DueCents is the amount the customer actually pays up front: the signal
// when one is configured, the full price otherwise.
func (b *Booking) DueCents() int64 {
	if b.SignalAmountCents > 0 {
		return b.SignalAmountCents
	}
	return b.TotalPriceCents
}

type PixPayment struct {
	PaymentID    string     `json:"paymentId"`
	MPPaymentID  string     `json:"mpPaymentId,omitempty"`
	Status       string     `json:"status"`
	StatusDetail string     `json:"statusDetail,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	QRCode       string     `json:"qrCode,omitempty"`
	QRCodeBase64 string     `json:"qrCodeBase64,omitempty"`
	TicketURL    string     `json:"ticketUrl,omitempty"`
}

// Approved reports whether the provider confirmed the payment.
func (p *PixPayment) Approved() bool {
	return p != nil && p.Status == PixStatusApproved
}

// PaymentSnapshot is the provider-side payment read during polling. Only the
// status field is consumed; the rest is provider-defined and kept opaque.
type PaymentSnapshot struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	StatusDetail string `json:"statusDetail,omitempty"`
}

type BookingLink struct {
	ID        string          `json:"id"`
	Token     string          `json:"token"`
	Active    bool            `json:"active"`
	ServiceID string          `json:"serviceId,omitempty"`
	Service   *ServiceSummary `json:"service,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
