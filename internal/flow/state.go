package flow

import "agendalink/internal/models"

// State is the single render target of the booking flow. Exactly one state
// holds at any time; it is computed, never stored.
type State int

const (
	// StateSelecting: no booking exists yet, the visitor is picking a
	// service, date and slot.
	StateSelecting State = iota

	// StateAwaitingPayment: a booking exists, is not terminal and not
	// expired; polling is active.
	StateAwaitingPayment

	// StateApproved: the booking confirmed or the provider approved the
	// PIX payment. Terminal for the session.
	StateApproved

	// StateExpired: the backend reported the reservation expired.
	// Terminal for the session.
	StateExpired

	// StateLinkInvalid: the public link token does not exist or expired.
	StateLinkInvalid

	// StateLinkInactive: the link exists but was disabled by the tenant.
	StateLinkInactive
)

func (s State) String() string {
	switch s {
	case StateSelecting:
		return "SELECTING"
	case StateAwaitingPayment:
		return "AWAITING_PAYMENT"
	case StateApproved:
		return "APPROVED"
	case StateExpired:
		return "EXPIRED"
	case StateLinkInvalid:
		return "LINK_INVALID"
	case StateLinkInactive:
		return "LINK_INACTIVE"
	}
	return "UNKNOWN"
}

// Terminal reports whether the session can never leave this state without a
// full page reload. Prevents double-booking the same slot in one session.
func (s State) Terminal() bool {
	switch s {
	case StateApproved, StateExpired, StateLinkInvalid, StateLinkInactive:
		return true
	}
	return false
}

// Reduce computes the render state from the two flow primitives. The link
// screen states are session-level and handled before this reducer applies.
func Reduce(created *models.Booking, pix *models.PixPayment) State {
	if created == nil {
		return StateSelecting
	}
	if created.Status == models.StatusConfirmed || pix.Approved() {
		return StateApproved
	}
	if created.Status == models.StatusExpired {
		return StateExpired
	}
	return StateAwaitingPayment
}
