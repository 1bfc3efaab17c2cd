package flow

import (
	"agendalink/internal/models"
)

// Snapshot is the full view of a session, shaped for direct rendering by
// the widget.
type Snapshot struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`

	Services     []models.Service             `json:"services,omitempty"`
	ServiceID    string                       `json:"serviceId,omitempty"`
	Date         string                       `json:"date,omitempty"`
	Availability *models.AvailabilityResponse `json:"availability,omitempty"`

	SelectedStartAt string          `json:"selectedStartAt,omitempty"`
	Customer        models.Customer `json:"customer"`

	Booking *models.Booking    `json:"booking,omitempty"`
	Pix     *models.PixPayment `json:"pix,omitempty"`

	Remaining string `json:"remaining"`
	CanSubmit bool   `json:"canSubmit"`

	Error    string `json:"error,omitempty"`
	PixError string `json:"pixError,omitempty"`
	LinkMsg  string `json:"linkMessage,omitempty"`
}

// Snapshot returns a point-in-time copy of the session for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.stateLocked()

	remaining := "--:--"
	if c.remaining != nil {
		remaining = FormatRemaining(*c.remaining)
	}

	var selected string
	if !c.selectedStartAt.IsZero() {
		selected = c.selectedStartAt.Format("2006-01-02T15:04:05Z07:00")
	}

	return Snapshot{
		SessionID:       c.sessionID,
		State:           state.String(),
		Services:        c.services,
		ServiceID:       c.serviceID,
		Date:            c.date,
		Availability:    c.availability,
		SelectedStartAt: selected,
		Customer:        c.customer,
		Booking:         c.created,
		Pix:             c.pix,
		Remaining:       remaining,
		CanSubmit:       c.canSubmitLocked(state),
		Error:           c.errMsg,
		PixError:        c.pixErr,
		LinkMsg:         c.linkMsg,
	}
}

func (c *Controller) canSubmitLocked(state State) bool {
	return state == StateSelecting &&
		!c.submitting &&
		!c.selectedStartAt.IsZero() &&
		c.customer.Name != "" &&
		c.customer.Phone != "" &&
		c.customer.Email != ""
}

// State reports the current flow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}
