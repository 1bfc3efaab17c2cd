package flow

import (
	"context"
	"time"

	"agendalink/internal/events"
	"agendalink/internal/metrics"
)

// stopTimersLocked halts both background loops and bumps the epoch, so any
// result still in flight is discarded when it lands.
func (c *Controller) stopTimersLocked() {
	c.epoch++
	if c.stopPoll != nil {
		close(c.stopPoll)
		c.stopPoll = nil
	}
	if c.stopCountdown != nil {
		close(c.stopCountdown)
		c.stopCountdown = nil
	}
}

// rearmTimersLocked reconciles the running timers with the current booking:
// both run only while the booking is pending payment, the countdown
// additionally requires an expiry deadline. Called on every state entry.
func (c *Controller) rearmTimersLocked() {
	c.stopTimersLocked()
	c.updateRemainingLocked()

	if c.created == nil || !c.created.Pending() {
		c.notifyTerminalLocked()
		return
	}

	epoch := c.epoch

	c.stopPoll = make(chan struct{})
	go c.runTicker(c.pollInterval, c.stopPoll, func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultPollTimeout)
		defer cancel()
		c.pollOnce(ctx, epoch)
	})

	if c.created.ExpiresAt != nil {
		c.stopCountdown = make(chan struct{})
		go c.runTicker(c.countdownInterval, c.stopCountdown, func() {
			c.countdownTick(epoch)
		})
	}
}

func (c *Controller) runTicker(interval time.Duration, stop <-chan struct{}, tick func()) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			tick()
		}
	}
}

// pollOnce refetches the booking (and its payment when one exists) and folds
// the result back in, unless the epoch moved on while the request was out.
// Every error here is swallowed: a failed round keeps the previous snapshot
// and the next tick tries again.
func (c *Controller) pollOnce(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	if c.closed || epoch != c.epoch || c.created == nil {
		c.mu.Unlock()
		return
	}
	bookingID := c.created.ID
	var mpPaymentID string
	if c.pix != nil {
		mpPaymentID = c.pix.MPPaymentID
	}
	c.mu.Unlock()

	metrics.IncPollTick()

	booking, err := c.client.GetBooking(ctx, bookingID)
	if err != nil {
		metrics.IncPollError()
		c.logger.Debug().Err(err).Str("booking_id", bookingID).Msg("booking poll error")
		return
	}

	var payment *struct{ status, detail string }
	if mpPaymentID != "" {
		snap, err := c.client.GetPayment(ctx, mpPaymentID)
		if err != nil {
			metrics.IncPollError()
			c.logger.Debug().Err(err).Str("payment_id", mpPaymentID).Msg("payment poll error")
		} else if snap != nil {
			payment = &struct{ status, detail string }{snap.Status, snap.StatusDetail}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || epoch != c.epoch || c.created == nil || c.created.ID != bookingID {
		return
	}

	wasPending := c.created.Pending()
	c.created = booking
	if payment != nil && c.pix != nil {
		c.pix.Status = payment.status
		c.pix.StatusDetail = payment.detail
	}

	if wasPending && !c.created.Pending() {
		c.rearmTimersLocked()
		return
	}
	c.updateRemainingLocked()
}

// countdownTick recomputes the time left until the booking's expiry. Purely
// presentational: expiry itself is decided by the backend and observed by
// the poll loop.
func (c *Controller) countdownTick(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || epoch != c.epoch {
		return
	}
	c.updateRemainingLocked()
}

func (c *Controller) updateRemainingLocked() {
	if c.created == nil || c.created.ExpiresAt == nil || !c.created.Pending() {
		c.remaining = nil
		return
	}
	d := c.created.ExpiresAt.Sub(c.clock())
	if d < 0 {
		d = 0
	}
	c.remaining = &d
}

// notifyTerminalLocked publishes the approved/expired event exactly once
// per session when the flow lands on a terminal state.
func (c *Controller) notifyTerminalLocked() {
	state := c.stateLocked()

	switch state {
	case StateApproved:
		if c.approvedSeen {
			return
		}
		c.approvedSeen = true
		metrics.IncFlowOutcome(state.String())
		payload := c.eventPayloadLocked("payment approved")
		go c.record(context.Background(), events.EventPaymentApproved, payload)
	case StateExpired:
		if c.expiredSeen {
			return
		}
		c.expiredSeen = true
		metrics.IncFlowOutcome(state.String())
		payload := c.eventPayloadLocked("payment window expired")
		go c.record(context.Background(), events.EventBookingExpired, payload)
	}
}
