package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	t.Run("PublishReachesSubscribers", func(t *testing.T) {
		bus := NewEventBus()
		var got []string

		bus.Subscribe(EventBookingCreated, func(e *Event) error {
			got = append(got, string(e.Payload))
			return nil
		})
		bus.Subscribe(EventBookingCreated, func(e *Event) error {
			got = append(got, "second")
			return nil
		})

		bus.Publish(&Event{Type: EventBookingCreated, Payload: []byte("first")})
		assert.Equal(t, []string{"first", "second"}, got)
	})

	t.Run("TypeIsolation", func(t *testing.T) {
		bus := NewEventBus()
		var called bool
		bus.Subscribe(EventPaymentApproved, func(e *Event) error {
			called = true
			return nil
		})

		bus.Publish(&Event{Type: EventBookingExpired})
		assert.False(t, called)
	})

	t.Run("PublishJSON", func(t *testing.T) {
		bus := NewEventBus()
		var received BookingEventPayload

		bus.Subscribe(EventPaymentApproved, func(e *Event) error {
			assert.False(t, e.CreatedAt.IsZero())
			return json.Unmarshal(e.Payload, &received)
		})

		err := bus.PublishJSON(EventPaymentApproved, BookingEventPayload{
			BookingID: "bkg_1",
			Code:      "AGD-0001",
		})
		require.NoError(t, err)
		assert.Equal(t, "AGD-0001", received.Code)
	})

	t.Run("NilBusPublishJSON", func(t *testing.T) {
		var bus *EventBus
		assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{}))
	})

	t.Run("PublishWithoutSubscribers", func(t *testing.T) {
		bus := NewEventBus()
		bus.Publish(&Event{Type: EventBookingRolledBack})
	})
}
