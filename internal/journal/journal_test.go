package journal

import (
	"context"
	"path/filepath"
	"testing"

	"agendalink/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "data", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordAndList", func(t *testing.T) {
		j := openTestJournal(t)

		require.NoError(t, j.Record(ctx, Entry{
			SessionID: "sess_1",
			BookingID: "bkg_1",
			Code:      "AGD-0001",
			Event:     events.EventBookingCreated,
		}))
		require.NoError(t, j.Record(ctx, Entry{
			SessionID: "sess_1",
			BookingID: "bkg_1",
			Code:      "AGD-0001",
			Event:     events.EventPaymentApproved,
			Detail:    "payment approved",
		}))

		entries, err := j.List(ctx, "sess_1", 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		// newest first
		assert.Equal(t, events.EventPaymentApproved, entries[0].Event)
		assert.Equal(t, "payment approved", entries[0].Detail)
		assert.False(t, entries[0].At.IsZero())
	})

	t.Run("FilterBySession", func(t *testing.T) {
		j := openTestJournal(t)

		require.NoError(t, j.Record(ctx, Entry{SessionID: "sess_a", Event: events.EventBookingCreated}))
		require.NoError(t, j.Record(ctx, Entry{SessionID: "sess_b", Event: events.EventBookingExpired}))

		entries, err := j.List(ctx, "sess_a", 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "sess_a", entries[0].SessionID)

		all, err := j.List(ctx, "", 10)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("Limit", func(t *testing.T) {
		j := openTestJournal(t)
		for i := 0; i < 5; i++ {
			require.NoError(t, j.Record(ctx, Entry{SessionID: "sess_1", Event: events.EventBookingCreated}))
		}

		entries, err := j.List(ctx, "sess_1", 3)
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})

	t.Run("NilJournal", func(t *testing.T) {
		var j *Journal
		assert.NoError(t, j.Record(ctx, Entry{SessionID: "sess_1", Event: "x"}))
		entries, err := j.List(ctx, "sess_1", 10)
		assert.NoError(t, err)
		assert.Nil(t, entries)
	})
}
