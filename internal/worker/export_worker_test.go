package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"agendalink/internal/events"
	"agendalink/internal/google"
	"agendalink/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSheets struct {
	mu         sync.Mutex
	appended   []events.BookingEventPayload
	statuses   map[string]string
	appendErrs int
	updateErr  error
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{statuses: make(map[string]string)}
}

func (f *fakeSheets) AppendBookingRow(ctx context.Context, p events.BookingEventPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErrs > 0 {
		f.appendErrs--
		return errors.New("quota exceeded")
	}
	f.appended = append(f.appended, p)
	return nil
}

func (f *fakeSheets) UpdateBookingStatus(ctx context.Context, code, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.statuses[code] = status
	return nil
}

func (f *fakeSheets) appendedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appended)
}

func (f *fakeSheets) status(code string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[code]
}

func newTestWorker(t *testing.T, sheets SheetsClient) (*ExportWorker, *events.EventBus) {
	t.Helper()
	logger := zerolog.Nop()
	w := NewExportWorker(sheets, ExportRetry{
		MaxAttempts: 3,
		BaseDelay:   5 * time.Millisecond,
		MaxDelay:    20 * time.Millisecond,
		Growth:      2,
	}, &logger)

	bus := events.NewEventBus()
	w.Subscribe(bus)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx)

	return w, bus
}

func TestExportWorker(t *testing.T) {
	payload := events.BookingEventPayload{
		SessionID:   "sess_1",
		BookingID:   "bkg_1",
		Code:        "AGD-0001",
		ServiceName: "Haircut",
		Status:      models.StatusPendingPayment,
		AmountCents: 2500,
	}

	t.Run("CreatedAppendsRow", func(t *testing.T) {
		sheets := newFakeSheets()
		_, bus := newTestWorker(t, sheets)

		require.NoError(t, bus.PublishJSON(events.EventBookingCreated, payload))

		require.Eventually(t, func() bool {
			return sheets.appendedCount() == 1
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("ApprovedUpdatesStatus", func(t *testing.T) {
		sheets := newFakeSheets()
		_, bus := newTestWorker(t, sheets)

		require.NoError(t, bus.PublishJSON(events.EventPaymentApproved, payload))

		require.Eventually(t, func() bool {
			return sheets.status("AGD-0001") == models.StatusConfirmed
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("ExpiredUpdatesStatus", func(t *testing.T) {
		sheets := newFakeSheets()
		_, bus := newTestWorker(t, sheets)

		require.NoError(t, bus.PublishJSON(events.EventBookingExpired, payload))

		require.Eventually(t, func() bool {
			return sheets.status("AGD-0001") == models.StatusExpired
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("RetriesTransientFailure", func(t *testing.T) {
		sheets := newFakeSheets()
		sheets.appendErrs = 2
		_, bus := newTestWorker(t, sheets)

		require.NoError(t, bus.PublishJSON(events.EventBookingCreated, payload))

		require.Eventually(t, func() bool {
			return sheets.appendedCount() == 1
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("MissingRowDropped", func(t *testing.T) {
		sheets := newFakeSheets()
		sheets.updateErr = google.ErrRowNotFound
		_, bus := newTestWorker(t, sheets)

		require.NoError(t, bus.PublishJSON(events.EventPaymentApproved, payload))

		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, sheets.status("AGD-0001"))
	})
}

func TestExportRetryDelay(t *testing.T) {
	r := ExportRetry{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: 10 * time.Second, Growth: 2}

	assert.Equal(t, time.Second, r.Delay(1))
	assert.Equal(t, 2*time.Second, r.Delay(2))
	assert.Equal(t, 4*time.Second, r.Delay(3))
	assert.Equal(t, 10*time.Second, r.Delay(10), "clamped to MaxDelay")
	assert.Equal(t, time.Second, r.Delay(0), "attempt floored at 1")

	zero := ExportRetry{}
	assert.Equal(t, time.Second, zero.Delay(1))
}

func TestExportRetryExhausted(t *testing.T) {
	r := ExportRetry{MaxAttempts: 3}

	assert.False(t, r.Exhausted(3))
	assert.True(t, r.Exhausted(4))
	assert.False(t, ExportRetry{}.Exhausted(100), "zero MaxAttempts never gives up")
}
