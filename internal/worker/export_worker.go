package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"agendalink/internal/events"
	"agendalink/internal/google"
	"agendalink/internal/models"

	"github.com/rs/zerolog"
)

// SheetsClient is the slice of the spreadsheet service the worker needs.
type SheetsClient interface {
	AppendBookingRow(ctx context.Context, p events.BookingEventPayload) error
	UpdateBookingStatus(ctx context.Context, code, status string) error
}

const (
	taskAppend       = "append"
	taskUpdateStatus = "update_status"
)

type exportTask struct {
	Type    string
	Payload events.BookingEventPayload
	Status  string
	attempt int
}

// ExportWorker mirrors booking lifecycle events into a spreadsheet,
// retrying transient failures with exponential backoff. It consumes from
// an in-process queue fed by the event bus, so a slow Sheets API never
// blocks the booking flow.
type ExportWorker struct {
	sheets SheetsClient
	retry  ExportRetry
	queue  chan exportTask
	logger *zerolog.Logger
}

func NewExportWorker(sheets SheetsClient, retry ExportRetry, logger *zerolog.Logger) *ExportWorker {
	if retry.MaxAttempts == 0 {
		retry = DefaultExportRetry()
	}
	return &ExportWorker{
		sheets: sheets,
		retry:  retry,
		queue:  make(chan exportTask, models.WorkerQueueSize),
		logger: logger,
	}
}

// Subscribe wires the worker to the booking event stream. Created bookings
// become new rows; terminal transitions become status updates.
func (w *ExportWorker) Subscribe(bus *events.EventBus) {
	handler := func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			w.logger.Error().Err(err).Str("event_type", event.Type).Msg("decode export event error")
			return err
		}

		switch event.Type {
		case events.EventBookingCreated:
			w.enqueue(exportTask{Type: taskAppend, Payload: payload})
		case events.EventPaymentApproved:
			w.enqueue(exportTask{Type: taskUpdateStatus, Payload: payload, Status: models.StatusConfirmed})
		case events.EventBookingExpired:
			w.enqueue(exportTask{Type: taskUpdateStatus, Payload: payload, Status: models.StatusExpired})
		case events.EventBookingRolledBack:
			w.enqueue(exportTask{Type: taskUpdateStatus, Payload: payload, Status: models.StatusCancelled})
		}
		return nil
	}

	bus.Subscribe(events.EventBookingCreated, handler)
	bus.Subscribe(events.EventPaymentApproved, handler)
	bus.Subscribe(events.EventBookingExpired, handler)
	bus.Subscribe(events.EventBookingRolledBack, handler)
}

func (w *ExportWorker) enqueue(task exportTask) {
	select {
	case w.queue <- task:
	default:
		w.logger.Warn().Str("task_type", task.Type).Str("code", task.Payload.Code).Msg("export queue full, task dropped")
	}
}

// Run processes the queue until the context is cancelled.
func (w *ExportWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.process(ctx, task)
		}
	}
}

func (w *ExportWorker) process(ctx context.Context, task exportTask) {
	err := w.apply(ctx, task)
	if err == nil {
		return
	}
	// A status update for a row that was never appended has nothing to
	// retry against.
	if errors.Is(err, google.ErrRowNotFound) {
		w.logger.Warn().Str("code", task.Payload.Code).Msg("export row missing, dropping status update")
		return
	}

	task.attempt++
	if w.retry.Exhausted(task.attempt) {
		w.logger.Error().Err(err).
			Str("task_type", task.Type).
			Str("code", task.Payload.Code).
			Int("attempts", task.attempt).
			Msg("export task gave up")
		return
	}

	delay := w.retry.Delay(task.attempt)
	w.logger.Warn().Err(err).
		Str("task_type", task.Type).
		Str("code", task.Payload.Code).
		Dur("retry_in", delay).
		Msg("export task failed, retrying")

	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(delay):
			w.enqueue(task)
		}
	}()
}

func (w *ExportWorker) apply(ctx context.Context, task exportTask) error {
	switch task.Type {
	case taskAppend:
		return w.sheets.AppendBookingRow(ctx, task.Payload)
	case taskUpdateStatus:
		return w.sheets.UpdateBookingStatus(ctx, task.Payload.Code, task.Status)
	}
	return nil
}
