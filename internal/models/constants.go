package models

import "time"

// Booking lifecycle statuses reported by the backend. Other values may appear
// and are treated opaquely.
const (
	StatusPendingPayment = "PENDING_PAYMENT"
	StatusConfirmed      = "CONFIRMED"
	StatusCancelled      = "CANCELLED"
	StatusExpired        = "EXPIRED"
)

// Provider-side payment status the flow compares against.
const PixStatusApproved = "approved"

// PaymentIntentSignal asks the provider for the deposit (signal) amount
// rather than the full price.
const PaymentIntentSignal = "SIGNAL"

const (
	// DefaultPollIntervalSeconds between booking/payment status polls.
	DefaultPollIntervalSeconds = 3

	// DefaultSessionTTL lifetime of an idle flow session.
	DefaultSessionTTL = 30 * time.Minute

	// DefaultExportRangeMonthsBefore/After bound the default export window.
	DefaultExportRangeMonthsBefore = 1
	DefaultExportRangeMonthsAfter  = 2

	// WorkerQueueSize caps the in-memory export queue.
	WorkerQueueSize = 1000

	// RateLimitRPS default for the public flow endpoints.
	RateLimitRPS   = 5
	RateLimitBurst = 10
)
