package models

import "time"

type Service struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	DurationMinutes int      `json:"durationMinutes"` // 0 = variable/unspecified
	PriceCents      int64    `json:"priceCents"`
	Active          bool     `json:"active"`
	SignalPercent   *float64 `json:"signalPercentOverride,omitempty"`
}

// ServiceSummary is the embedded service snapshot carried inside a booking.
type ServiceSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
	PriceCents      int64  `json:"priceCents"`
}

type Slot struct {
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
}

// AvailabilityResponse is the slot listing for one service/date pair.
type AvailabilityResponse struct {
	Date                string `json:"date"`
	Timezone            string `json:"timezone"`
	ServiceID           string `json:"serviceId"`
	DurationMinutes     int    `json:"durationMinutes"`
	SlotIntervalMinutes int    `json:"slotIntervalMinutes"`
	Slots               []Slot `json:"slots"`
}
