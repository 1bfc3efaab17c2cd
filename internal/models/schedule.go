package models

import "time"

// BusinessHourItem is one weekly availability window configured by the tenant.
type BusinessHourItem struct {
	Weekday   int    `json:"weekday"` // 0 = Sunday
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"startTime"` // "HH:MM"
	EndTime   string `json:"endTime"`
}

// Block is an ad hoc blackout period.
type Block struct {
	ID      string    `json:"id"`
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
	Reason  string    `json:"reason,omitempty"`
}

// DashboardSummary is the admin landing aggregate, consumed as-is.
type DashboardSummary struct {
	BookingsToday     int   `json:"bookingsToday"`
	BookingsWeek      int   `json:"bookingsWeek"`
	PendingPayment    int   `json:"pendingPayment"`
	ConfirmedWeek     int   `json:"confirmedWeek"`
	RevenueWeekCents  int64 `json:"revenueWeekCents"`
	SignalsHeldCents  int64 `json:"signalsHeldCents"`
	CancelledWeek     int   `json:"cancelledWeek"`
	ExpiredWeek       int   `json:"expiredWeek"`
	ActiveServices    int   `json:"activeServices"`
	ActiveLinks       int   `json:"activeLinks"`
	AvgLeadTimeHours  int   `json:"avgLeadTimeHours"`
	OccupancyPercent  int   `json:"occupancyPercent"`
}

// TenantTheme is the tenant-level appearance payload.
type TenantTheme struct {
	Version int               `json:"version"`
	Mode    string            `json:"mode"` // light, dark, system
	Vars    map[string]string `json:"vars"`
}
