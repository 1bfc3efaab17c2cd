package session

import (
	"context"
	"time"

	"agendalink/internal/models"
)

// FlowSession is the durable part of a public booking session. It is what
// survives a process restart: the volatile controller is rebuilt from it.
type FlowSession struct {
	ID        string          `json:"id"`
	LinkToken string          `json:"link_token"`
	ServiceID string          `json:"service_id"`
	Date      string          `json:"date"`
	Customer  models.Customer `json:"customer"`
	BookingID string          `json:"booking_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Repository stores flow sessions keyed by session id.
type Repository interface {
	Get(ctx context.Context, id string) (*FlowSession, error)
	Set(ctx context.Context, s *FlowSession) error
	Delete(ctx context.Context, id string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
