package repository

import (
	"context"
	"sync/atomic"
	"time"

	"agendalink/internal/session"

	"github.com/rs/zerolog"
)

type FailoverSessionRepository struct {
	primary   session.Repository
	fallback  session.Repository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverSessionRepository(primary, fallback session.Repository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionRepository) Get(ctx context.Context, id string) (*session.FlowSession, error) {
	if !r.isDown.Load() {
		s, err := r.primary.Get(ctx, id)
		if err == nil {
			return s, nil
		}
		r.logger.Error().Err(err).Msg("Primary session repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		s, err := r.primary.Get(ctx, id)
		if err == nil {
			r.isDown.Store(false)
			return s, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.Get(ctx, id)
}

func (r *FailoverSessionRepository) Set(ctx context.Context, s *session.FlowSession) error {
	if !r.isDown.Load() {
		err := r.primary.Set(ctx, s)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary session repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.Set(ctx, s)
}

func (r *FailoverSessionRepository) Delete(ctx context.Context, id string) error {
	if !r.isDown.Load() {
		err := r.primary.Delete(ctx, id)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary session repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.Delete(ctx, id)
}

func (r *FailoverSessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.logger.Error().Err(err).Msg("Primary session repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
