package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"agendalink/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepository struct {
	err error
}

func (f *failingRepository) Get(ctx context.Context, id string) (*session.FlowSession, error) {
	return nil, f.err
}

func (f *failingRepository) Set(ctx context.Context, s *session.FlowSession) error {
	return f.err
}

func (f *failingRepository) Delete(ctx context.Context, id string) error {
	return f.err
}

func (f *failingRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, f.err
}

func TestFailoverSessionRepository(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("PrimaryHealthy", func(t *testing.T) {
		primary := NewMemorySessionRepository(time.Hour)
		fallback := NewMemorySessionRepository(time.Hour)
		repo := NewFailoverSessionRepository(primary, fallback, &logger)

		sess := &session.FlowSession{ID: "sess_1", LinkToken: "tok_abc"}
		require.NoError(t, repo.Set(ctx, sess))

		got, err := repo.Get(ctx, "sess_1")
		require.NoError(t, err)
		require.NotNil(t, got)

		fromFallback, _ := fallback.Get(ctx, "sess_1")
		assert.Nil(t, fromFallback, "fallback must stay untouched while primary works")
	})

	t.Run("FallsBackOnPrimaryError", func(t *testing.T) {
		primary := &failingRepository{err: errors.New("redis down")}
		fallback := NewMemorySessionRepository(time.Hour)
		repo := NewFailoverSessionRepository(primary, fallback, &logger)

		sess := &session.FlowSession{ID: "sess_2", LinkToken: "tok_abc"}
		require.NoError(t, repo.Set(ctx, sess))

		got, err := repo.Get(ctx, "sess_2")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "tok_abc", got.LinkToken)
	})

	t.Run("RateLimitFallsBack", func(t *testing.T) {
		primary := &failingRepository{err: errors.New("redis down")}
		fallback := NewMemorySessionRepository(time.Hour)
		repo := NewFailoverSessionRepository(primary, fallback, &logger)

		allowed, err := repo.CheckRateLimit(ctx, "ip_1", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, "ip_1", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}
