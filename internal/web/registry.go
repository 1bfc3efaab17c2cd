package web

import (
	"context"
	"errors"
	"sync"
	"time"

	"agendalink/internal/flow"
	"agendalink/internal/metrics"
	"agendalink/internal/models"
	"agendalink/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrSessionNotFound = errors.New("web: session not found")
	ErrTooManySessions = errors.New("web: session limit reached")
)

// ControllerFactory builds a flow controller bound to one public link.
type ControllerFactory func(linkToken, sessionID string) *flow.Controller

// Registry holds the live controllers keyed by session id. Sessions idle
// past the TTL are evicted; their durable part stays in the repository, so
// a later request rehydrates a fresh controller around the same booking.
type Registry struct {
	factory     ControllerFactory
	sessions    session.Repository
	ttl         time.Duration
	maxSessions int
	logger      *zerolog.Logger
	clock       func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	ctrl      *flow.Controller
	linkToken string
	lastSeen  time.Time
}

func NewRegistry(factory ControllerFactory, sessions session.Repository, ttl time.Duration, maxSessions int, logger *zerolog.Logger) *Registry {
	if ttl <= 0 {
		ttl = models.DefaultSessionTTL
	}
	return &Registry{
		factory:     factory,
		sessions:    sessions,
		ttl:         ttl,
		maxSessions: maxSessions,
		logger:      logger,
		clock:       time.Now,
		entries:     make(map[string]*registryEntry),
	}
}

// Start creates a new session for a link and persists its durable record.
func (r *Registry) Start(ctx context.Context, linkToken string) (string, *flow.Controller, error) {
	r.mu.Lock()
	if r.maxSessions > 0 && len(r.entries) >= r.maxSessions {
		r.mu.Unlock()
		return "", nil, ErrTooManySessions
	}
	id := uuid.NewString()
	ctrl := r.factory(linkToken, id)
	r.entries[id] = &registryEntry{ctrl: ctrl, linkToken: linkToken, lastSeen: r.clock()}
	r.mu.Unlock()

	metrics.IncFlowSession()

	now := r.clock()
	err := r.sessions.Set(ctx, &session.FlowSession{
		ID:        id,
		LinkToken: linkToken,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("session_id", id).Msg("persist session error")
	}
	return id, ctrl, nil
}

// Get returns the live controller for a session, rehydrating it from the
// repository when the process no longer holds it in memory.
func (r *Registry) Get(ctx context.Context, linkToken, id string) (*flow.Controller, error) {
	r.mu.Lock()
	if e, ok := r.entries[id]; ok {
		if e.linkToken != linkToken {
			r.mu.Unlock()
			return nil, ErrSessionNotFound
		}
		e.lastSeen = r.clock()
		ctrl := e.ctrl
		r.mu.Unlock()
		return ctrl, nil
	}
	r.mu.Unlock()

	stored, err := r.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.LinkToken != linkToken {
		return nil, ErrSessionNotFound
	}

	ctrl := r.factory(linkToken, id)
	ctrl.SetSelection(stored.ServiceID, stored.Date)
	ctrl.SetCustomer(stored.Customer)
	if stored.BookingID != "" {
		if err := ctrl.Resume(ctx, stored.BookingID); err != nil {
			r.logger.Warn().Err(err).Str("session_id", id).Str("booking_id", stored.BookingID).Msg("session resume failed")
		}
	}

	r.mu.Lock()
	if e, ok := r.entries[id]; ok {
		// Another request rehydrated concurrently; keep theirs.
		ctrl.Close()
		e.lastSeen = r.clock()
		ctrl = e.ctrl
	} else {
		r.entries[id] = &registryEntry{ctrl: ctrl, linkToken: linkToken, lastSeen: r.clock()}
	}
	r.mu.Unlock()
	return ctrl, nil
}

// Persist updates the durable record after a state-changing request.
func (r *Registry) Persist(ctx context.Context, linkToken, id string, ctrl *flow.Controller) {
	snap := ctrl.Snapshot()
	s := &session.FlowSession{
		ID:        id,
		LinkToken: linkToken,
		ServiceID: snap.ServiceID,
		Date:      snap.Date,
		Customer:  snap.Customer,
		BookingID: ctrl.BookingID(),
		UpdatedAt: r.clock(),
	}
	if err := r.sessions.Set(ctx, s); err != nil {
		r.logger.Error().Err(err).Str("session_id", id).Msg("persist session error")
	}
}

// RunJanitor evicts idle sessions until the context ends.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.evictIdle()
		}
	}
}

func (r *Registry) evictIdle() {
	cutoff := r.clock().Add(-r.ttl)

	r.mu.Lock()
	var evicted []*flow.Controller
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			evicted = append(evicted, e.ctrl)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, ctrl := range evicted {
		ctrl.Close()
	}
	if len(evicted) > 0 {
		r.logger.Debug().Int("count", len(evicted)).Msg("idle sessions evicted")
	}
}

// Close stops every live controller.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*registryEntry)
	r.mu.Unlock()

	for _, e := range entries {
		e.ctrl.Close()
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
