package session

import (
	"net/http"
	"strings"
	"time"
)

// AdminSession wraps a backend-issued JWT for an admin console user. The
// gateway keeps no server-side admin state: the token itself is the
// session, passed per request.
type AdminSession struct {
	Token string
	clock func() time.Time
}

func NewAdminSession(token string) *AdminSession {
	return &AdminSession{Token: token, clock: time.Now}
}

// Valid reports whether the session carries a usable token.
func (s *AdminSession) Valid() bool {
	if s == nil || s.Token == "" {
		return false
	}
	return !TokenExpired(s.Token, s.clock())
}

// FromRequest pulls the admin session out of the Authorization header.
// Returns nil when the header is absent or not a bearer token.
func FromRequest(r *http.Request) *AdminSession {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return nil
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, prefix))
	if token == "" {
		return nil
	}
	return NewAdminSession(token)
}
