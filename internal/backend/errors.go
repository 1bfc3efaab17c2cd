package backend

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
)

// APIError carries the HTTP status and the backend-provided message of a
// failed call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s (http %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("backend: http %d", e.StatusCode)
}

// The backend reports link problems through status codes and free-form
// Portuguese messages; both are matched, mirroring what it actually sends.
var (
	linkInvalidRe  = regexp.MustCompile(`(?i)token|inv[aá]lid|inexistente`)
	linkInactiveRe = regexp.MustCompile(`(?i)inativ|desativad`)
)

// IsLinkInvalid reports whether the error means the public link token does
// not exist or has expired. Checked before IsLinkInactive.
func IsLinkInvalid(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusNotFound || linkInvalidRe.MatchString(apiErr.Message)
}

// IsLinkInactive reports whether the error means the link exists but was
// disabled by the tenant.
func IsLinkInactive(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusForbidden || linkInactiveRe.MatchString(apiErr.Message)
}

// Message extracts the backend-provided message from an error. Transport
// failures and empty responses yield the fallback, so raw dial errors never
// reach the end user.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
