package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// expiryLeeway makes a token count as expired slightly before its real
// deadline, so a request sent with it doesn't die mid-flight.
const expiryLeeway = 30 * time.Second

var errMalformedToken = errors.New("session: malformed token")

type jwtClaims struct {
	Sub      string `json:"sub"`
	TenantID string `json:"tenantId"`
	Email    string `json:"email"`
	Exp      int64  `json:"exp"`
}

// decodeClaims extracts the payload of a JWT without verifying the
// signature. The gateway never trusts these claims for authorization
// (the backend verifies every request); they only drive proactive
// logout before the backend would reject the token anyway.
func decodeClaims(token string) (*jwtClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errMalformedToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errMalformedToken
	}
	var claims jwtClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, errMalformedToken
	}
	return &claims, nil
}

// TokenExpired reports whether the JWT is expired at the given instant,
// with leeway. Malformed tokens and tokens without an exp claim count as
// expired.
func TokenExpired(token string, now time.Time) bool {
	claims, err := decodeClaims(token)
	if err != nil {
		return true
	}
	if claims.Exp == 0 {
		return true
	}
	return now.Add(expiryLeeway).Unix() >= claims.Exp
}
