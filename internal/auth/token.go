// internal/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrMalformedToken is returned when an access token carries no exp claim.
var ErrMalformedToken = errors.New("token has no expiration time")

// tokenExpiration decodes the access token as an unverified JWT and returns
// its exp claim. We are the consumer of the token, not its audience, so
// signature verification is the platform's concern; only the lifetime
// matters here.
func tokenExpiration(raw string) (time.Time, error) {
	tok, err := jwt.Parse([]byte(raw), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return time.Time{}, fmt.Errorf("decode token: %w", err)
	}
	exp := tok.Expiration()
	if exp.IsZero() {
		return time.Time{}, ErrMalformedToken
	}
	return exp, nil
}

// tokenExpired reports whether the token's exp claim lies before now.
func tokenExpired(raw string, now time.Time) (bool, error) {
	exp, err := tokenExpiration(raw)
	if err != nil {
		return false, err
	}
	return exp.Before(now), nil
}
