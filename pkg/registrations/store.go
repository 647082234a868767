package registrations

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no registration exists for a client id.
var ErrNotFound = errors.New("registration not found")

type Store interface {
	// Upsert stores a registration, replacing any prior record for the
	// same client id.
	Upsert(ctx context.Context, reg ClientRegistration) error
	// Get returns the registration for a client id, or ErrNotFound.
	Get(ctx context.Context, clientID string) (ClientRegistration, error)
}
