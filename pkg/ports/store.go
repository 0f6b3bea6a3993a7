package ports

import (
	"context"

	"github.com/aretw0/botcraft/pkg/domain"
)

// GraphStore defines the interface for persisting editing sessions.
// Implementations must store a copy, so later mutations by the caller do not leak in.
type GraphStore interface {
	// Save persists the session under its ID.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves the session with the given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}
