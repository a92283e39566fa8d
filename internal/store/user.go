package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/planner-api/internal/domain"
)

// UserStore defines the interface for user persistence. Credential
// management is external; this service only reads collaborator data.
type UserStore interface {
	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetTimezone returns the user's configured timezone identifier, or an
	// empty string when the user has no preference set.
	// Returns ErrUserNotFound if the user does not exist.
	GetTimezone(ctx context.Context, id uuid.UUID) (string, error)

	// WithTx returns a UserStore that runs against the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
