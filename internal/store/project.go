package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/planner-api/internal/domain"
)

// ProjectStore defines the interface for project persistence.
type ProjectStore interface {
	// Create saves a new project, including its schedule spec.
	// Returns validation errors from the domain Project if data is invalid.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// Update saves changes to an existing project and its schedule spec.
	// Returns ErrProjectNotFound if the project does not exist.
	Update(ctx context.Context, project *domain.Project) error

	// List retrieves all projects, ordered by creation time.
	List(ctx context.Context) ([]*domain.Project, error)

	// WithTx returns a ProjectStore that runs against the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ProjectStore
}
