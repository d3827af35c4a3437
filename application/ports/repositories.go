// Package ports defines the interfaces the application layer depends on.
// Infrastructure supplies the implementations; handlers never import
// infrastructure directly.
package ports

import (
	"context"

	"pagecraft-backend/domain/core/aggregates"
)

// CanvasRepository owns persistence of canvas aggregates for the lifetime
// of an editing session
type CanvasRepository interface {
	GetByID(ctx context.Context, id aggregates.CanvasID) (*aggregates.Canvas, error)
	GetOrCreateDefault(ctx context.Context, userID string) (*aggregates.Canvas, error)
	Save(ctx context.Context, canvas *aggregates.Canvas) error
}

// ProjectRepository is the boundary to project CRUD, which lives outside
// this service. Only the operations the editor needs are declared here.
type ProjectRepository interface {
	ProjectExists(ctx context.Context, userID, projectID string) (bool, error)
}
