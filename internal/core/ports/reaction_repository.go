package ports

import (
	"context"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

// ReactionRepository is the reaction ledger. It holds at most one reaction per
// (user, project) pair.
type ReactionRepository interface {
	// Upsert inserts the reaction or overwrites rating, comment, verification flag
	// and updated_at of the existing one for the same (UserID, ProjectID). The
	// stored reaction is returned.
	Upsert(ctx context.Context, r *domain.Reaction) (*domain.Reaction, error)
	Find(ctx context.Context, userID, projectID string) (*domain.Reaction, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Reaction, error)
	// ListByUser returns the user's reactions, newest first by creation time.
	ListByUser(ctx context.Context, userID string) ([]*domain.Reaction, error)
	// ListByProjects returns every reaction on any of projectIDs.
	ListByProjects(ctx context.Context, projectIDs []string) ([]*domain.Reaction, error)
	ListAll(ctx context.Context) ([]*domain.Reaction, error)
	Delete(ctx context.Context, userID, projectID string) error
	DeleteByProjects(ctx context.Context, projectIDs []string) (int64, error)
}
