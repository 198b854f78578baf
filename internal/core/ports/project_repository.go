package ports

import (
	"context"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

// ProjectRepository defines persistence operations for the project catalog.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	CreateMany(ctx context.Context, projects []*domain.Project) error
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	// FindByIDs returns the projects that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Project, error)
	// List returns projects matching filter. Implementations may push down only
	// part of the filter; callers apply filter.Match to the result.
	List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
	// DeleteMany removes every listed project and returns how many existed.
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}
