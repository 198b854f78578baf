package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

// ProjectService manages the project catalog.
type ProjectService struct {
	repo      ports.ProjectRepository
	reactions ports.ReactionRepository
	cache     ports.AnalyticsCache
	logger    zerolog.Logger
	now       func() time.Time
}

func NewProjectService(repo ports.ProjectRepository, reactions ports.ReactionRepository, cache ports.AnalyticsCache, logger zerolog.Logger) *ProjectService {
	return &ProjectService{
		repo:      repo,
		reactions: reactions,
		cache:     cache,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and stores a single project.
func (s *ProjectService) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	s.prepare(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("failed to create project")
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info().Str("project_id", p.ID).Str("region", p.Region).Msg("project created")
	return p, nil
}

// CreateMany validates every project first and stores none if any is invalid.
func (s *ProjectService) CreateMany(ctx context.Context, projects []*domain.Project) ([]*domain.Project, error) {
	if len(projects) == 0 {
		return nil, &domain.ValidationError{
			Err:    domain.ErrInvalidProject,
			Fields: []domain.FieldError{{Field: "projects", Message: "at least one project is required"}},
		}
	}
	var fields []domain.FieldError
	for i, p := range projects {
		s.prepare(p)
		var ve *domain.ValidationError
		if err := p.Validate(); errors.As(err, &ve) {
			for _, f := range ve.Fields {
				fields = append(fields, domain.FieldError{
					Field:   fmt.Sprintf("projects[%d].%s", i, f.Field),
					Message: fmt.Sprintf("project %d: %s", i, f.Message),
				})
			}
		}
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Err: domain.ErrInvalidProject, Fields: fields}
	}

	if err := s.repo.CreateMany(ctx, projects); err != nil {
		s.logger.Error().Err(err).Int("count", len(projects)).Msg("failed to bulk create projects")
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info().Int("count", len(projects)).Msg("projects created")
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns the projects matching filter in store order.
func (s *ProjectService) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	projects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return filter.Apply(projects, s.now()), nil
}

// Update applies a partial update and re-validates the result.
func (s *ProjectService) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(p)
	trimProject(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info().Str("project_id", id).Msg("project updated")
	return p, nil
}

// Delete removes a project together with every reaction on it.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.pruneReactions(ctx, []string{id})
	s.invalidate(ctx)
	s.logger.Info().Str("project_id", id).Msg("project deleted")
	return nil
}

// DeleteMany removes the listed projects and their reactions, returning how
// many projects existed.
func (s *ProjectService) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.pruneReactions(ctx, ids)
	s.invalidate(ctx)
	s.logger.Info().Int64("count", n).Msg("projects deleted")
	return n, nil
}

// pruneReactions cascades a project delete to the ledger. Readers skip orphaned
// reactions, so a failure here is logged rather than returned.
func (s *ProjectService) pruneReactions(ctx context.Context, ids []string) {
	n, err := s.reactions.DeleteByProjects(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).Strs("project_ids", ids).Msg("failed to delete reactions of removed projects")
		return
	}
	if n > 0 {
		s.logger.Info().Int64("count", n).Msg("reactions of removed projects deleted")
	}
}

func (s *ProjectService) prepare(p *domain.Project) {
	now := s.now()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	trimProject(p)
	if p.Status == "" {
		p.Status = domain.DefaultProjectStatus
	}
	p.CreatedAt = now
	p.UpdatedAt = now
}

func (s *ProjectService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate analytics cache")
	}
}

func trimProject(p *domain.Project) {
	for _, f := range []*string{&p.Name, &p.Location, &p.Region, &p.Contractor, &p.FiscalYear, &p.StartDate, &p.CompletionDate, &p.Status, &p.Notes} {
		*f = strings.TrimSpace(*f)
	}
}
