package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

type reactionService struct {
	projects  ports.ProjectRepository
	reactions ports.ReactionRepository
	users     ports.UserRepository
	locations ports.LocationRepository
	cache     ports.AnalyticsCache
	policy    *ProximityPolicy
	log       zerolog.Logger
	now       func() time.Time
}

// NewReactionService returns a ReactionService implementation.
func NewReactionService(
	projects ports.ProjectRepository,
	reactions ports.ReactionRepository,
	users ports.UserRepository,
	locations ports.LocationRepository,
	cache ports.AnalyticsCache,
	policy *ProximityPolicy,
	log zerolog.Logger,
) ports.ReactionService {
	return &reactionService{
		projects:  projects,
		reactions: reactions,
		users:     users,
		locations: locations,
		cache:     cache,
		policy:    policy,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates, proximity-checks and stores a rating.
func (s *reactionService) Submit(ctx context.Context, in ports.SubmitReactionInput) (*ports.SubmitReactionResult, error) {
	// 1. Reject malformed input before any state change.
	rating := domain.Rating(in.Rating)
	comment := strings.TrimSpace(in.Comment)
	if err := validateSubmission(rating, comment, in.Location); err != nil {
		return nil, err
	}

	// 2. The project must exist.
	project, err := s.projects.FindByID(ctx, in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("submit reaction: %w", err)
	}

	// 3. Any submitted location is recorded whatever the outcome of this rating.
	loc, err := s.recordLocation(ctx, in.UserID, in.Location)
	if err != nil {
		return nil, fmt.Errorf("submit reaction: %w", err)
	}

	// 4. Proximity rule.
	outcome := s.policy.Evaluate(project, loc, in.Unrestricted)
	if err := outcome.Err(); err != nil {
		s.log.Info().
			Str("user_id", in.UserID).
			Str("project_id", in.ProjectID).
			Float64("distance_m", outcome.DistanceMeters).
			Msg("reaction rejected: too far from project")
		return nil, err
	}

	// 5. Upsert into the ledger.
	now := s.now()
	stored, err := s.reactions.Upsert(ctx, &domain.Reaction{
		UserID:            in.UserID,
		ProjectID:         in.ProjectID,
		Rating:            rating,
		Comment:           comment,
		ProximityVerified: outcome.Verified,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return nil, fmt.Errorf("submit reaction: %w", err)
	}

	s.invalidate(ctx)

	s.log.Info().
		Str("user_id", in.UserID).
		Str("project_id", in.ProjectID).
		Str("rating", in.Rating).
		Bool("verified", outcome.Verified).
		Bool("admin_bypass", outcome.AdminBypass).
		Msg("reaction stored")

	return &ports.SubmitReactionResult{Reaction: stored, Outcome: outcome}, nil
}

// CheckProximity evaluates the proximity rule without storing a reaction. The
// location is still recorded as the user's latest position.
func (s *reactionService) CheckProximity(ctx context.Context, userID, projectID string, in *ports.LocationInput, unrestricted bool) (domain.ProximityOutcome, error) {
	if in != nil && !domain.ValidCoordinates(domain.Coordinates{Lat: in.Lat, Lng: in.Lng}) {
		return domain.ProximityOutcome{}, locationError()
	}
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return domain.ProximityOutcome{}, fmt.Errorf("check proximity: %w", err)
	}
	loc, err := s.recordLocation(ctx, userID, in)
	if err != nil {
		return domain.ProximityOutcome{}, fmt.Errorf("check proximity: %w", err)
	}
	return s.policy.Evaluate(project, loc, unrestricted), nil
}

// Remove deletes the caller's own reaction on a project.
func (s *reactionService) Remove(ctx context.Context, userID, projectID string) error {
	if err := s.reactions.Delete(ctx, userID, projectID); err != nil {
		return fmt.Errorf("remove reaction: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// ListForProject returns the project's reactions with each submitter's public identity.
func (s *reactionService) ListForProject(ctx context.Context, projectID string) ([]ports.ProjectReaction, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	reactions, err := s.reactions.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}

	ids := make([]string, 0, len(reactions))
	for _, r := range reactions {
		ids = append(ids, r.UserID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list reactions: load users: %w", err)
	}

	out := make([]ports.ProjectReaction, 0, len(reactions))
	for _, r := range reactions {
		pr := ports.ProjectReaction{Reaction: r, User: domain.PublicUser{ID: r.UserID}}
		if u, ok := users[r.UserID]; ok {
			pr.User = u.Public()
		}
		out = append(out, pr)
	}
	return out, nil
}

// ListForUser returns the user's reactions, newest first, with a project summary.
// Reactions whose project no longer exists are skipped.
func (s *reactionService) ListForUser(ctx context.Context, userID string) ([]ports.UserReaction, error) {
	reactions, err := s.reactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user reactions: %w", err)
	}

	ids := make([]string, 0, len(reactions))
	for _, r := range reactions {
		ids = append(ids, r.ProjectID)
	}
	projects, err := s.projects.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list user reactions: load projects: %w", err)
	}

	out := make([]ports.UserReaction, 0, len(reactions))
	for _, r := range reactions {
		p, ok := projects[r.ProjectID]
		if !ok {
			continue
		}
		out = append(out, ports.UserReaction{Reaction: r, Project: summarize(p)})
	}
	return out, nil
}

// recordLocation overwrites the user's stored location and marks them location
// verified. It returns nil when no location was submitted.
func (s *reactionService) recordLocation(ctx context.Context, userID string, in *ports.LocationInput) (*domain.Coordinates, error) {
	if in == nil {
		return nil, nil
	}
	loc := domain.Coordinates{Lat: in.Lat, Lng: in.Lng}
	now := s.now()
	if err := s.locations.Upsert(ctx, &domain.UserLocation{
		UserID:    userID,
		Point:     loc,
		Address:   in.Address,
		UpdatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("save location: %w", err)
	}
	if err := s.users.MarkLocationVerified(ctx, userID, now); err != nil {
		return nil, fmt.Errorf("mark location verified: %w", err)
	}
	return &loc, nil
}

func (s *reactionService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate analytics cache")
	}
}

func validateSubmission(rating domain.Rating, comment string, loc *ports.LocationInput) error {
	var fields []domain.FieldError
	if !rating.Valid() {
		fields = append(fields, domain.FieldError{
			Field:   "rating",
			Message: "rating must be one of: excellent standard sub-standard ghost",
		})
	}
	if len([]rune(comment)) > domain.MaxCommentLength {
		fields = append(fields, domain.FieldError{
			Field:   "comment",
			Message: fmt.Sprintf("comment must be at most %d characters", domain.MaxCommentLength),
		})
	}
	if loc != nil && !domain.ValidCoordinates(domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng}) {
		fields = append(fields, domain.FieldError{Field: "userLocation", Message: "location must be a valid latitude/longitude"})
	}
	if len(fields) == 0 {
		return nil
	}
	err := domain.ErrInvalidReaction
	if !rating.Valid() {
		err = domain.ErrInvalidRating
	}
	return &domain.ValidationError{Err: err, Fields: fields}
}

func locationError() error {
	return &domain.ValidationError{
		Err:    domain.ErrInvalidLocation,
		Fields: []domain.FieldError{{Field: "userLocation", Message: "location must be a valid latitude/longitude"}},
	}
}

func summarize(p *domain.Project) ports.ProjectSummary {
	return ports.ProjectSummary{
		ID:         p.ID,
		Name:       p.Name,
		Location:   p.Location,
		Region:     p.Region,
		Contractor: p.Contractor,
	}
}
