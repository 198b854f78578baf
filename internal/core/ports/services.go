package ports

import (
	"context"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

// LocationInput carries coordinates reported by a client.
type LocationInput struct {
	Lat     float64
	Lng     float64
	Address string
}

// SubmitReactionInput is the DTO passed from the transport layer to ReactionService.
type SubmitReactionInput struct {
	UserID    string
	ProjectID string
	Rating    string
	Comment   string
	Location  *LocationInput // optional
	// Unrestricted is resolved from the caller's identity at the auth boundary.
	Unrestricted bool
}

// SubmitReactionResult is returned for an accepted submission.
type SubmitReactionResult struct {
	Reaction *domain.Reaction
	Outcome  domain.ProximityOutcome
}

// ProjectReaction is a reaction joined with the submitter's public identity.
type ProjectReaction struct {
	Reaction *domain.Reaction
	User     domain.PublicUser
}

// UserReaction is a reaction joined with a summary of the rated project.
type UserReaction struct {
	Reaction *domain.Reaction
	Project  ProjectSummary
}

// ProjectSummary is the lightweight project view embedded in other resources.
type ProjectSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	Region     string `json:"region"`
	Contractor string `json:"contractor"`
}

// ReactionService defines the rating use cases.
type ReactionService interface {
	Submit(ctx context.Context, in SubmitReactionInput) (*SubmitReactionResult, error)
	CheckProximity(ctx context.Context, userID, projectID string, loc *LocationInput, unrestricted bool) (domain.ProximityOutcome, error)
	Remove(ctx context.Context, userID, projectID string) error
	ListForProject(ctx context.Context, projectID string) ([]ProjectReaction, error)
	ListForUser(ctx context.Context, userID string) ([]UserReaction, error)
}

// ProjectService defines catalog use cases.
type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	CreateMany(ctx context.Context, projects []*domain.Project) ([]*domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error)
	Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// AnalyticsService computes dashboards and leaderboards.
type AnalyticsService interface {
	Snapshot(ctx context.Context, filter domain.ProjectFilter, opts domain.AnalyticsOptions) (*domain.AnalyticsSnapshot, error)
	ContractorLeaderboard(ctx context.Context, filter domain.ProjectFilter, opts domain.AnalyticsOptions, sort domain.ContractorSort, limit int) ([]domain.ContractorRollup, error)
	ProjectLeaderboard(ctx context.Context, filter domain.ProjectFilter, limit int) ([]domain.ProjectRollup, error)
	UserLeaderboard(ctx context.Context, limit int) ([]domain.UserRollup, error)
}

// UserService manages profiles and locations.
type UserService interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, username, displayName *string) (*domain.User, error)
	UpdateLocation(ctx context.Context, id string, loc LocationInput) (*domain.UserLocation, error)
}

// AuthService signs users in and issues bearer tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	OAuthLogin(ctx context.Context, identity *ExternalIdentity) (string, *domain.User, error)
	IssueToken(user *domain.User) (string, error)
}

// ProviderSettings manages which OAuth providers are enabled.
type ProviderSettings interface {
	Enabled(ctx context.Context) ([]string, error)
	IsEnabled(ctx context.Context, provider string) (bool, error)
	SetEnabled(ctx context.Context, providers []string) ([]string, error)
}
