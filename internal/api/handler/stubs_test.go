package handler

import (
	"context"
	"io"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

// newTestContext builds an echo context with the validator wired and, when
// userID is set, the claims the Auth middleware would inject.
func newTestContext(method, target string, body io.Reader, userID string, unrestricted bool) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(CtxUserID, userID)
		c.Set(CtxRole, domain.RoleUser)
		c.Set(CtxUnrestricted, unrestricted)
	}
	return c, rec
}

type stubAuthService struct {
	loginFn      func(ctx context.Context, email, password string) (string, *domain.User, error)
	oauthLoginFn func(ctx context.Context, ident *ports.ExternalIdentity) (string, *domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) OAuthLogin(ctx context.Context, ident *ports.ExternalIdentity) (string, *domain.User, error) {
	return s.oauthLoginFn(ctx, ident)
}

func (s *stubAuthService) IssueToken(user *domain.User) (string, error) {
	return "token-" + user.ID, nil
}

type stubReactionService struct {
	submitFn    func(ctx context.Context, in ports.SubmitReactionInput) (*ports.SubmitReactionResult, error)
	proximityFn func(ctx context.Context, userID, projectID string, loc *ports.LocationInput, unrestricted bool) (domain.ProximityOutcome, error)
	removeFn    func(ctx context.Context, userID, projectID string) error
	forProject  []ports.ProjectReaction
	forUser     []ports.UserReaction
	listErr     error
}

func (s *stubReactionService) Submit(ctx context.Context, in ports.SubmitReactionInput) (*ports.SubmitReactionResult, error) {
	return s.submitFn(ctx, in)
}

func (s *stubReactionService) CheckProximity(ctx context.Context, userID, projectID string, loc *ports.LocationInput, unrestricted bool) (domain.ProximityOutcome, error) {
	return s.proximityFn(ctx, userID, projectID, loc, unrestricted)
}

func (s *stubReactionService) Remove(ctx context.Context, userID, projectID string) error {
	return s.removeFn(ctx, userID, projectID)
}

func (s *stubReactionService) ListForProject(ctx context.Context, projectID string) ([]ports.ProjectReaction, error) {
	return s.forProject, s.listErr
}

func (s *stubReactionService) ListForUser(ctx context.Context, userID string) ([]ports.UserReaction, error) {
	return s.forUser, s.listErr
}

type stubProjectService struct {
	projects map[string]*domain.Project
	lastList domain.ProjectFilter
	created  []*domain.Project
	deleted  []string
	writeErr error
}

func newStubProjectService(projects ...*domain.Project) *stubProjectService {
	s := &stubProjectService{projects: map[string]*domain.Project{}}
	for _, p := range projects {
		s.projects[p.ID] = p
	}
	return s
}

func (s *stubProjectService) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	p.ID = "new"
	s.created = append(s.created, p)
	return p, nil
}

func (s *stubProjectService) CreateMany(ctx context.Context, projects []*domain.Project) ([]*domain.Project, error) {
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	s.created = append(s.created, projects...)
	return projects, nil
}

func (s *stubProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return p, nil
}

func (s *stubProjectService) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	s.lastList = filter
	out := make([]*domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubProjectService) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	patch.Apply(p)
	return p, nil
}

func (s *stubProjectService) Delete(ctx context.Context, id string) error {
	if _, ok := s.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(s.projects, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubProjectService) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := s.projects[id]; ok {
			delete(s.projects, id)
			n++
		}
	}
	s.deleted = append(s.deleted, ids...)
	return n, nil
}

type stubAnalyticsService struct {
	snapshot    *domain.AnalyticsSnapshot
	contractors []domain.ContractorRollup
	lastFilter  domain.ProjectFilter
	lastOpts    domain.AnalyticsOptions
	lastSort    domain.ContractorSort
	lastLimit   int
}

func (s *stubAnalyticsService) Snapshot(ctx context.Context, filter domain.ProjectFilter, opts domain.AnalyticsOptions) (*domain.AnalyticsSnapshot, error) {
	s.lastFilter, s.lastOpts = filter, opts
	return s.snapshot, nil
}

func (s *stubAnalyticsService) ContractorLeaderboard(ctx context.Context, filter domain.ProjectFilter, opts domain.AnalyticsOptions, by domain.ContractorSort, limit int) ([]domain.ContractorRollup, error) {
	s.lastFilter, s.lastOpts, s.lastSort, s.lastLimit = filter, opts, by, limit
	if by != "" && !by.Valid() {
		return nil, domain.ErrInvalidSort
	}
	return s.contractors, nil
}

func (s *stubAnalyticsService) ProjectLeaderboard(ctx context.Context, filter domain.ProjectFilter, limit int) ([]domain.ProjectRollup, error) {
	s.lastFilter, s.lastLimit = filter, limit
	return nil, nil
}

func (s *stubAnalyticsService) UserLeaderboard(ctx context.Context, limit int) ([]domain.UserRollup, error) {
	s.lastLimit = limit
	return []domain.UserRollup{}, nil
}

type stubUserService struct {
	users    map[string]*domain.User
	location *domain.UserLocation
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserService) UpdateProfile(ctx context.Context, id string, username, displayName *string) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if username != nil {
		if *username == "taken" {
			return nil, domain.ErrUsernameTaken
		}
		u.Username = *username
	}
	if displayName != nil {
		u.DisplayName = *displayName
	}
	return u, nil
}

func (s *stubUserService) UpdateLocation(ctx context.Context, id string, loc ports.LocationInput) (*domain.UserLocation, error) {
	s.location = &domain.UserLocation{UserID: id, Point: domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, Address: loc.Address}
	return s.location, nil
}

type stubProviderSettings struct {
	enabled []string
}

func (s *stubProviderSettings) Enabled(ctx context.Context) ([]string, error) {
	return s.enabled, nil
}

func (s *stubProviderSettings) IsEnabled(ctx context.Context, provider string) (bool, error) {
	for _, p := range s.enabled {
		if p == provider {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubProviderSettings) SetEnabled(ctx context.Context, providers []string) ([]string, error) {
	s.enabled = providers
	return providers, nil
}

type stubIdentityProvider struct {
	name     string
	ident    *ports.ExternalIdentity
	err      error
	lastCode string
}

func (p *stubIdentityProvider) Name() string { return p.name }

func (p *stubIdentityProvider) AuthCodeURL(state string) string {
	return "https://idp.example/authorize?state=" + state
}

func (p *stubIdentityProvider) Exchange(ctx context.Context, code string) (*ports.ExternalIdentity, error) {
	p.lastCode = code
	return p.ident, p.err
}
