package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories shared by the service tests.
// ---------------------------------------------------------------------------

type stubProjectRepo struct {
	byID      map[string]*domain.Project
	order     []string
	createErr error
	listErr   error
}

func newStubProjectRepo(projects ...*domain.Project) *stubProjectRepo {
	r := &stubProjectRepo{byID: make(map[string]*domain.Project)}
	for _, p := range projects {
		r.put(p)
	}
	return r
}

func (r *stubProjectRepo) put(p *domain.Project) {
	if _, ok := r.byID[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	clone := *p
	r.byID[p.ID] = &clone
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.put(p)
	return nil
}

func (r *stubProjectRepo) CreateMany(ctx context.Context, projects []*domain.Project) error {
	for _, p := range projects {
		if err := r.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProjectRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.Project, error) {
	out := make(map[string]*domain.Project)
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			clone := *p
			out[id] = &clone
		}
	}
	return out, nil
}

// List ignores the filter; services apply it themselves.
func (r *stubProjectRepo) List(_ context.Context, _ domain.ProjectFilter) ([]*domain.Project, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*domain.Project, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.byID[id]; ok {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubProjectRepo) Update(_ context.Context, p *domain.Project) error {
	if _, ok := r.byID[p.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	r.put(p)
	return nil
}

func (r *stubProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubProjectRepo) DeleteMany(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := r.byID[id]; ok {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

// stubReactionRepo mirrors the unique (user, project) index of the real ledger.
type stubReactionRepo struct {
	byKey     map[string]*domain.Reaction
	seq       int
	upsertErr error
	// onList runs after ListByProjects has read.
	onList func()
}

func newStubReactionRepo() *stubReactionRepo {
	return &stubReactionRepo{byKey: make(map[string]*domain.Reaction)}
}

func reactionKey(userID, projectID string) string { return userID + "|" + projectID }

func (r *stubReactionRepo) Upsert(_ context.Context, in *domain.Reaction) (*domain.Reaction, error) {
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	key := reactionKey(in.UserID, in.ProjectID)
	if existing, ok := r.byKey[key]; ok {
		existing.Rating = in.Rating
		existing.Comment = in.Comment
		existing.ProximityVerified = in.ProximityVerified
		existing.UpdatedAt = in.UpdatedAt
		clone := *existing
		return &clone, nil
	}
	r.seq++
	stored := *in
	stored.ID = fmt.Sprintf("r%03d", r.seq)
	r.byKey[key] = &stored
	clone := stored
	return &clone, nil
}

func (r *stubReactionRepo) Find(_ context.Context, userID, projectID string) (*domain.Reaction, error) {
	if rr, ok := r.byKey[reactionKey(userID, projectID)]; ok {
		clone := *rr
		return &clone, nil
	}
	return nil, domain.ErrReactionNotFound
}

func (r *stubReactionRepo) filter(keep func(*domain.Reaction) bool) []*domain.Reaction {
	out := []*domain.Reaction{}
	for _, rr := range r.byKey {
		if keep(rr) {
			clone := *rr
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubReactionRepo) ListByProject(_ context.Context, projectID string) ([]*domain.Reaction, error) {
	return r.filter(func(rr *domain.Reaction) bool { return rr.ProjectID == projectID }), nil
}

func (r *stubReactionRepo) ListByUser(_ context.Context, userID string) ([]*domain.Reaction, error) {
	out := r.filter(func(rr *domain.Reaction) bool { return rr.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubReactionRepo) ListByProjects(_ context.Context, ids []string) ([]*domain.Reaction, error) {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	out := r.filter(func(rr *domain.Reaction) bool { return set[rr.ProjectID] })
	if r.onList != nil {
		r.onList()
	}
	return out, nil
}

func (r *stubReactionRepo) ListAll(_ context.Context) ([]*domain.Reaction, error) {
	return r.filter(func(*domain.Reaction) bool { return true }), nil
}

func (r *stubReactionRepo) Delete(_ context.Context, userID, projectID string) error {
	key := reactionKey(userID, projectID)
	if _, ok := r.byKey[key]; !ok {
		return domain.ErrReactionNotFound
	}
	delete(r.byKey, key)
	return nil
}

func (r *stubReactionRepo) DeleteByProjects(_ context.Context, ids []string) (int64, error) {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	var n int64
	for key, rr := range r.byKey {
		if set[rr.ProjectID] {
			delete(r.byKey, key)
			n++
		}
	}
	return n, nil
}

type stubUserRepo struct {
	byID     map[string]*domain.User
	verified map[string]time.Time
	markErr  error
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User), verified: make(map[string]time.Time)}
	for _, u := range users {
		clone := *u
		r.byID[u.ID] = &clone
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.byID {
		if existing.Email == u.Email || (existing.Provider == u.Provider && existing.ProviderID == u.ProviderID) {
			return nil, domain.ErrUserExists
		}
	}
	r.byID[u.ID] = cloneUser(u)
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User)
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByProvider(_ context.Context, provider, providerID string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Provider == provider && u.ProviderID == providerID {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, existing := range r.byID {
		if id != u.ID && u.Username != "" && existing.Username == u.Username {
			return domain.ErrUsernameTaken
		}
	}
	r.byID[u.ID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) MarkLocationVerified(_ context.Context, userID string, at time.Time) error {
	if r.markErr != nil {
		return r.markErr
	}
	r.verified[userID] = at
	if u, ok := r.byID[userID]; ok {
		u.LocationVerified = true
		u.LocationUpdatedAt = &at
	}
	return nil
}

type stubLocationRepo struct {
	byUser    map[string]*domain.UserLocation
	upsertErr error
	writes    int
}

func newStubLocationRepo() *stubLocationRepo {
	return &stubLocationRepo{byUser: make(map[string]*domain.UserLocation)}
}

func (r *stubLocationRepo) Upsert(_ context.Context, loc *domain.UserLocation) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.writes++
	clone := *loc
	r.byUser[loc.UserID] = &clone
	return nil
}

func (r *stubLocationRepo) Find(_ context.Context, userID string) (*domain.UserLocation, error) {
	if l, ok := r.byUser[userID]; ok {
		clone := *l
		return &clone, nil
	}
	return nil, domain.ErrUserNotFound
}

// stubCache stores JSON like the Redis cache so decoding paths are exercised.
// Entries written at an old version are kept but never served.
type stubCache struct {
	entries       map[string]stubCacheEntry
	version       int64
	invalidations int
	getErr        error
}

type stubCacheEntry struct {
	version int64
	raw     []byte
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]stubCacheEntry)}
}

func (c *stubCache) Get(_ context.Context, key string, dst any) (int64, bool, error) {
	if c.getErr != nil {
		return 0, false, c.getErr
	}
	e, ok := c.entries[key]
	if !ok || e.version != c.version {
		return c.version, false, nil
	}
	return c.version, true, json.Unmarshal(e.raw, dst)
}

func (c *stubCache) Set(_ context.Context, version int64, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = stubCacheEntry{version: version, raw: raw}
	return nil
}

func (c *stubCache) Invalidate(_ context.Context) error {
	c.invalidations++
	c.version++
	return nil
}

type stubSettingRepo struct {
	values map[string][]string
}

func (r *stubSettingRepo) GetStrings(_ context.Context, key string) ([]string, bool, error) {
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *stubSettingRepo) SetStrings(_ context.Context, key string, values []string) error {
	if r.values == nil {
		r.values = make(map[string][]string)
	}
	r.values[key] = values
	return nil
}
