package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

const (
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
)

// Cache lookup results passed to a CacheObserver.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// CacheObserver is told the result of every analytics cache lookup.
type CacheObserver func(result string)

type analyticsService struct {
	projects  ports.ProjectRepository
	reactions ports.ReactionRepository
	users     ports.UserRepository
	cache     ports.AnalyticsCache
	observe   CacheObserver
	log       zerolog.Logger
	now       func() time.Time
}

// AnalyticsOption customises NewAnalyticsService.
type AnalyticsOption func(*analyticsService)

// WithCacheObserver reports cache lookup results to fn.
func WithCacheObserver(fn CacheObserver) AnalyticsOption {
	return func(s *analyticsService) {
		if fn != nil {
			s.observe = fn
		}
	}
}

// NewAnalyticsService returns an AnalyticsService. cache may be nil, in which
// case every read is computed from the store.
func NewAnalyticsService(
	projects ports.ProjectRepository,
	reactions ports.ReactionRepository,
	users ports.UserRepository,
	cache ports.AnalyticsCache,
	log zerolog.Logger,
	opts ...AnalyticsOption,
) ports.AnalyticsService {
	s := &analyticsService{
		projects:  projects,
		reactions: reactions,
		users:     users,
		cache:     cache,
		observe:   func(string) {},
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// cacheLookup remembers the version a lookup ran at. A value computed after a
// miss is stored at that version.
type cacheLookup struct {
	version  int64
	hit      bool
	writable bool
}

// Snapshot computes analytics over the filtered project set.
func (s *analyticsService) Snapshot(ctx context.Context, filter domain.ProjectFilter, opts domain.AnalyticsOptions) (*domain.AnalyticsSnapshot, error) {
	key := snapshotKey(filter, opts, s.now())

	var cached domain.AnalyticsSnapshot
	lookup := s.cacheGet(ctx, key, &cached)
	if lookup.hit {
		return &cached, nil
	}

	projects, err := s.projects.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("analytics: list projects: %w", err)
	}
	projects = filter.Apply(projects, s.now())

	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
		if _, ok := p.KnownCost(); !ok {
			s.log.Warn().Str("project_id", p.ID).Msg("project has malformed cost, excluded from cost totals")
		}
	}
	reactions, err := s.reactions.ListByProjects(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("analytics: list reactions: %w", err)
	}

	snap := ComputeAnalytics(projects, reactions, opts)
	s.cacheSet(ctx, lookup, key, snap)
	return &snap, nil
}

// ContractorLeaderboard ranks contractors over the filtered project set.
func (s *analyticsService) ContractorLeaderboard(ctx context.Context, filter domain.ProjectFilter, opts domain.AnalyticsOptions, by domain.ContractorSort, limit int) ([]domain.ContractorRollup, error) {
	if by == "" {
		by = domain.SortBestScore
	}
	if !by.Valid() {
		return nil, domain.ErrInvalidSort
	}
	snap, err := s.Snapshot(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.ContractorRollup, len(snap.Contractors))
	copy(rows, snap.Contractors)
	SortContractors(rows, by)
	return truncate(rows, limit), nil
}

// ProjectLeaderboard ranks rated projects by reaction score.
func (s *analyticsService) ProjectLeaderboard(ctx context.Context, filter domain.ProjectFilter, limit int) ([]domain.ProjectRollup, error) {
	snap, err := s.Snapshot(ctx, filter, domain.AnalyticsOptions{})
	if err != nil {
		return nil, err
	}
	rows := make([]domain.ProjectRollup, 0, len(snap.Projects))
	for _, p := range snap.Projects {
		if p.ReactionCount > 0 {
			rows = append(rows, p)
		}
	}
	SortProjectRollups(rows)
	return truncate(rows, limit), nil
}

// UserLeaderboard ranks users by how many projects they have rated.
func (s *analyticsService) UserLeaderboard(ctx context.Context, limit int) ([]domain.UserRollup, error) {
	key := "users:" + strconv.Itoa(limit)
	var cached []domain.UserRollup
	lookup := s.cacheGet(ctx, key, &cached)
	if lookup.hit {
		return cached, nil
	}

	reactions, err := s.reactions.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("user leaderboard: %w", err)
	}

	index := make(map[string]int)
	rows := []domain.UserRollup{}
	for _, r := range reactions {
		i, ok := index[r.UserID]
		if !ok {
			i = len(rows)
			index[r.UserID] = i
			rows = append(rows, domain.UserRollup{User: domain.PublicUser{ID: r.UserID}})
		}
		rows[i].ReactionCount++
		if r.ProximityVerified {
			rows[i].VerifiedCount++
		}
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.User.ID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("user leaderboard: load users: %w", err)
	}
	for i := range rows {
		if u, ok := users[rows[i].User.ID]; ok {
			rows[i].User = u.Public()
		}
	}

	sortUserRollups(rows)
	rows = truncate(rows, limit)
	s.cacheSet(ctx, lookup, key, rows)
	return rows, nil
}

func (s *analyticsService) cacheGet(ctx context.Context, key string, dst any) cacheLookup {
	if s.cache == nil {
		return cacheLookup{}
	}
	version, found, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.observe(CacheError)
		s.log.Warn().Err(err).Str("key", key).Msg("analytics cache read failed")
		return cacheLookup{}
	}
	if found {
		s.observe(CacheHit)
	} else {
		s.observe(CacheMiss)
	}
	return cacheLookup{version: version, hit: found, writable: true}
}

func (s *analyticsService) cacheSet(ctx context.Context, lookup cacheLookup, key string, value any) {
	if s.cache == nil || !lookup.writable {
		return
	}
	if err := s.cache.Set(ctx, lookup.version, key, value); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("analytics cache write failed")
	}
}

// snapshotKey encodes every filter criterion and option so that distinct
// requests never share an entry.
func snapshotKey(f domain.ProjectFilter, opts domain.AnalyticsOptions, now time.Time) string {
	parts := []string{
		"snapshot",
		"q=" + f.Search,
		"min=" + floatPtr(f.MinCost),
		"max=" + floatPtr(f.MaxCost),
		"region=" + f.Region,
		"contractor=" + f.Contractor,
		"fy=" + f.FiscalYear,
		"loc=" + f.Location,
		"status=" + f.Status,
		"range=" + f.DateRange,
		"from=" + timePtr(f.DateFrom),
		"to=" + timePtr(f.DateTo),
		"drill=" + opts.DrillRegion,
		"jv=" + strconv.FormatBool(opts.UseFullCostForJointVentures),
	}
	if f.DateRange == domain.DateRange12Months || f.DateRange == domain.DateRange24Months {
		parts = append(parts, "day="+now.UTC().Format("2006-01-02"))
	}
	return strings.Join(parts, "|")
}

func floatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func timePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func sortUserRollups(rows []domain.UserRollup) {
	sortSlice(rows, func(a, b domain.UserRollup) bool {
		if a.ReactionCount != b.ReactionCount {
			return a.ReactionCount > b.ReactionCount
		}
		if a.VerifiedCount != b.VerifiedCount {
			return a.VerifiedCount > b.VerifiedCount
		}
		return a.User.Name < b.User.Name
	})
}

func truncate[T any](rows []T, limit int) []T {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
