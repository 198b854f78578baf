package service

import (
	"sort"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

// ComputeAnalytics folds the project set and the reactions on it into an
// AnalyticsSnapshot. Reactions on projects outside the set are ignored. Group
// and rollup slices keep the order in which keys are first seen in projects.
func ComputeAnalytics(projects []*domain.Project, reactions []*domain.Reaction, opts domain.AnalyticsOptions) domain.AnalyticsSnapshot {
	byProject := make(map[string][]*domain.Reaction, len(projects))
	inSet := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		inSet[p.ID] = struct{}{}
	}
	for _, r := range reactions {
		if _, ok := inSet[r.ProjectID]; ok {
			byProject[r.ProjectID] = append(byProject[r.ProjectID], r)
		}
	}

	regions := newGrouper(domain.DimensionRegion)
	locations := newGrouper(domain.DimensionLocation)
	contractors := newGrouper(domain.DimensionContractor)
	fiscalYears := newGrouper(domain.DimensionFiscalYear)
	contractorRollups := newContractorIndex()

	snap := domain.AnalyticsSnapshot{
		Projects: make([]domain.ProjectRollup, 0, len(projects)),
	}

	for _, p := range projects {
		// An unreadable cost still counts the project but adds nothing to sums.
		cost, _ := p.KnownCost()
		snap.TotalProjects++
		snap.TotalCost += cost

		regions.add(p.Region, cost)
		fiscalYears.add(p.FiscalYear, cost)
		if opts.DrillRegion != "" && p.Region == opts.DrillRegion {
			locations.add(p.Location, cost)
		}

		rollup := rollupProject(p, byProject[p.ID])
		snap.Projects = append(snap.Projects, rollup)

		names := p.Contractors()
		share := cost
		if !opts.UseFullCostForJointVentures && len(names) > 0 {
			share = cost / float64(len(names))
		}
		for _, name := range names {
			contractors.add(name, share)
			contractorRollups.add(name, share, rollup)
		}
	}

	if snap.TotalProjects > 0 {
		snap.AvgCost = snap.TotalCost / float64(snap.TotalProjects)
	}
	snap.ActiveRegions = len(regions.stats)
	snap.ProjectsByRegion = regions.stats
	if opts.DrillRegion != "" {
		snap.ProjectsByLocation = locations.stats
	}
	snap.ProjectsByContractor = contractors.stats
	snap.ProjectsByFiscalYear = fiscalYears.stats
	snap.Contractors = contractorRollups.rows
	return snap
}

func rollupProject(p *domain.Project, reactions []*domain.Reaction) domain.ProjectRollup {
	out := domain.ProjectRollup{
		ProjectID:     p.ID,
		Name:          p.Name,
		Contractor:    p.Contractor,
		Region:        p.Region,
		ReactionCount: len(reactions),
		RatingCounts:  make(map[domain.Rating]int, len(domain.Ratings)),
	}
	if cost, ok := p.KnownCost(); ok {
		out.Cost = &cost
	}
	if len(reactions) == 0 {
		return out
	}

	scores := make([]float64, 0, len(reactions))
	for _, r := range reactions {
		scores = append(scores, r.Rating.Score())
		out.RatingCounts[r.Rating]++
		if r.Rating == domain.RatingGhost {
			out.GhostCount++
		}
		if ts := r.UpdatedAt.UnixMilli(); ts > out.LatestRating {
			out.LatestRating = ts
		}
	}
	out.AverageReactionScore = mean(scores)
	out.ReactionScore = out.AverageReactionScore * float64(out.ReactionCount)
	out.Variance = variance(scores)
	return out
}

// variance is the population variance of xs, 0 below two samples.
func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// grouper accumulates GroupStats for one dimension in first-seen key order.
type grouper struct {
	dim   domain.Dimension
	index map[string]int
	stats []domain.GroupStat
}

func newGrouper(dim domain.Dimension) *grouper {
	return &grouper{dim: dim, index: make(map[string]int), stats: []domain.GroupStat{}}
}

func (g *grouper) add(key string, cost float64) {
	i, ok := g.index[key]
	if !ok {
		i = len(g.stats)
		g.index[key] = i
		g.stats = append(g.stats, domain.GroupStat{Dimension: g.dim, Key: key})
	}
	g.stats[i].Count++
	g.stats[i].TotalCost += cost
}

type contractorIndex struct {
	index map[string]int
	rows  []domain.ContractorRollup
}

func newContractorIndex() *contractorIndex {
	return &contractorIndex{index: make(map[string]int), rows: []domain.ContractorRollup{}}
}

func (c *contractorIndex) add(name string, cost float64, p domain.ProjectRollup) {
	i, ok := c.index[name]
	if !ok {
		i = len(c.rows)
		c.index[name] = i
		c.rows = append(c.rows, domain.ContractorRollup{Name: name})
	}
	row := &c.rows[i]
	row.ProjectCount++
	row.TotalCost += cost
	if p.AverageReactionScore > row.BestScore {
		row.BestScore = p.AverageReactionScore
	}
	row.TotalRatings += p.ReactionCount
	row.GhostCount += p.GhostCount
	if p.LatestRating > row.LatestRating {
		row.LatestRating = p.LatestRating
	}
	row.ControversyScore += p.Variance
}

// SortContractors orders rows in place, descending by the chosen key with ties
// broken by name.
func SortContractors(rows []domain.ContractorRollup, by domain.ContractorSort) {
	key := func(r domain.ContractorRollup) float64 {
		switch by {
		case domain.SortTotalRatings:
			return float64(r.TotalRatings)
		case domain.SortGhostCount:
			return float64(r.GhostCount)
		case domain.SortControversy:
			return r.ControversyScore
		case domain.SortLatest:
			return float64(r.LatestRating)
		default:
			return r.BestScore
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ki, kj := key(rows[i]), key(rows[j])
		if ki != kj {
			return ki > kj
		}
		return rows[i].Name < rows[j].Name
	})
}

// SortProjectRollups orders rows by reaction score, then reaction count, then name.
func SortProjectRollups(rows []domain.ProjectRollup) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ReactionScore != rows[j].ReactionScore {
			return rows[i].ReactionScore > rows[j].ReactionScore
		}
		if rows[i].ReactionCount != rows[j].ReactionCount {
			return rows[i].ReactionCount > rows[j].ReactionCount
		}
		return rows[i].Name < rows[j].Name
	})
}

// SortGroupsByKey orders groups lexicographically ascending by key.
func SortGroupsByKey(groups []domain.GroupStat) {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
}

func sortSlice[T any](rows []T, less func(a, b T) bool) {
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}
