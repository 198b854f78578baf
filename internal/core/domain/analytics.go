package domain

import "errors"

// Dimension tags the field a GroupStat was grouped by.
type Dimension string

const (
	DimensionRegion     Dimension = "region"
	DimensionLocation   Dimension = "location"
	DimensionContractor Dimension = "contractor"
	DimensionFiscalYear Dimension = "fiscal_year"
)

// GroupStat is the rollup of every project sharing one value of a dimension.
type GroupStat struct {
	Dimension Dimension `json:"dimension"`
	Key       string    `json:"key"`
	Count     int       `json:"count"`
	TotalCost float64   `json:"total_cost"`
}

// ProjectRollup summarises the reactions on a single project. Cost is nil when
// the stored cost is unreadable.
type ProjectRollup struct {
	ProjectID            string         `json:"project_id"`
	Name                 string         `json:"name"`
	Contractor           string         `json:"contractor"`
	Region               string         `json:"region"`
	Cost                 *float64       `json:"cost"`
	ReactionCount        int            `json:"reaction_count"`
	AverageReactionScore float64        `json:"average_reaction_score"`
	ReactionScore        float64        `json:"reaction_score"`
	GhostCount           int            `json:"ghost_count"`
	RatingCounts         map[Rating]int `json:"rating_counts"`
	// Variance of the numeric rating values; 0 below two ratings.
	Variance     float64 `json:"variance"`
	LatestRating int64   `json:"latest_rating,omitempty"`
}

// ContractorRollup aggregates a contractor's projects and their reactions.
type ContractorRollup struct {
	Name             string  `json:"name"`
	ProjectCount     int     `json:"project_count"`
	TotalCost        float64 `json:"total_cost"`
	BestScore        float64 `json:"best_score"`
	TotalRatings     int     `json:"total_ratings"`
	GhostCount       int     `json:"ghost_count"`
	LatestRating     int64   `json:"latest_rating,omitempty"`
	ControversyScore float64 `json:"controversy_score"`
}

// AnalyticsOptions tune ComputeAnalytics.
type AnalyticsOptions struct {
	// DrillRegion scopes the by-location breakdown; the breakdown is omitted when empty.
	DrillRegion string
	// UseFullCostForJointVentures credits every joint-venture partner with the
	// full project cost instead of an even share.
	UseFullCostForJointVentures bool
}

// AnalyticsSnapshot is the full analytics view over a filtered project set.
type AnalyticsSnapshot struct {
	TotalProjects        int                `json:"total_projects"`
	TotalCost            float64            `json:"total_cost"`
	AvgCost              float64            `json:"avg_cost"`
	ActiveRegions        int                `json:"active_regions"`
	ProjectsByRegion     []GroupStat        `json:"projects_by_region"`
	ProjectsByLocation   []GroupStat        `json:"projects_by_location,omitempty"`
	ProjectsByContractor []GroupStat        `json:"projects_by_contractor"`
	ProjectsByFiscalYear []GroupStat        `json:"projects_by_fiscal_year"`
	Projects             []ProjectRollup    `json:"projects"`
	Contractors          []ContractorRollup `json:"contractors"`
}

// ContractorSort names an ordering of contractor rollups. Every ordering is descending.
type ContractorSort string

const (
	SortBestScore    ContractorSort = "best_score"
	SortTotalRatings ContractorSort = "total_ratings"
	SortGhostCount   ContractorSort = "ghost_count"
	SortControversy  ContractorSort = "controversy"
	SortLatest       ContractorSort = "latest"
)

var ErrInvalidSort = errors.New("invalid sort key")

// Valid reports whether s is a known contractor ordering.
func (s ContractorSort) Valid() bool {
	switch s {
	case SortBestScore, SortTotalRatings, SortGhostCount, SortControversy, SortLatest:
		return true
	}
	return false
}

// UserRollup is a row of the most-active-raters leaderboard.
type UserRollup struct {
	User          PublicUser `json:"user"`
	ReactionCount int        `json:"reaction_count"`
	VerifiedCount int        `json:"verified_count"`
}
