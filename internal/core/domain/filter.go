package domain

import (
	"strings"
	"time"
)

// Date range shorthands accepted by ProjectFilter.DateRange.
const (
	DateRange12Months = "12months"
	DateRange24Months = "24months"
	DateRangeAllTime  = "alltime"
)

// projectDateLayouts are the formats tried, in order, when reading the free-text
// start and completion dates of a project.
var projectDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"January 2006",
	"Jan 2006",
	"2006-01",
}

// ProjectFilter narrows the project catalog. Zero values disable a criterion.
type ProjectFilter struct {
	Search     string
	MinCost    *float64
	MaxCost    *float64
	Region     string
	Contractor string
	FiscalYear string
	Location   string
	Status     string
	DateRange  string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// DateBounds resolves DateRange or the explicit DateFrom/DateTo into an
// inclusive [from, to] window relative to now. A nil bound is open.
func (f ProjectFilter) DateBounds(now time.Time) (from, to *time.Time) {
	switch f.DateRange {
	case DateRange12Months:
		t := now.AddDate(-1, 0, 0)
		return &t, nil
	case DateRange24Months:
		t := now.AddDate(-2, 0, 0)
		return &t, nil
	case DateRangeAllTime:
		return nil, nil
	}
	return f.DateFrom, f.DateTo
}

// Match reports whether p satisfies every active criterion of f.
func (f ProjectFilter) Match(p *Project, now time.Time) bool {
	if f.Search != "" && !matchesSearch(p, f.Search) {
		return false
	}
	if f.MinCost != nil && p.Cost < *f.MinCost {
		return false
	}
	if f.MaxCost != nil && p.Cost > *f.MaxCost {
		return false
	}
	if f.Region != "" && p.Region != f.Region {
		return false
	}
	if f.Contractor != "" && p.Contractor != f.Contractor {
		return false
	}
	if f.FiscalYear != "" && p.FiscalYear != f.FiscalYear {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Location != "" && !containsFold(p.Location, f.Location) {
		return false
	}

	from, to := f.DateBounds(now)
	if from == nil && to == nil {
		return true
	}
	for _, raw := range []string{p.StartDate, p.CompletionDate} {
		d, ok := ParseProjectDate(raw)
		if !ok {
			continue
		}
		if from != nil && d.Before(*from) {
			continue
		}
		if to != nil && d.After(*to) {
			continue
		}
		return true
	}
	return false
}

// Apply returns the projects matching f, preserving order.
func (f ProjectFilter) Apply(projects []*Project, now time.Time) []*Project {
	out := make([]*Project, 0, len(projects))
	for _, p := range projects {
		if f.Match(p, now) {
			out = append(out, p)
		}
	}
	return out
}

// ParseProjectDate reads a free-text project date. ok is false when none of
// the known layouts match.
func ParseProjectDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range projectDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func matchesSearch(p *Project, q string) bool {
	for _, field := range []string{p.Name, p.Location, p.Contractor, p.Region, p.Notes} {
		if containsFold(field, q) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
