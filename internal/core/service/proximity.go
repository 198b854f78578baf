package service

import (
	"github.com/rs/zerolog"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/pkg/geo"
)

// ProximityPolicy decides whether a rating submission is accepted based on how
// far the submitter is from the project.
type ProximityPolicy struct {
	radius float64
	log    zerolog.Logger
}

// NewProximityPolicy returns a policy enforcing domain.ProximityRadiusMeters.
func NewProximityPolicy(log zerolog.Logger) *ProximityPolicy {
	return &ProximityPolicy{radius: domain.ProximityRadiusMeters, log: log}
}

// Evaluate applies the proximity rule:
//   - unrestricted submitters are always verified;
//   - no location, or a project whose stored coordinates are unusable, is accepted unverified;
//   - otherwise the submission is verified within the radius and rejected beyond it.
func (p *ProximityPolicy) Evaluate(project *domain.Project, loc *domain.Coordinates, unrestricted bool) domain.ProximityOutcome {
	out := domain.ProximityOutcome{
		LocationCaptured: loc != nil,
		RequiredMeters:   p.radius,
		UserLocation:     loc,
		ProjectLocation:  project.Coordinates(),
	}

	if unrestricted {
		out.Verified = true
		out.AdminBypass = true
		if loc != nil {
			p.measure(project, *loc, &out)
		}
		return out
	}

	if loc == nil {
		return out
	}

	if !p.measure(project, *loc, &out) {
		return out
	}

	out.Verified = out.DistanceMeters <= p.radius
	out.Rejected = !out.Verified
	return out
}

// measure fills in the distance when both points are usable.
func (p *ProximityPolicy) measure(project *domain.Project, loc domain.Coordinates, out *domain.ProximityOutcome) bool {
	projectPoint := geo.Point{Lat: project.Latitude, Lng: project.Longitude}
	if !geo.Valid(projectPoint) {
		p.log.Warn().
			Str("project_id", project.ID).
			Float64("latitude", project.Latitude).
			Float64("longitude", project.Longitude).
			Msg("project has malformed coordinates, proximity cannot be determined")
		return false
	}
	out.DistanceMeters = geo.Distance(geo.Point{Lat: loc.Lat, Lng: loc.Lng}, projectPoint)
	out.Determinable = true
	return true
}
