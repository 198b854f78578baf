package handler

import (
	"fmt"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error   string              `json:"error"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
	Details any                 `json:"details,omitempty"`
}

// proximityDetails describes the distance check behind a rating decision.
type proximityDetails struct {
	Distance        float64             `json:"distance"`
	Required        float64             `json:"required"`
	ActualDistance  string              `json:"actualDistance"`
	UserLocation    *domain.Coordinates `json:"userLocation,omitempty"`
	ProjectLocation domain.Coordinates  `json:"projectLocation"`
}

// ProximityRejection is the details payload of a 403 proximity rejection.
type ProximityRejection struct {
	Message         string             `json:"message"`
	Distance        float64            `json:"distance"`
	Required        float64            `json:"required"`
	ActualDistance  string             `json:"actualDistance"`
	TooFar          bool               `json:"tooFar"`
	UserLocation    domain.Coordinates `json:"userLocation"`
	ProjectLocation domain.Coordinates `json:"projectLocation"`
}

// NewProximityRejection renders a ProximityError for the client.
func NewProximityRejection(pe *domain.ProximityError) ProximityRejection {
	return ProximityRejection{
		Message: fmt.Sprintf("You must be within %.0fm of this project to rate it. You are currently %.0fm away.",
			pe.Required, pe.Distance),
		Distance:        pe.Distance,
		Required:        pe.Required,
		ActualDistance:  formatMeters(pe.Distance),
		TooFar:          true,
		UserLocation:    pe.UserLocation,
		ProjectLocation: pe.ProjectLocation,
	}
}

func formatMeters(m float64) string {
	return fmt.Sprintf("%.0fm", m)
}

func outcomeDetails(o domain.ProximityOutcome) *proximityDetails {
	if !o.Determinable {
		return nil
	}
	return &proximityDetails{
		Distance:        o.DistanceMeters,
		Required:        o.RequiredMeters,
		ActualDistance:  formatMeters(o.DistanceMeters),
		UserLocation:    o.UserLocation,
		ProjectLocation: o.ProjectLocation,
	}
}
