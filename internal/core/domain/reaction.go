package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Rating is the ordinal category a user assigns to a project, best to worst.
type Rating string

const (
	RatingExcellent   Rating = "excellent"
	RatingStandard    Rating = "standard"
	RatingSubStandard Rating = "sub-standard"
	RatingGhost       Rating = "ghost"
)

// Ratings lists every rating category, best first.
var Ratings = []Rating{RatingExcellent, RatingStandard, RatingSubStandard, RatingGhost}

// ProximityRadiusMeters is the maximum distance between a submitter and a
// project for a rating to count as proximity verified.
const ProximityRadiusMeters = 500.0

const MaxCommentLength = 1000

var ErrInvalidRating = errors.New("invalid rating")
var ErrInvalidReaction = errors.New("invalid reaction")
var ErrReactionNotFound = errors.New("reaction not found")
var ErrProximityFailed = errors.New("proximity verification failed")

// Valid reports whether r is one of the four rating categories.
func (r Rating) Valid() bool {
	switch r {
	case RatingExcellent, RatingStandard, RatingSubStandard, RatingGhost:
		return true
	}
	return false
}

// Score maps a rating onto the 4..1 ordinal scale used by every aggregate.
// Unknown ratings score 0.
func (r Rating) Score() float64 {
	switch r {
	case RatingExcellent:
		return 4
	case RatingStandard:
		return 3
	case RatingSubStandard:
		return 2
	case RatingGhost:
		return 1
	}
	return 0
}

// Reaction is a user's rating of a project. At most one exists per (UserID, ProjectID).
type Reaction struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	ProjectID         string    `json:"project_id"`
	Rating            Rating    `json:"rating"`
	Comment           string    `json:"comment,omitempty"`
	ProximityVerified bool      `json:"is_proximity_verified"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ProximityOutcome is the result of evaluating a rating submission against the
// proximity rule.
type ProximityOutcome struct {
	// Verified is persisted on the reaction.
	Verified bool
	// Rejected means the submission must not be stored.
	Rejected bool
	// LocationCaptured is true when the submitter sent a location.
	LocationCaptured bool
	// AdminBypass is true when the submitter holds the unrestricted rating capability.
	AdminBypass bool
	// Determinable is false when no distance could be computed.
	Determinable bool
	// DistanceMeters is only meaningful when Determinable is true.
	DistanceMeters  float64
	RequiredMeters  float64
	UserLocation    *Coordinates
	ProjectLocation Coordinates
}

// Err returns the rejection error for a rejected outcome, nil otherwise.
func (o ProximityOutcome) Err() error {
	if !o.Rejected {
		return nil
	}
	pe := &ProximityError{
		Distance:        math.Round(o.DistanceMeters),
		Required:        o.RequiredMeters,
		ProjectLocation: o.ProjectLocation,
	}
	if o.UserLocation != nil {
		pe.UserLocation = *o.UserLocation
	}
	return pe
}

// ProximityError explains why a rating was rejected as too far from the project.
type ProximityError struct {
	Distance        float64
	Required        float64
	UserLocation    Coordinates
	ProjectLocation Coordinates
}

func (e *ProximityError) Error() string {
	return fmt.Sprintf("%v: %.0fm from project, must be within %.0fm", ErrProximityFailed, e.Distance, e.Required)
}

func (e *ProximityError) Unwrap() error { return ErrProximityFailed }
