package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/projectwatch/dashboard-api/pkg/geo"
)

var ErrForbidden = errors.New("access forbidden")
var ErrInvalidLocation = errors.New("invalid location")

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every field that failed validation. It unwraps to the
// sentinel describing what was being validated (e.g. ErrInvalidProject).
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return fmt.Sprintf("%v: %s", e.Err, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidCoordinates reports whether c is a finite point inside the WGS84 ranges.
func ValidCoordinates(c Coordinates) bool {
	return geo.Valid(geo.Point{Lat: c.Lat, Lng: c.Lng})
}

func isNotFinite(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
