package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const DefaultProjectStatus = "active"

var ErrProjectNotFound = errors.New("project not found")
var ErrInvalidProject = errors.New("invalid project")

// Coordinates represents a geographic point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Project is a catalogued infrastructure project. Latitude and Longitude are the
// project's fixed physical location; a stored value that could not be read as a
// number is decoded as NaN.
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	Region         string    `json:"region"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Contractor     string    `json:"contractor"`
	Cost           float64   `json:"cost"`
	FiscalYear     string    `json:"fiscal_year"`
	StartDate      string    `json:"start_date,omitempty"`
	CompletionDate string    `json:"completion_date,omitempty"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Coordinates returns the project's stored position.
func (p *Project) Coordinates() Coordinates {
	return Coordinates{Lat: p.Latitude, Lng: p.Longitude}
}

// KnownCost returns the project cost, or 0 and false when the stored value
// was not a finite number.
func (p *Project) KnownCost() (float64, bool) {
	if isNotFinite(p.Cost) {
		return 0, false
	}
	return p.Cost, true
}

// MarshalJSON writes unreadable coordinates and cost as null.
func (p Project) MarshalJSON() ([]byte, error) {
	type plain Project
	return json.Marshal(struct {
		plain
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Cost      *float64 `json:"cost"`
	}{plain(p), finiteOrNil(p.Latitude), finiteOrNil(p.Longitude), finiteOrNil(p.Cost)})
}

func finiteOrNil(f float64) *float64 {
	if isNotFinite(f) {
		return nil
	}
	return &f
}

// Contractors splits a joint-venture contractor string on "/" and returns the
// distinct trimmed names, dropping empty fragments. Order of first appearance is kept.
func (p *Project) Contractors() []string {
	return SplitContractors(p.Contractor)
}

// SplitContractors is the string form of Project.Contractors.
func SplitContractors(s string) []string {
	parts := strings.Split(s, "/")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Validate checks the business invariants of a project about to be stored.
// Every missing or malformed field is reported, not just the first.
func (p *Project) Validate() error {
	var fields []FieldError
	required := []struct {
		name, value string
	}{
		{"name", p.Name},
		{"location", p.Location},
		{"region", p.Region},
		{"contractor", p.Contractor},
		{"fiscal_year", p.FiscalYear},
		{"status", p.Status},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			fields = append(fields, FieldError{Field: r.name, Message: r.name + " is required"})
		}
	}
	if p.Region != "" && !IsRegion(p.Region) {
		fields = append(fields, FieldError{Field: "region", Message: "region is not a known administrative region"})
	}
	if !ValidCoordinates(p.Coordinates()) {
		fields = append(fields, FieldError{Field: "latitude/longitude", Message: "coordinates must be numeric and within range"})
	}
	if isNotFinite(p.Cost) || p.Cost < 0 {
		fields = append(fields, FieldError{Field: "cost", Message: "cost must be a non-negative number"})
	}
	if len(fields) > 0 {
		return &ValidationError{Err: ErrInvalidProject, Fields: fields}
	}
	return nil
}

// ProjectPatch carries a partial update. Nil fields are left untouched.
type ProjectPatch struct {
	Name           *string
	Location       *string
	Region         *string
	Latitude       *float64
	Longitude      *float64
	Contractor     *string
	Cost           *float64
	FiscalYear     *string
	StartDate      *string
	CompletionDate *string
	Status         *string
	Notes          *string
}

// Apply copies the set fields of the patch onto p.
func (patch ProjectPatch) Apply(p *Project) {
	setString(&p.Name, patch.Name)
	setString(&p.Location, patch.Location)
	setString(&p.Region, patch.Region)
	setString(&p.Contractor, patch.Contractor)
	setString(&p.FiscalYear, patch.FiscalYear)
	setString(&p.StartDate, patch.StartDate)
	setString(&p.CompletionDate, patch.CompletionDate)
	setString(&p.Status, patch.Status)
	setString(&p.Notes, patch.Notes)
	if patch.Latitude != nil {
		p.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		p.Longitude = *patch.Longitude
	}
	if patch.Cost != nil {
		p.Cost = *patch.Cost
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
