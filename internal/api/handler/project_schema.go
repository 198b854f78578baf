package handler

import (
	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

// --- Request / Response types ---

type projectRequest struct {
	Name           string   `json:"name"            validate:"required"`
	Location       string   `json:"location"        validate:"required"`
	Region         string   `json:"region"          validate:"required"`
	Latitude       *float64 `json:"latitude"        validate:"required"`
	Longitude      *float64 `json:"longitude"       validate:"required"`
	Contractor     string   `json:"contractor"      validate:"required"`
	Cost           *float64 `json:"cost"            validate:"required"`
	FiscalYear     string   `json:"fiscal_year"     validate:"required"`
	StartDate      string   `json:"start_date"`
	CompletionDate string   `json:"completion_date"`
	Status         string   `json:"status"`
	Notes          string   `json:"notes"`
}

func (r projectRequest) toDomain() *domain.Project {
	p := &domain.Project{
		Name:           r.Name,
		Location:       r.Location,
		Region:         r.Region,
		Contractor:     r.Contractor,
		FiscalYear:     r.FiscalYear,
		StartDate:      r.StartDate,
		CompletionDate: r.CompletionDate,
		Status:         r.Status,
		Notes:          r.Notes,
	}
	if r.Latitude != nil {
		p.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		p.Longitude = *r.Longitude
	}
	if r.Cost != nil {
		p.Cost = *r.Cost
	}
	return p
}

type bulkProjectRequest struct {
	Projects []projectRequest `json:"projects" validate:"required,min=1,dive"`
}

type projectPatchRequest struct {
	Name           *string  `json:"name"`
	Location       *string  `json:"location"`
	Region         *string  `json:"region"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Contractor     *string  `json:"contractor"`
	Cost           *float64 `json:"cost"`
	FiscalYear     *string  `json:"fiscal_year"`
	StartDate      *string  `json:"start_date"`
	CompletionDate *string  `json:"completion_date"`
	Status         *string  `json:"status"`
	Notes          *string  `json:"notes"`
}

func (r projectPatchRequest) toDomain() domain.ProjectPatch {
	return domain.ProjectPatch{
		Name:           r.Name,
		Location:       r.Location,
		Region:         r.Region,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Contractor:     r.Contractor,
		Cost:           r.Cost,
		FiscalYear:     r.FiscalYear,
		StartDate:      r.StartDate,
		CompletionDate: r.CompletionDate,
		Status:         r.Status,
		Notes:          r.Notes,
	}
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

type projectListResponse struct {
	Projects []*domain.Project `json:"projects"`
	Total    int               `json:"total"`
}

type bulkCreateResponse struct {
	Projects []*domain.Project `json:"projects"`
	Created  int               `json:"created"`
}

type bulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}
