package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projectwatch/dashboard-api/internal/api/metrics"
	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

// ProjectHandler serves the project catalog.
type ProjectHandler struct {
	service ports.ProjectService
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// List handles GET /v1/projects.
//
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Param        search      query     string  false  "Case-insensitive text search"
// @Param        minCost     query     number  false  "Minimum cost (inclusive)"
// @Param        maxCost     query     number  false  "Maximum cost (inclusive)"
// @Param        region      query     string  false  "Region"
// @Param        contractor  query     string  false  "Contractor"
// @Param        fiscalYear  query     string  false  "Fiscal year"
// @Param        location    query     string  false  "Location (substring)"
// @Param        status      query     string  false  "Status"
// @Param        dateRange   query     string  false  "12months, 24months or alltime"
// @Param        dateFrom    query     string  false  "YYYY-MM-DD"
// @Param        dateTo      query     string  false  "YYYY-MM-DD"
// @Success      200         {object}  projectListResponse
// @Failure      400         {object}  errorResponse
// @Router       /v1/projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	projects, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if projects == nil {
		projects = []*domain.Project{}
	}
	return c.JSON(http.StatusOK, projectListResponse{Projects: projects, Total: len(projects)})
}

// Get handles GET /v1/projects/:id.
//
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  domain.Project
// @Failure      404  {object}  errorResponse
// @Router       /v1/projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create handles POST /v1/projects.
//
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      projectRequest  true  "Project"
// @Success      201   {object}  domain.Project
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	var req projectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.service.Create(c.Request().Context(), req.toDomain())
	if err != nil {
		return err
	}
	metrics.ProjectsWrittenTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, p)
}

// CreateBulk handles POST /v1/projects/bulk. Either every project is stored or none.
//
// @Summary      Create many projects
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkProjectRequest  true  "Projects"
// @Success      201   {object}  bulkCreateResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/projects/bulk [post]
func (h *ProjectHandler) CreateBulk(c echo.Context) error {
	var req bulkProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in := make([]*domain.Project, len(req.Projects))
	for i, r := range req.Projects {
		in[i] = r.toDomain()
	}
	created, err := h.service.CreateMany(c.Request().Context(), in)
	if err != nil {
		return err
	}
	metrics.ProjectsWrittenTotal.WithLabelValues("create").Add(float64(len(created)))
	return c.JSON(http.StatusCreated, bulkCreateResponse{Projects: created, Created: len(created)})
}

// Update handles PATCH /v1/projects/:id.
//
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Project ID"
// @Param        body  body      projectPatchRequest  true  "Fields to change"
// @Success      200   {object}  domain.Project
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/projects/{id} [patch]
func (h *ProjectHandler) Update(c echo.Context) error {
	var req projectPatchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toDomain())
	if err != nil {
		return err
	}
	metrics.ProjectsWrittenTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/projects/:id. Reactions on the project are removed too.
//
// @Summary      Delete a project
// @Tags         projects
// @Security     BearerAuth
// @Param        id   path  string  true  "Project ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.ProjectsWrittenTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

// DeleteBulk handles POST /v1/projects/bulk-delete.
//
// @Summary      Delete many projects
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkDeleteRequest  true  "Project IDs"
// @Success      200   {object}  bulkDeleteResponse
// @Router       /v1/projects/bulk-delete [post]
func (h *ProjectHandler) DeleteBulk(c echo.Context) error {
	var req bulkDeleteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	n, err := h.service.DeleteMany(c.Request().Context(), req.IDs)
	if err != nil {
		return err
	}
	metrics.ProjectsWrittenTotal.WithLabelValues("delete").Add(float64(n))
	return c.JSON(http.StatusOK, bulkDeleteResponse{Deleted: n})
}
