package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/projectwatch/dashboard-api/internal/api/metrics"
	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
	"github.com/projectwatch/dashboard-api/internal/core/service"
)

// AnalyticsHandler serves the dashboard aggregates and leaderboards.
type AnalyticsHandler struct {
	service ports.AnalyticsService
}

func NewAnalyticsHandler(service ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Snapshot handles GET /v1/analytics.
//
// Accepts the project list filters plus drillRegion (adds the by-location
// breakdown for that region) and useFullCostForJointVentures.
//
// @Summary      Dashboard analytics
// @Tags         analytics
// @Produce      json
// @Param        drillRegion                  query     string  false  "Region to break down by location"
// @Param        useFullCostForJointVentures  query     bool    false  "Credit each JV partner with the full cost"
// @Success      200                          {object}  domain.AnalyticsSnapshot
// @Failure      400                          {object}  errorResponse
// @Router       /v1/analytics [get]
func (h *AnalyticsHandler) Snapshot(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.AnalyticsComputeDuration.WithLabelValues("snapshot"))
	defer timer.ObserveDuration()

	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	opts, err := parseAnalyticsOptions(c)
	if err != nil {
		return err
	}

	snap, err := h.service.Snapshot(c.Request().Context(), filter, opts)
	if err != nil {
		return err
	}

	// Fiscal years read naturally in ascending order.
	years := make([]domain.GroupStat, len(snap.ProjectsByFiscalYear))
	copy(years, snap.ProjectsByFiscalYear)
	service.SortGroupsByKey(years)
	snap.ProjectsByFiscalYear = years

	return c.JSON(http.StatusOK, snap)
}

// Contractors handles GET /v1/leaderboard/contractors.
//
// @Summary      Contractor leaderboard
// @Tags         leaderboard
// @Produce      json
// @Param        sort   query     string  false  "best_score, total_ratings, ghost_count, controversy or latest"
// @Param        limit  query     int     false  "Rows to return (default 20, max 100)"
// @Success      200    {array}   domain.ContractorRollup
// @Failure      400    {object}  errorResponse
// @Router       /v1/leaderboard/contractors [get]
func (h *AnalyticsHandler) Contractors(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.AnalyticsComputeDuration.WithLabelValues("contractors"))
	defer timer.ObserveDuration()

	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	opts, err := parseAnalyticsOptions(c)
	if err != nil {
		return err
	}
	limit, err := parseLimit(c)
	if err != nil {
		return err
	}

	rows, err := h.service.ContractorLeaderboard(c.Request().Context(), filter, opts, domain.ContractorSort(c.QueryParam("sort")), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

// Projects handles GET /v1/leaderboard/projects.
//
// @Summary      Project leaderboard
// @Tags         leaderboard
// @Produce      json
// @Param        limit  query    int  false  "Rows to return (default 20, max 100)"
// @Success      200    {array}  domain.ProjectRollup
// @Router       /v1/leaderboard/projects [get]
func (h *AnalyticsHandler) Projects(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.AnalyticsComputeDuration.WithLabelValues("projects"))
	defer timer.ObserveDuration()

	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	limit, err := parseLimit(c)
	if err != nil {
		return err
	}

	rows, err := h.service.ProjectLeaderboard(c.Request().Context(), filter, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

// Users handles GET /v1/leaderboard/users.
//
// @Summary      Most active raters
// @Tags         leaderboard
// @Produce      json
// @Param        limit  query    int  false  "Rows to return (default 20, max 100)"
// @Success      200    {array}  domain.UserRollup
// @Router       /v1/leaderboard/users [get]
func (h *AnalyticsHandler) Users(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.AnalyticsComputeDuration.WithLabelValues("users"))
	defer timer.ObserveDuration()

	limit, err := parseLimit(c)
	if err != nil {
		return err
	}
	rows, err := h.service.UserLeaderboard(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}
