package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

const queryDateLayout = "2006-01-02"

// parseFilter reads the project filter query parameters:
//
//	search, minCost, maxCost, region, contractor, fiscalYear, location, status,
//	dateRange (12months|24months|alltime), dateFrom, dateTo (YYYY-MM-DD)
func parseFilter(c echo.Context) (domain.ProjectFilter, error) {
	var (
		f                domain.ProjectFilter
		minCost, maxCost float64
		from, to         time.Time
	)
	err := echo.QueryParamsBinder(c).
		String("search", &f.Search).
		Float64("minCost", &minCost).
		Float64("maxCost", &maxCost).
		String("region", &f.Region).
		String("contractor", &f.Contractor).
		String("fiscalYear", &f.FiscalYear).
		String("location", &f.Location).
		String("status", &f.Status).
		String("dateRange", &f.DateRange).
		Time("dateFrom", &from, queryDateLayout).
		Time("dateTo", &to, queryDateLayout).
		BindError()
	if err != nil {
		return f, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if c.QueryParam("minCost") != "" {
		f.MinCost = &minCost
	}
	if c.QueryParam("maxCost") != "" {
		f.MaxCost = &maxCost
	}
	if c.QueryParam("dateFrom") != "" {
		f.DateFrom = &from
	}
	if c.QueryParam("dateTo") != "" {
		// Inclusive of the whole day.
		end := to.Add(24*time.Hour - time.Nanosecond)
		f.DateTo = &end
	}

	switch f.DateRange {
	case "", domain.DateRange12Months, domain.DateRange24Months, domain.DateRangeAllTime:
	default:
		return f, &domain.ValidationError{
			Err:    errInvalidRequest,
			Fields: []domain.FieldError{{Field: "dateRange", Message: "dateRange must be one of: 12months 24months alltime"}},
		}
	}
	return f, nil
}

// parseAnalyticsOptions reads drillRegion and useFullCostForJointVentures.
func parseAnalyticsOptions(c echo.Context) (domain.AnalyticsOptions, error) {
	var opts domain.AnalyticsOptions
	err := echo.QueryParamsBinder(c).
		String("drillRegion", &opts.DrillRegion).
		Bool("useFullCostForJointVentures", &opts.UseFullCostForJointVentures).
		BindError()
	if err != nil {
		return opts, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return opts, nil
}

func parseLimit(c echo.Context) (int, error) {
	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return limit, nil
}
