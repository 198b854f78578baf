package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

func TestAnalyticsHandler_Snapshot_SortsFiscalYears(t *testing.T) {
	svc := &stubAnalyticsService{snapshot: &domain.AnalyticsSnapshot{
		TotalProjects: 3,
		ProjectsByFiscalYear: []domain.GroupStat{
			{Dimension: domain.DimensionFiscalYear, Key: "2024", Count: 1},
			{Dimension: domain.DimensionFiscalYear, Key: "2022", Count: 1},
			{Dimension: domain.DimensionFiscalYear, Key: "2023", Count: 1},
		},
	}}
	h := NewAnalyticsHandler(svc)

	c, rec := newTestContext(http.MethodGet,
		"/v1/analytics?region=NCR&drillRegion=NCR&useFullCostForJointVentures=true", nil, "", false)
	if err := h.Snapshot(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if svc.lastFilter.Region != "NCR" || svc.lastOpts.DrillRegion != "NCR" || !svc.lastOpts.UseFullCostForJointVentures {
		t.Fatalf("options not forwarded: %+v %+v", svc.lastFilter, svc.lastOpts)
	}

	var resp domain.AnalyticsSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	var keys []string
	for _, g := range resp.ProjectsByFiscalYear {
		keys = append(keys, g.Key)
	}
	if len(keys) != 3 || keys[0] != "2022" || keys[1] != "2023" || keys[2] != "2024" {
		t.Fatalf("fiscal years not ascending: %v", keys)
	}
}

func TestAnalyticsHandler_Snapshot_BadBool(t *testing.T) {
	h := NewAnalyticsHandler(&stubAnalyticsService{snapshot: &domain.AnalyticsSnapshot{}})
	c, _ := newTestContext(http.MethodGet, "/v1/analytics?useFullCostForJointVentures=maybe", nil, "", false)

	if err := h.Snapshot(c); err == nil {
		t.Fatal("expected bind error")
	}
}

func TestAnalyticsHandler_Contractors(t *testing.T) {
	svc := &stubAnalyticsService{contractors: []domain.ContractorRollup{{Name: "ACME", ControversyScore: 1.5}}}
	h := NewAnalyticsHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/v1/leaderboard/contractors?sort=controversy&limit=5", nil, "", false)
	if err := h.Contractors(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.lastSort != domain.SortControversy || svc.lastLimit != 5 {
		t.Fatalf("unexpected args: sort=%q limit=%d", svc.lastSort, svc.lastLimit)
	}
	var rows []domain.ContractorRollup
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "ACME" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestAnalyticsHandler_Contractors_InvalidSort(t *testing.T) {
	h := NewAnalyticsHandler(&stubAnalyticsService{})
	c, _ := newTestContext(http.MethodGet, "/v1/leaderboard/contractors?sort=cheapest", nil, "", false)

	if err := h.Contractors(c); !errors.Is(err, domain.ErrInvalidSort) {
		t.Fatalf("expected ErrInvalidSort, got %v", err)
	}
}

func TestAnalyticsHandler_Users(t *testing.T) {
	svc := &stubAnalyticsService{}
	h := NewAnalyticsHandler(svc)
	c, rec := newTestContext(http.MethodGet, "/v1/leaderboard/users?limit=3", nil, "", false)

	if err := h.Users(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.lastLimit != 3 || rec.Code != http.StatusOK {
		t.Fatalf("unexpected: limit=%d code=%d", svc.lastLimit, rec.Code)
	}
}
