package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

func TestReactionHandler_Submit_Verified(t *testing.T) {
	var got ports.SubmitReactionInput
	svc := &stubReactionService{
		submitFn: func(ctx context.Context, in ports.SubmitReactionInput) (*ports.SubmitReactionResult, error) {
			got = in
			return &ports.SubmitReactionResult{
				Reaction: &domain.Reaction{ID: "r1", UserID: in.UserID, ProjectID: in.ProjectID, Rating: domain.RatingExcellent, ProximityVerified: true},
				Outcome: domain.ProximityOutcome{
					Verified: true, LocationCaptured: true, Determinable: true,
					DistanceMeters: 120, RequiredMeters: 500,
				},
			}, nil
		},
	}
	h := NewReactionHandler(svc)

	body := `{"rating":"excellent","comment":"good","userLocation":{"latitude":14.6,"longitude":121.0}}`
	c, rec := newTestContext(http.MethodPost, "/v1/projects/p1/reactions", strings.NewReader(body), "u1", false)
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := h.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.UserID != "u1" || got.ProjectID != "p1" || got.Rating != "excellent" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if got.Location == nil || got.Location.Lat != 14.6 || got.Location.Lng != 121.0 {
		t.Fatalf("location not forwarded: %+v", got.Location)
	}
	if got.Unrestricted {
		t.Fatal("plain user must not be unrestricted")
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["proximityVerified"] != true || resp["locationCaptured"] != true || resp["isAdminBypass"] != false {
		t.Fatalf("unexpected flags: %+v", resp)
	}
	details, ok := resp["proximityDetails"].(map[string]any)
	if !ok || details["actualDistance"] != "120m" {
		t.Fatalf("unexpected details: %+v", resp["proximityDetails"])
	}
}

func TestReactionHandler_Submit_ForwardsUnrestricted(t *testing.T) {
	var got ports.SubmitReactionInput
	svc := &stubReactionService{
		submitFn: func(ctx context.Context, in ports.SubmitReactionInput) (*ports.SubmitReactionResult, error) {
			got = in
			return &ports.SubmitReactionResult{
				Reaction: &domain.Reaction{ID: "r1", Rating: domain.RatingGhost, ProximityVerified: true},
				Outcome:  domain.ProximityOutcome{Verified: true, AdminBypass: true},
			}, nil
		},
	}
	h := NewReactionHandler(svc)
	c, rec := newTestContext(http.MethodPost, "/v1/projects/p1/reactions", strings.NewReader(`{"rating":"ghost"}`), "admin", true)
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := h.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !got.Unrestricted || got.Location != nil {
		t.Fatalf("unexpected input: %+v", got)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["isAdminBypass"] != true {
		t.Fatalf("expected admin bypass flag: %+v", resp)
	}
	if _, present := resp["proximityDetails"]; present {
		t.Fatal("no distance details without a location")
	}
}

func TestReactionHandler_Submit_TooFarReturnsProximityError(t *testing.T) {
	svc := &stubReactionService{
		submitFn: func(ctx context.Context, in ports.SubmitReactionInput) (*ports.SubmitReactionResult, error) {
			return nil, &domain.ProximityError{Distance: 1200, Required: 500}
		},
	}
	h := NewReactionHandler(svc)
	body := `{"rating":"standard","userLocation":{"latitude":14.7,"longitude":121.1}}`
	c, _ := newTestContext(http.MethodPost, "/v1/projects/p1/reactions", strings.NewReader(body), "u1", false)
	c.SetParamNames("id")
	c.SetParamValues("p1")

	err := h.Submit(c)
	var pe *domain.ProximityError
	if !errors.As(err, &pe) || pe.Distance != 1200 {
		t.Fatalf("expected proximity error, got %v", err)
	}
}

func TestReactionHandler_Submit_MissingLatitude(t *testing.T) {
	h := NewReactionHandler(&stubReactionService{})
	body := `{"rating":"standard","userLocation":{"longitude":121.1}}`
	c, _ := newTestContext(http.MethodPost, "/v1/projects/p1/reactions", strings.NewReader(body), "u1", false)
	c.SetParamNames("id")
	c.SetParamValues("p1")

	err := h.Submit(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "userLocation.latitude" {
		t.Fatalf("unexpected fields: %+v", ve.Fields)
	}
}

func TestReactionHandler_Submit_RequiresAuth(t *testing.T) {
	h := NewReactionHandler(&stubReactionService{})
	c, _ := newTestContext(http.MethodPost, "/v1/projects/p1/reactions", strings.NewReader(`{"rating":"ghost"}`), "", false)

	if err := h.Submit(c); err == nil {
		t.Fatal("expected error without claims")
	}
}

func TestReactionHandler_CheckProximity(t *testing.T) {
	svc := &stubReactionService{
		proximityFn: func(ctx context.Context, userID, projectID string, loc *ports.LocationInput, unrestricted bool) (domain.ProximityOutcome, error) {
			return domain.ProximityOutcome{Rejected: true, LocationCaptured: true, Determinable: true, DistanceMeters: 900, RequiredMeters: 500}, nil
		},
	}
	h := NewReactionHandler(svc)
	body := `{"userLocation":{"latitude":1,"longitude":2}}`
	c, rec := newTestContext(http.MethodPost, "/v1/projects/p1/proximity", strings.NewReader(body), "u1", false)
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := h.CheckProximity(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["allowed"] != false {
		t.Fatalf("expected allowed=false: %+v", resp)
	}
}

func TestReactionHandler_Remove(t *testing.T) {
	var removed string
	svc := &stubReactionService{
		removeFn: func(ctx context.Context, userID, projectID string) error {
			removed = userID + "/" + projectID
			return nil
		},
	}
	h := NewReactionHandler(svc)
	c, rec := newTestContext(http.MethodDelete, "/v1/projects/p1/reactions", nil, "u1", false)
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := h.Remove(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || removed != "u1/p1" {
		t.Fatalf("unexpected result: code=%d removed=%q", rec.Code, removed)
	}
}

func TestReactionHandler_ListForProject(t *testing.T) {
	svc := &stubReactionService{
		forProject: []ports.ProjectReaction{{
			Reaction: &domain.Reaction{ID: "r1", Rating: domain.RatingStandard, CreatedAt: time.Now()},
			User:     domain.PublicUser{ID: "u1", Name: "ana"},
		}},
	}
	h := NewReactionHandler(svc)
	c, rec := newTestContext(http.MethodGet, "/v1/projects/p1/reactions", nil, "", false)
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := h.ListForProject(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 || resp[0]["id"] != "r1" || resp[0]["rating"] != "standard" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if user, _ := resp[0]["user"].(map[string]any); user["name"] != "ana" {
		t.Fatalf("expected submitter identity: %+v", resp[0])
	}
}

func TestReactionHandler_ListMine(t *testing.T) {
	svc := &stubReactionService{
		forUser: []ports.UserReaction{{
			Reaction: &domain.Reaction{ID: "r1", Rating: domain.RatingGhost},
			Project:  ports.ProjectSummary{ID: "p1", Name: "Bridge"},
		}},
	}
	h := NewReactionHandler(svc)
	c, rec := newTestContext(http.MethodGet, "/v1/me/reactions", nil, "u1", false)

	if err := h.ListMine(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if project, _ := resp[0]["project"].(map[string]any); len(resp) != 1 || project["name"] != "Bridge" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestRejectionReason(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&domain.ProximityError{}, "too_far"},
		{domain.ErrProjectNotFound, "not_found"},
		{&domain.ValidationError{Err: domain.ErrInvalidRating}, "invalid"},
		{errors.New("db down"), "error"},
	}
	for _, tc := range cases {
		if got := rejectionReason(tc.err); got != tc.want {
			t.Errorf("rejectionReason(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
