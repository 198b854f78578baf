package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSettingsHandler_PutAndGetProviders(t *testing.T) {
	settings := &stubProviderSettings{enabled: []string{"google", "github"}}
	h := NewSettingsHandler(settings, zerolog.Nop())

	c, rec := newTestContext(http.MethodPut, "/v1/admin/settings/providers", strings.NewReader(`{"providers":["github"]}`), "admin", true)
	if err := h.PutProviders(c); err != nil {
		t.Fatalf("put: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = newTestContext(http.MethodGet, "/v1/admin/settings/providers", nil, "admin", true)
	if err := h.GetProviders(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	var resp providersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Providers) != 1 || resp.Providers[0] != "github" {
		t.Fatalf("unexpected providers: %v", resp.Providers)
	}
}

func TestSettingsHandler_PutProviders_RequiresBody(t *testing.T) {
	h := NewSettingsHandler(&stubProviderSettings{}, zerolog.Nop())
	c, _ := newTestContext(http.MethodPut, "/v1/admin/settings/providers", strings.NewReader(`{}`), "admin", true)

	if err := h.PutProviders(c); err == nil {
		t.Fatal("expected validation error")
	}
}
