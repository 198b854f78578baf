package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

// fakeProvider serves a token endpoint and the user info routes under one server.
func fakeProvider(t *testing.T, routes map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "token_type": "bearer", "expires_in": 3600})
	})
	for path, body := range routes {
		body := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(body)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func endpoint(srv *httptest.Server) oauth2.Endpoint {
	return oauth2.Endpoint{AuthURL: srv.URL + "/authorize", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
}

func TestGoogle_Exchange(t *testing.T) {
	srv := fakeProvider(t, map[string]any{
		"/userinfo": map[string]any{"id": "g-1", "email": "ana@example.com", "verified_email": true, "name": "Ana", "picture": "https://img/a"},
	})
	g := NewGoogle(Credentials{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"})
	g.cfg.Endpoint = endpoint(srv)
	g.userInfoURL = srv.URL + "/userinfo"

	id, err := g.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("Exchange returned error: %v", err)
	}
	if id.Provider != ProviderGoogle || id.ProviderID != "g-1" || id.Email != "ana@example.com" || id.AvatarURL == "" {
		t.Errorf("unexpected identity: %+v", id)
	}

	if _, err := g.Exchange(context.Background(), "bad-code"); err == nil {
		t.Errorf("expected exchange failure for a bad code")
	}
}

func TestGoogle_UnverifiedEmail(t *testing.T) {
	srv := fakeProvider(t, map[string]any{
		"/userinfo": map[string]any{"id": "g-2", "email": "x@example.com", "verified_email": false},
	})
	g := NewGoogle(Credentials{ClientID: "id", ClientSecret: "secret"})
	g.cfg.Endpoint = endpoint(srv)
	g.userInfoURL = srv.URL + "/userinfo"

	if _, err := g.Exchange(context.Background(), "good-code"); err != errUnverifiedEmail {
		t.Fatalf("expected errUnverifiedEmail, got %v", err)
	}
}

func TestGitHub_Exchange_PrivateEmail(t *testing.T) {
	srv := fakeProvider(t, map[string]any{
		"/user": map[string]any{"id": 42, "login": "octo", "name": "", "email": nil, "avatar_url": "https://img/o"},
		"/user/emails": []map[string]any{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "octo@example.com", "primary": true, "verified": true},
		},
	})
	g := NewGitHub(Credentials{ClientID: "id", ClientSecret: "secret"})
	g.cfg.Endpoint = endpoint(srv)
	g.apiURL = srv.URL

	id, err := g.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("Exchange returned error: %v", err)
	}
	if id.ProviderID != "42" || id.Email != "octo@example.com" || id.Name != "octo" {
		t.Errorf("unexpected identity: %+v", id)
	}
}

func TestAuthCodeURL(t *testing.T) {
	g := NewGitHub(Credentials{ClientID: "cid", RedirectURL: "http://localhost/auth/github/callback"})
	u, err := url.Parse(g.AuthCodeURL("state-123"))
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	q := u.Query()
	if q.Get("state") != "state-123" || q.Get("client_id") != "cid" {
		t.Errorf("unexpected query: %v", q)
	}
	if !strings.Contains(q.Get("scope"), "user:email") {
		t.Errorf("expected email scope, got %q", q.Get("scope"))
	}
}
