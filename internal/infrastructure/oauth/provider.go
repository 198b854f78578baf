// Package oauth implements ports.IdentityProvider on top of golang.org/x/oauth2
// for the supported login providers.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"

	requestTimeout = 10 * time.Second
)

// Credentials is a provider's client registration.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// getJSON performs an authenticated GET with the token-bearing client and
// decodes the JSON body into dst.
func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: unexpected status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// exchange trades an authorization code for a token and returns an HTTP client
// that authenticates with it.
func exchange(ctx context.Context, cfg *oauth2.Config, code string) (*http.Client, error) {
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	return cfg.Client(ctx, tok), nil
}
