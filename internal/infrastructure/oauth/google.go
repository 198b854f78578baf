package oauth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var errUnverifiedEmail = errors.New("email is not verified by the provider")

// Google signs users in with their Google account.
type Google struct {
	cfg         *oauth2.Config
	userInfoURL string
}

func NewGoogle(c Credentials) *Google {
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *Google) Name() string { return ProviderGoogle }

func (g *Google) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

// Exchange completes the code flow and returns the account's identity. Accounts
// whose email Google has not verified are refused.
func (g *Google) Exchange(ctx context.Context, code string) (*ports.ExternalIdentity, error) {
	client, err := exchange(ctx, g.cfg, code)
	if err != nil {
		return nil, err
	}

	var info struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := getJSON(ctx, client, g.userInfoURL, &info); err != nil {
		return nil, err
	}
	if !info.VerifiedEmail {
		return nil, errUnverifiedEmail
	}

	return &ports.ExternalIdentity{
		Provider:   ProviderGoogle,
		ProviderID: info.ID,
		Email:      info.Email,
		Name:       info.Name,
		AvatarURL:  info.Picture,
	}, nil
}
