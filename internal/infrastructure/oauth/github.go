package oauth

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

const githubAPIURL = "https://api.github.com"

// GitHub signs users in with their GitHub account.
type GitHub struct {
	cfg    *oauth2.Config
	apiURL string
}

func NewGitHub(c Credentials) *GitHub {
	return &GitHub{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiURL: githubAPIURL,
	}
}

func (g *GitHub) Name() string { return ProviderGitHub }

func (g *GitHub) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

// Exchange completes the code flow. The profile email is private for many
// accounts, in which case the primary verified address is looked up.
func (g *GitHub) Exchange(ctx context.Context, code string) (*ports.ExternalIdentity, error) {
	client, err := exchange(ctx, g.cfg, code)
	if err != nil {
		return nil, err
	}

	var profile struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(ctx, client, g.apiURL+"/user", &profile); err != nil {
		return nil, err
	}

	email := profile.Email
	if email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, g.apiURL+"/user/emails", &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}
	if email == "" {
		return nil, errors.New("github account has no verified primary email")
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}
	return &ports.ExternalIdentity{
		Provider:   ProviderGitHub,
		ProviderID: strconv.FormatInt(profile.ID, 10),
		Email:      email,
		Name:       name,
		AvatarURL:  profile.AvatarURL,
	}, nil
}
