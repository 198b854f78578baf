package ports

import "context"

// ExternalIdentity is the profile an OAuth provider returns for a signed-in user.
type ExternalIdentity struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

// IdentityProvider wraps an OAuth provider's authorization-code flow.
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the user's profile.
	Exchange(ctx context.Context, code string) (*ExternalIdentity, error)
}
