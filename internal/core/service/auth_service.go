package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

// AuthService implements password and OAuth sign-in and issues bearer tokens.
type AuthService struct {
	repo        ports.UserRepository
	jwtSecret   string
	tokenTTL    time.Duration
	adminEmails map[string]struct{}
	log         zerolog.Logger
}

// NewAuthService builds an AuthService. Users signing in with one of
// adminEmails are granted the unrestricted rating capability.
func NewAuthService(repo ports.UserRepository, jwtSecret string, tokenTTL time.Duration, adminEmails []string, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &AuthService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL, adminEmails: admins, log: log}
}

// CreateOperator stores a password account with the admin role.
func (s *AuthService) CreateOperator(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if displayName == "" {
		displayName = email
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		Provider:     domain.ProviderLocal,
		ProviderID:   email,
		Role:         domain.RoleAdmin,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.repo.Create(ctx, user)
}

// Login authenticates a password account.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user.PasswordHash == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// OAuthLogin signs in the owner of an external identity. A known
// (provider, provider id) pair refreshes the existing account. An unknown pair
// whose email already has an account is linked to that account and becomes its
// current identity; otherwise a new account is created.
func (s *AuthService) OAuthLogin(ctx context.Context, id *ports.ExternalIdentity) (string, *domain.User, error) {
	if id == nil || id.ProviderID == "" || normalizeEmail(id.Email) == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	email := normalizeEmail(id.Email)
	_, isAdmin := s.adminEmails[email]
	now := time.Now().UTC()

	user, err := s.repo.FindByProvider(ctx, id.Provider, id.ProviderID)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = s.repo.FindByEmail(ctx, email)
		if err == nil {
			s.log.Info().
				Str("user_id", user.ID).
				Str("provider", id.Provider).
				Str("previous_provider", user.Provider).
				Msg("external identity linked by email")
			user.Provider = id.Provider
			user.ProviderID = id.ProviderID
		}
	}
	switch {
	case err == nil:
		user.DisplayName = firstNonEmpty(id.Name, user.DisplayName)
		user.AvatarURL = firstNonEmpty(id.AvatarURL, user.AvatarURL)
		user.UnrestrictedRating = user.UnrestrictedRating || isAdmin
		user.UpdatedAt = now
		if err := s.repo.Update(ctx, user); err != nil {
			return "", nil, fmt.Errorf("oauth login: update user: %w", err)
		}
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = s.repo.Create(ctx, &domain.User{
			ID:                 uuid.NewString(),
			Email:              email,
			DisplayName:        firstNonEmpty(id.Name, email),
			AvatarURL:          id.AvatarURL,
			Provider:           id.Provider,
			ProviderID:         id.ProviderID,
			Role:               domain.RoleUser,
			UnrestrictedRating: isAdmin,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		if err != nil {
			return "", nil, fmt.Errorf("oauth login: create user: %w", err)
		}
		s.log.Info().Str("user_id", user.ID).Str("provider", id.Provider).Msg("user registered")
	default:
		return "", nil, fmt.Errorf("oauth login: %w", err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs a bearer token carrying the user's id, role and rating capability.
func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":          user.ID,
		"role":         user.Role,
		"unrestricted": user.HasUnrestrictedRatingRights(),
		"exp":          time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
