package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

func TestAuthService_CreateOperatorAndLogin(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, nil, zerolog.Nop())
	ctx := context.Background()

	user, err := svc.CreateOperator(ctx, " Ops@Example.com ", "pass123", "")
	if err != nil {
		t.Fatalf("CreateOperator returned error: %v", err)
	}
	if user.PasswordHash == "pass123" || user.PasswordHash == "" {
		t.Fatalf("expected password to be hashed")
	}
	if user.Role != domain.RoleAdmin || user.Email != "ops@example.com" {
		t.Fatalf("unexpected operator: %+v", user)
	}

	token, got, err := svc.Login(ctx, "ops@example.com", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token == "" || got.ID != user.ID {
		t.Fatalf("unexpected login result")
	}

	if _, _, err := svc.Login(ctx, "ops@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty input, got %v", err)
	}
}

func TestAuthService_Login_OAuthAccountHasNoPassword(t *testing.T) {
	repo := newStubUserRepo(&domain.User{ID: "u1", Email: "ana@example.com", Provider: "google", ProviderID: "g-1"})
	svc := NewAuthService(repo, "secret", time.Hour, nil, zerolog.Nop())

	if _, _, err := svc.Login(context.Background(), "ana@example.com", "anything"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_OAuthLogin(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, []string{"Boss@Example.com"}, zerolog.Nop())
	ctx := context.Background()

	_, first, err := svc.OAuthLogin(ctx, &ports.ExternalIdentity{Provider: "google", ProviderID: "g-1", Email: "ana@example.com", Name: "Ana"})
	if err != nil {
		t.Fatalf("OAuthLogin returned error: %v", err)
	}
	if first.Role != domain.RoleUser || first.HasUnrestrictedRatingRights() {
		t.Errorf("regular user must not bypass proximity: %+v", first)
	}

	_, again, err := svc.OAuthLogin(ctx, &ports.ExternalIdentity{Provider: "google", ProviderID: "g-1", Email: "ana@example.com", Name: "Ana R", AvatarURL: "https://img/a.png"})
	if err != nil {
		t.Fatalf("second OAuthLogin returned error: %v", err)
	}
	if again.ID != first.ID || again.DisplayName != "Ana R" || again.AvatarURL == "" {
		t.Errorf("expected existing account refreshed, got %+v", again)
	}
	if len(repo.byID) != 1 {
		t.Errorf("expected a single account, got %d", len(repo.byID))
	}

	token, boss, err := svc.OAuthLogin(ctx, &ports.ExternalIdentity{Provider: "github", ProviderID: "42", Email: "boss@example.com"})
	if err != nil {
		t.Fatalf("admin OAuthLogin returned error: %v", err)
	}
	if !boss.HasUnrestrictedRatingRights() {
		t.Errorf("configured admin email must grant the unrestricted capability")
	}
	claims := parseClaims(t, token, "secret")
	if claims["unrestricted"] != true || claims["sub"] != boss.ID {
		t.Errorf("unexpected claims: %v", claims)
	}

	if _, _, err := svc.OAuthLogin(ctx, &ports.ExternalIdentity{Provider: "google"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for incomplete identity, got %v", err)
	}
}

func TestAuthService_OAuthLogin_LinksSecondProviderByEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, nil, zerolog.Nop())
	ctx := context.Background()

	_, first, err := svc.OAuthLogin(ctx, &ports.ExternalIdentity{Provider: "google", ProviderID: "g-1", Email: "ana@example.com", Name: "Ana"})
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	_, second, err := svc.OAuthLogin(ctx, &ports.ExternalIdentity{Provider: "github", ProviderID: "7", Email: "Ana@Example.com"})
	if err != nil {
		t.Fatalf("github login with the same email: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same account, got %s and %s", first.ID, second.ID)
	}
	if second.Provider != "github" || second.ProviderID != "7" || second.DisplayName != "Ana" {
		t.Errorf("unexpected linked account: %+v", second)
	}
	if len(repo.byID) != 1 {
		t.Errorf("expected one stored account, got %d", len(repo.byID))
	}

	_, back, err := svc.OAuthLogin(ctx, &ports.ExternalIdentity{Provider: "google", ProviderID: "g-1", Email: "ana@example.com"})
	if err != nil || back.ID != first.ID {
		t.Fatalf("switching back to google must reach the same account: %v %+v", err, back)
	}
}

func TestAuthService_IssueToken(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour, nil, zerolog.Nop())

	token, err := svc.IssueToken(&domain.User{ID: "u9", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}
	claims := parseClaims(t, token, "secret")
	if claims["sub"] != "u9" || claims["role"] != domain.RoleAdmin || claims["unrestricted"] != true {
		t.Errorf("unexpected claims: %v", claims)
	}
	if _, ok := claims["exp"].(float64); !ok {
		t.Errorf("expected exp claim")
	}
}

func parseClaims(t *testing.T, token, secret string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return []byte(secret), nil })
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	return claims
}
