package service

import (
	"context"
	"fmt"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

type providerSettings struct {
	repo      ports.SettingRepository
	available []string
}

// NewProviderSettings manages the enabled subset of the available (configured)
// OAuth providers. Until an operator saves a list, every available provider is enabled.
func NewProviderSettings(repo ports.SettingRepository, available []string) ports.ProviderSettings {
	return &providerSettings{repo: repo, available: available}
}

func (s *providerSettings) Enabled(ctx context.Context) ([]string, error) {
	stored, ok, err := s.repo.GetStrings(ctx, domain.SettingOAuthProviders)
	if err != nil {
		return nil, fmt.Errorf("load provider settings: %w", err)
	}
	if !ok {
		return append([]string{}, s.available...), nil
	}
	out := make([]string, 0, len(stored))
	for _, p := range stored {
		if s.isAvailable(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *providerSettings) IsEnabled(ctx context.Context, provider string) (bool, error) {
	enabled, err := s.Enabled(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range enabled {
		if p == provider {
			return true, nil
		}
	}
	return false, nil
}

// SetEnabled stores the enabled list. Every entry must be an available provider.
func (s *providerSettings) SetEnabled(ctx context.Context, providers []string) ([]string, error) {
	seen := make(map[string]struct{}, len(providers))
	out := make([]string, 0, len(providers))
	for _, p := range providers {
		if !s.isAvailable(p) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, p)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if err := s.repo.SetStrings(ctx, domain.SettingOAuthProviders, out); err != nil {
		return nil, fmt.Errorf("save provider settings: %w", err)
	}
	return out, nil
}

func (s *providerSettings) isAvailable(p string) bool {
	for _, a := range s.available {
		if a == p {
			return true
		}
	}
	return false
}
