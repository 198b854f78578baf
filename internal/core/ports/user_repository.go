package ports

import (
	"context"
	"time"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByProvider(ctx context.Context, provider, providerID string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	// MarkLocationVerified sets the location-verified flag and timestamp.
	MarkLocationVerified(ctx context.Context, userID string, at time.Time) error
}

// LocationRepository stores the latest reported location per user.
type LocationRepository interface {
	Upsert(ctx context.Context, loc *domain.UserLocation) error
	Find(ctx context.Context, userID string) (*domain.UserLocation, error)
}

// SettingRepository is a key/value store for runtime settings.
type SettingRepository interface {
	// GetStrings returns the list stored under key and false when it is unset.
	GetStrings(ctx context.Context, key string) ([]string, bool, error)
	SetStrings(ctx context.Context, key string, values []string) error
}
