package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
	"github.com/projectwatch/dashboard-api/internal/core/ports"
)

type userService struct {
	users     ports.UserRepository
	locations ports.LocationRepository
	log       zerolog.Logger
}

// NewUserService returns a UserService implementation.
func NewUserService(users ports.UserRepository, locations ports.LocationRepository, log zerolog.Logger) ports.UserService {
	return &userService{users: users, locations: locations, log: log}
}

func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateProfile changes the username and/or display name. An empty username
// clears it.
func (s *userService) UpdateProfile(ctx context.Context, id string, username, displayName *string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if username != nil {
		name := strings.TrimSpace(*username)
		if name != "" && !domain.ValidUsername(name) {
			return nil, &domain.ValidationError{
				Err:    domain.ErrInvalidUsername,
				Fields: []domain.FieldError{{Field: "username", Message: domain.ErrInvalidUsername.Error()}},
			}
		}
		user.Username = name
	}
	if displayName != nil {
		name := strings.TrimSpace(*displayName)
		if name == "" {
			return nil, &domain.ValidationError{
				Err:    errors.New("invalid display name"),
				Fields: []domain.FieldError{{Field: "display_name", Message: "display_name is required"}},
			}
		}
		user.DisplayName = name
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateLocation overwrites the user's stored location and marks them location verified.
func (s *userService) UpdateLocation(ctx context.Context, id string, in ports.LocationInput) (*domain.UserLocation, error) {
	point := domain.Coordinates{Lat: in.Lat, Lng: in.Lng}
	if !domain.ValidCoordinates(point) {
		return nil, locationError()
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	loc := &domain.UserLocation{UserID: id, Point: point, Address: strings.TrimSpace(in.Address), UpdatedAt: now}
	if err := s.locations.Upsert(ctx, loc); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	if err := s.users.MarkLocationVerified(ctx, id, now); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	s.log.Debug().Str("user_id", id).Msg("location updated")
	return loc, nil
}
