package domain

import (
	"errors"
	"regexp"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ProviderLocal marks operator accounts that sign in with a password.
const ProviderLocal = "local"

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidUsername = errors.New("username must be 3-20 characters of letters, digits or underscore")
var ErrUsernameTaken = errors.New("username already taken")

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// User models an authenticated actor in the system.
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	DisplayName        string     `json:"display_name"`
	Username           string     `json:"username,omitempty"`
	AvatarURL          string     `json:"avatar_url,omitempty"`
	Provider           string     `json:"provider"`
	ProviderID         string     `json:"-"`
	Role               string     `json:"role"`
	UnrestrictedRating bool       `json:"-"`
	LocationVerified   bool       `json:"location_verified"`
	LocationUpdatedAt  *time.Time `json:"location_updated_at,omitempty"`
	PasswordHash       string     `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// PublicName is the name shown next to the user's public activity.
func (u *User) PublicName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.DisplayName
}

// HasUnrestrictedRatingRights reports whether the user may rate any project
// regardless of where they are.
func (u *User) HasUnrestrictedRatingRights() bool {
	return u.UnrestrictedRating || u.Role == RoleAdmin
}

// ValidUsername reports whether s satisfies the username format.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// PublicUser is the identity exposed alongside reactions and leaderboards.
type PublicUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Public returns the public projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.PublicName(), AvatarURL: u.AvatarURL}
}
