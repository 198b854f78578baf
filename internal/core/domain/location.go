package domain

import "time"

// UserLocation is the most recent position a user reported.
type UserLocation struct {
	UserID    string      `json:"user_id"`
	Point     Coordinates `json:"location"`
	Address   string      `json:"address,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}
