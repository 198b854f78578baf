package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

const collectionLocations = "user_locations"

// LocationRepository keeps the last reported position of each user.
type LocationRepository struct {
	col *mongo.Collection
}

func NewLocationRepository(db *mongo.Database) *LocationRepository {
	return &LocationRepository{col: db.Collection(collectionLocations)}
}

type locationDocument struct {
	UserID    string    `bson:"user_id"`
	Latitude  float64   `bson:"latitude"`
	Longitude float64   `bson:"longitude"`
	Address   string    `bson:"address,omitempty"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Upsert overwrites the user's stored location.
func (r *LocationRepository) Upsert(ctx context.Context, loc *domain.UserLocation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := locationDocument{
		UserID:    loc.UserID,
		Latitude:  loc.Point.Lat,
		Longitude: loc.Point.Lng,
		Address:   loc.Address,
		UpdatedAt: loc.UpdatedAt,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"user_id": loc.UserID}, doc, opts); err != nil {
		return fmt.Errorf("upsert location: %w", err)
	}
	return nil
}

func (r *LocationRepository) Find(ctx context.Context, userID string) (*domain.UserLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc locationDocument
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find location: %w", err)
	}
	return &domain.UserLocation{
		UserID:    doc.UserID,
		Point:     domain.Coordinates{Lat: doc.Latitude, Lng: doc.Longitude},
		Address:   doc.Address,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (r *LocationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
