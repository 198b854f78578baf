package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionSettings = "settings"

// SettingRepository stores operator-managed key/value settings.
type SettingRepository struct {
	col *mongo.Collection
}

func NewSettingRepository(db *mongo.Database) *SettingRepository {
	return &SettingRepository{col: db.Collection(collectionSettings)}
}

type settingDocument struct {
	Key       string    `bson:"_id"`
	Values    []string  `bson:"values"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// GetStrings reports the stored list for key and whether it was ever set.
func (r *SettingRepository) GetStrings(ctx context.Context, key string) ([]string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc settingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find setting %s: %w", key, err)
	}
	if doc.Values == nil {
		doc.Values = []string{}
	}
	return doc.Values, true, nil
}

func (r *SettingRepository) SetStrings(ctx context.Context, key string, values []string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if values == nil {
		values = []string{}
	}
	doc := settingDocument{Key: key, Values: values, UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}
