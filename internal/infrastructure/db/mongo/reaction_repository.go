package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

const collectionReactions = "reactions"

type ReactionRepository struct {
	col *mongo.Collection
}

func NewReactionRepository(db *mongo.Database) *ReactionRepository {
	return &ReactionRepository{col: db.Collection(collectionReactions)}
}

type reactionDocument struct {
	ID                string    `bson:"_id"`
	UserID            string    `bson:"user_id"`
	ProjectID         string    `bson:"project_id"`
	Rating            string    `bson:"rating"`
	Comment           string    `bson:"comment,omitempty"`
	ProximityVerified bool      `bson:"is_proximity_verified"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func (d reactionDocument) toDomain() *domain.Reaction {
	return &domain.Reaction{
		ID:                d.ID,
		UserID:            d.UserID,
		ProjectID:         d.ProjectID,
		Rating:            domain.Rating(d.Rating),
		Comment:           d.Comment,
		ProximityVerified: d.ProximityVerified,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// Upsert stores r as the single reaction of (r.UserID, r.ProjectID). An existing
// reaction keeps its id and created_at; everything else is overwritten.
//
// Two concurrent first submissions may both attempt the insert; the unique
// index rejects the loser, whose retry then matches the winner's document.
func (r *ReactionRepository) Upsert(ctx context.Context, in *domain.Reaction) (*domain.Reaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": in.UserID, "project_id": in.ProjectID}
	update := bson.M{
		"$set": bson.M{
			"rating":                string(in.Rating),
			"comment":               in.Comment,
			"is_proximity_verified": in.ProximityVerified,
			"updated_at":            in.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"created_at": in.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc reactionDocument
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert reaction: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReactionRepository) Find(ctx context.Context, userID, projectID string) (*domain.Reaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reactionDocument
	err := r.col.FindOne(ctx, bson.M{"user_id": userID, "project_id": projectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReactionNotFound
		}
		return nil, fmt.Errorf("find reaction: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReactionRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Reaction, error) {
	return r.find(ctx, bson.M{"project_id": projectID}, bson.D{{Key: "updated_at", Value: -1}})
}

// ListByUser returns the user's reactions, newest first.
func (r *ReactionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Reaction, error) {
	return r.find(ctx, bson.M{"user_id": userID}, bson.D{{Key: "created_at", Value: -1}})
}

func (r *ReactionRepository) ListByProjects(ctx context.Context, projectIDs []string) ([]*domain.Reaction, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"project_id": bson.M{"$in": projectIDs}}, nil)
}

func (r *ReactionRepository) ListAll(ctx context.Context) ([]*domain.Reaction, error) {
	return r.find(ctx, bson.M{}, nil)
}

func (r *ReactionRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]*domain.Reaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find reactions: %w", err)
	}
	defer cur.Close(ctx)

	var docs []reactionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reactions: %w", err)
	}
	out := make([]*domain.Reaction, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *ReactionRepository) Delete(ctx context.Context, userID, projectID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"user_id": userID, "project_id": projectID})
	if err != nil {
		return fmt.Errorf("delete reaction: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReactionNotFound
	}
	return nil
}

func (r *ReactionRepository) DeleteByProjects(ctx context.Context, projectIDs []string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"project_id": bson.M{"$in": projectIDs}})
	if err != nil {
		return 0, fmt.Errorf("delete reactions: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the unique (user, project) index that makes the ledger
// hold at most one reaction per pair.
func (r *ReactionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "project_id", Value: 1}},
			Options: options.Index().SetName("reactions_user_project_unique").SetUnique(true),
		},
		{Keys: bson.D{{Key: "project_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
