package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

const (
	collectionUsers = "users"

	indexUsersEmail    = "users_email_unique"
	indexUsersUsername = "users_username_unique"
	indexUsersProvider = "users_provider_unique"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDocument struct {
	ID                 string     `bson:"_id"`
	Email              string     `bson:"email"`
	DisplayName        string     `bson:"display_name"`
	Username           string     `bson:"username,omitempty"`
	AvatarURL          string     `bson:"avatar_url,omitempty"`
	Provider           string     `bson:"provider"`
	ProviderID         string     `bson:"provider_id"`
	Role               string     `bson:"role"`
	UnrestrictedRating bool       `bson:"unrestricted_rating"`
	LocationVerified   bool       `bson:"location_verified"`
	LocationUpdatedAt  *time.Time `bson:"location_updated_at,omitempty"`
	PasswordHash       string     `bson:"password_hash,omitempty"`
	CreatedAt          time.Time  `bson:"created_at"`
	UpdatedAt          time.Time  `bson:"updated_at"`
}

func toUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:                 u.ID,
		Email:              u.Email,
		DisplayName:        u.DisplayName,
		Username:           u.Username,
		AvatarURL:          u.AvatarURL,
		Provider:           u.Provider,
		ProviderID:         u.ProviderID,
		Role:               u.Role,
		UnrestrictedRating: u.UnrestrictedRating,
		LocationVerified:   u.LocationVerified,
		LocationUpdatedAt:  u.LocationUpdatedAt,
		PasswordHash:       u.PasswordHash,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:                 d.ID,
		Email:              d.Email,
		DisplayName:        d.DisplayName,
		Username:           d.Username,
		AvatarURL:          d.AvatarURL,
		Provider:           d.Provider,
		ProviderID:         d.ProviderID,
		Role:               d.Role,
		UnrestrictedRating: d.UnrestrictedRating,
		LocationVerified:   d.LocationVerified,
		LocationUpdatedAt:  d.LocationUpdatedAt,
		PasswordHash:       d.PasswordHash,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toUserDocument(u)); err != nil {
		return nil, userWriteError("insert user", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByProvider(ctx context.Context, provider, providerID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"provider": provider, "provider_id": providerID})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByIDs returns the users that exist among ids, keyed by id.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	for _, d := range docs {
		out[d.ID] = d.toDomain()
	}
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, toUserDocument(u))
	if err != nil {
		return userWriteError("update user", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) MarkLocationVerified(ctx context.Context, userID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, userID, bson.M{"$set": bson.M{
		"location_verified":   true,
		"location_updated_at": at,
	}})
	if err != nil {
		return fmt.Errorf("mark location verified: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the uniqueness constraints on email, username and
// provider identity. Username is sparse since it is optional.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(indexUsersEmail).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName(indexUsersUsername).SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "provider_id", Value: 1}},
			Options: options.Index().SetName(indexUsersProvider).SetUnique(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// userWriteError maps a unique index violation to the matching domain error.
func userWriteError(op string, err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if strings.Contains(err.Error(), indexUsersUsername) {
		return domain.ErrUsernameTaken
	}
	return domain.ErrUserExists
}
