package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

const collectionProjects = "projects"

type ProjectRepository struct {
	col *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{col: db.Collection(collectionProjects)}
}

// projectDocument is the write shape; numeric fields are Decimal128.
type projectDocument struct {
	ID             string               `bson:"_id"`
	Name           string               `bson:"name"`
	Location       string               `bson:"location"`
	Region         string               `bson:"region"`
	Latitude       primitive.Decimal128 `bson:"latitude"`
	Longitude      primitive.Decimal128 `bson:"longitude"`
	Contractor     string               `bson:"contractor"`
	Cost           primitive.Decimal128 `bson:"cost"`
	FiscalYear     string               `bson:"fiscal_year"`
	StartDate      string               `bson:"start_date,omitempty"`
	CompletionDate string               `bson:"completion_date,omitempty"`
	Status         string               `bson:"status"`
	Notes          string               `bson:"notes,omitempty"`
	CreatedAt      time.Time            `bson:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at"`
}

// projectRecord is the read shape. Numeric fields are decoded leniently.
type projectRecord struct {
	ID             string        `bson:"_id"`
	Name           string        `bson:"name"`
	Location       string        `bson:"location"`
	Region         string        `bson:"region"`
	Latitude       bson.RawValue `bson:"latitude"`
	Longitude      bson.RawValue `bson:"longitude"`
	Contractor     string        `bson:"contractor"`
	Cost           bson.RawValue `bson:"cost"`
	FiscalYear     string        `bson:"fiscal_year"`
	StartDate      string        `bson:"start_date"`
	CompletionDate string        `bson:"completion_date"`
	Status         string        `bson:"status"`
	Notes          string        `bson:"notes"`
	CreatedAt      time.Time     `bson:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at"`
}

func toProjectDocument(p *domain.Project) projectDocument {
	return projectDocument{
		ID:             p.ID,
		Name:           p.Name,
		Location:       p.Location,
		Region:         p.Region,
		Latitude:       toDecimal(p.Latitude),
		Longitude:      toDecimal(p.Longitude),
		Contractor:     p.Contractor,
		Cost:           toDecimal(p.Cost),
		FiscalYear:     p.FiscalYear,
		StartDate:      p.StartDate,
		CompletionDate: p.CompletionDate,
		Status:         p.Status,
		Notes:          p.Notes,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (r projectRecord) toDomain() *domain.Project {
	return &domain.Project{
		ID:             r.ID,
		Name:           r.Name,
		Location:       r.Location,
		Region:         r.Region,
		Latitude:       toFloat(r.Latitude),
		Longitude:      toFloat(r.Longitude),
		Contractor:     r.Contractor,
		Cost:           toFloat(r.Cost),
		FiscalYear:     r.FiscalYear,
		StartDate:      r.StartDate,
		CompletionDate: r.CompletionDate,
		Status:         r.Status,
		Notes:          r.Notes,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// Create inserts a new project document.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toProjectDocument(p)); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// CreateMany inserts every project in one ordered batch.
func (r *ProjectRepository) CreateMany(ctx context.Context, projects []*domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := make([]interface{}, len(projects))
	for i, p := range projects {
		docs[i] = toProjectDocument(p)
	}
	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert projects: %w", err)
	}
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec projectRecord
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return rec.toDomain(), nil
}

// FindByIDs returns the projects that exist among ids, keyed by id.
func (r *ProjectRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Project, error) {
	out := make(map[string]*domain.Project, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	projects, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		out[p.ID] = p
	}
	return out, nil
}

// List returns projects in creation order, narrowed by the criteria the store
// can evaluate. Date criteria are left to ProjectFilter.Match.
func (r *ProjectRepository) List(ctx context.Context, f domain.ProjectFilter) ([]*domain.Project, error) {
	return r.find(ctx, projectQuery(f))
}

func (r *ProjectRepository) find(ctx context.Context, filter bson.M) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Project
	for cur.Next(ctx) {
		var rec projectRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
		out = append(out, rec.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

// Update replaces the stored project.
func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, toProjectDocument(p))
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete projects: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the indexes used by the listing filters.
func (r *ProjectRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "region", Value: 1}, {Key: "location", Value: 1}}},
		{Keys: bson.D{{Key: "contractor", Value: 1}}},
		{Keys: bson.D{{Key: "fiscal_year", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// projectQuery translates the store-evaluable part of a filter into a query.
func projectQuery(f domain.ProjectFilter) bson.M {
	q := bson.M{}
	for field, value := range map[string]string{
		"region":      f.Region,
		"contractor":  f.Contractor,
		"fiscal_year": f.FiscalYear,
		"status":      f.Status,
	} {
		if value != "" {
			q[field] = value
		}
	}

	cost := bson.M{}
	if f.MinCost != nil {
		cost["$gte"] = toDecimal(*f.MinCost)
	}
	if f.MaxCost != nil {
		cost["$lte"] = toDecimal(*f.MaxCost)
	}
	if len(cost) > 0 {
		q["cost"] = cost
	}

	if f.Location != "" {
		q["location"] = containsPattern(f.Location)
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		q["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"location": pattern},
			bson.M{"contractor": pattern},
			bson.M{"region": pattern},
			bson.M{"notes": pattern},
		}
	}
	return q
}

func containsPattern(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
