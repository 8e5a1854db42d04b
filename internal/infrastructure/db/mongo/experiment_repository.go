package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wordlab/study-api/internal/core/domain"
	"github.com/wordlab/study-api/internal/core/ports"
)

const experimentsCollection = "experiments"

type ExperimentRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewExperimentRepository(db *mongo.Database) *ExperimentRepository {
	return &ExperimentRepository{
		col: db.Collection(experimentsCollection),
		now: func() time.Time { return time.Now().UTC() },
	}
}

type experimentDoc struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty"`
	OwnerID        string              `bson:"owner_id"`
	Title          string              `bson:"title"`
	Description    string              `bson:"description"`
	StoryTheme     string              `bson:"story_theme"`
	TargetWords    []domain.TargetWord `bson:"target_words"`
	GeneratedStory string              `bson:"generated_story"`
	AudioURL       string              `bson:"audio_url"`
	IsActive       bool                `bson:"is_active"`
	Version        int64               `bson:"version"`
	CreatedAt      time.Time           `bson:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at"`
}

func (r *ExperimentRepository) Create(ctx context.Context, e *domain.Experiment) (*domain.Experiment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toExperimentDoc(e)
	doc.ID = primitive.NilObjectID
	if doc.Version == 0 {
		doc.Version = 1
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert experiment: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

// FindByID treats a malformed id like an unknown one.
func (r *ExperimentRepository) FindByID(ctx context.Context, id string) (*domain.Experiment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrExperimentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc experimentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrExperimentNotFound
		}
		return nil, fmt.Errorf("find experiment: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ExperimentRepository) List(ctx context.Context, f ports.ExperimentFilter) ([]*domain.Experiment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, listFilter(f), options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.Experiment, 0)
	for cur.Next(ctx) {
		var doc experimentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode experiment: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	return out, nil
}

// Update writes u only while the stored version still matches. When nothing
// matches, a follow-up lookup tells a missing experiment from a stale version.
func (r *ExperimentRepository) Update(ctx context.Context, id string, version int64, u ports.ExperimentUpdate) (*domain.Experiment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrExperimentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": updateSet(u, r.now()),
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc experimentDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid, "version": version}, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update experiment: %w", err)
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("update experiment: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrExperimentNotFound
	}
	return nil, domain.ErrConcurrentUpdate
}

func (r *ExperimentRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrExperimentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete experiment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrExperimentNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes used by owner and availability listings.
func (r *ExperimentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func listFilter(f ports.ExperimentFilter) bson.M {
	filter := bson.M{}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	if f.ActiveOnly {
		filter["is_active"] = true
	}
	return filter
}

func updateSet(u ports.ExperimentUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.StoryTheme != nil {
		set["story_theme"] = *u.StoryTheme
	}
	if u.TargetWords != nil {
		words := *u.TargetWords
		if words == nil {
			words = []domain.TargetWord{}
		}
		set["target_words"] = words
	}
	if u.IsActive != nil {
		set["is_active"] = *u.IsActive
	}
	if u.GeneratedStory != nil {
		set["generated_story"] = *u.GeneratedStory
	}
	if u.AudioURL != nil {
		set["audio_url"] = *u.AudioURL
	}
	return set
}

func toExperimentDoc(e *domain.Experiment) experimentDoc {
	oid, _ := primitive.ObjectIDFromHex(e.ID)
	words := e.TargetWords
	if words == nil {
		words = []domain.TargetWord{}
	}
	return experimentDoc{
		ID:             oid,
		OwnerID:        e.OwnerID,
		Title:          e.Title,
		Description:    e.Description,
		StoryTheme:     e.StoryTheme,
		TargetWords:    words,
		GeneratedStory: e.GeneratedStory,
		AudioURL:       e.AudioURL,
		IsActive:       e.IsActive,
		Version:        e.Version,
		CreatedAt:      e.CreatedAt.UTC(),
		UpdatedAt:      e.UpdatedAt.UTC(),
	}
}

func (d experimentDoc) toDomain() *domain.Experiment {
	words := d.TargetWords
	if words == nil {
		words = []domain.TargetWord{}
	}
	return &domain.Experiment{
		ID:             d.ID.Hex(),
		OwnerID:        d.OwnerID,
		Title:          d.Title,
		Description:    d.Description,
		StoryTheme:     d.StoryTheme,
		TargetWords:    words,
		GeneratedStory: d.GeneratedStory,
		AudioURL:       d.AudioURL,
		IsActive:       d.IsActive,
		Version:        d.Version,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}
