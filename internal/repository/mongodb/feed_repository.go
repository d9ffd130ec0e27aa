package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/dairyfeed/internal/domain/models"
)

// FeedRepository defines the persistence operations for the feed catalogs.
type FeedRepository interface {
	FindStandardByIDs(ctx context.Context, ids []string) ([]models.RawFeedDocument, error)
	FindCustomByIDs(ctx context.Context, orgID string, ids []string) ([]models.RawFeedDocument, error)
	ListStandard(ctx context.Context) ([]models.RawFeedDocument, error)
	GetStandard(ctx context.Context, id string) (*models.RawFeedDocument, error)

	ListCustom(ctx context.Context, orgID string) ([]models.RawFeedDocument, error)
	GetCustom(ctx context.Context, orgID, id string) (*models.RawFeedDocument, error)
	CreateCustom(ctx context.Context, doc models.RawFeedDocument) error
	UpdateCustom(ctx context.Context, doc models.RawFeedDocument) error
	DeleteCustom(ctx context.Context, orgID, id string) error
	UpsertCustomByCode(ctx context.Context, doc models.RawFeedDocument) error
}

// MongoFeedRepository implements FeedRepository on two collections: a shared
// read-only standard catalog and a per-tenant custom collection.
type MongoFeedRepository struct {
	db           *mongo.Database
	standardColl string
	customColl   string
}

// NewMongoFeedRepository builds the feed repository from an existing client.
func NewMongoFeedRepository(client *mongo.Client, dbName string) *MongoFeedRepository {
	return &MongoFeedRepository{
		db:           client.Database(dbName),
		standardColl: "feeds_standard",
		customColl:   "feeds_custom",
	}
}

// FindStandardByIDs returns the standard-catalog records matching the given
// identifiers. Missing identifiers are not an error at this layer.
func (r *MongoFeedRepository) FindStandardByIDs(ctx context.Context, ids []string) ([]models.RawFeedDocument, error) {
	return r.findByFilter(ctx, r.standardColl, bson.M{"_id": bson.M{"$in": ids}})
}

// FindCustomByIDs returns the organization's custom feed records matching the
// given identifiers.
func (r *MongoFeedRepository) FindCustomByIDs(ctx context.Context, orgID string, ids []string) ([]models.RawFeedDocument, error) {
	return r.findByFilter(ctx, r.customColl, bson.M{"_id": bson.M{"$in": ids}, "org_id": orgID})
}

// ListStandard returns the full standard catalog.
func (r *MongoFeedRepository) ListStandard(ctx context.Context) ([]models.RawFeedDocument, error) {
	return r.findByFilter(ctx, r.standardColl, bson.M{})
}

// GetStandard fetches one standard feed by identifier.
func (r *MongoFeedRepository) GetStandard(ctx context.Context, id string) (*models.RawFeedDocument, error) {
	return r.getOne(ctx, r.standardColl, bson.M{"_id": id})
}

// ListCustom returns all custom feeds owned by the organization.
func (r *MongoFeedRepository) ListCustom(ctx context.Context, orgID string) ([]models.RawFeedDocument, error) {
	return r.findByFilter(ctx, r.customColl, bson.M{"org_id": orgID})
}

// GetCustom fetches one custom feed, scoped to the organization.
func (r *MongoFeedRepository) GetCustom(ctx context.Context, orgID, id string) (*models.RawFeedDocument, error) {
	return r.getOne(ctx, r.customColl, bson.M{"_id": id, "org_id": orgID})
}

// CreateCustom inserts a new custom feed document.
func (r *MongoFeedRepository) CreateCustom(ctx context.Context, doc models.RawFeedDocument) error {
	doc.Source = models.FeedSourceCustom
	if _, err := r.db.Collection(r.customColl).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert custom feed %s: %w", doc.ID, err)
	}
	return nil
}

// UpdateCustom replaces an existing custom feed document in place.
func (r *MongoFeedRepository) UpdateCustom(ctx context.Context, doc models.RawFeedDocument) error {
	doc.Source = models.FeedSourceCustom
	res, err := r.db.Collection(r.customColl).ReplaceOne(ctx,
		bson.M{"_id": doc.ID, "org_id": doc.OrgID}, doc)
	if err != nil {
		return fmt.Errorf("update custom feed %s: %w", doc.ID, err)
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Resource: "custom feed", IDs: []string{doc.ID}}
	}
	return nil
}

// DeleteCustom removes a custom feed owned by the organization.
func (r *MongoFeedRepository) DeleteCustom(ctx context.Context, orgID, id string) error {
	res, err := r.db.Collection(r.customColl).DeleteOne(ctx, bson.M{"_id": id, "org_id": orgID})
	if err != nil {
		return fmt.Errorf("delete custom feed %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return &models.NotFoundError{Resource: "custom feed", IDs: []string{id}}
	}
	return nil
}

// UpsertCustomByCode inserts or replaces a custom feed keyed by (org, code).
// Bulk import uses this so re-running an import is idempotent.
func (r *MongoFeedRepository) UpsertCustomByCode(ctx context.Context, doc models.RawFeedDocument) error {
	doc.Source = models.FeedSourceCustom
	opts := options.Replace().SetUpsert(true)
	_, err := r.db.Collection(r.customColl).ReplaceOne(ctx,
		bson.M{"code": doc.Code, "org_id": doc.OrgID}, doc, opts)
	if err != nil {
		return fmt.Errorf("upsert custom feed code %s: %w", doc.Code, err)
	}
	return nil
}

func (r *MongoFeedRepository) findByFilter(ctx context.Context, coll string, filter bson.M) ([]models.RawFeedDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.db.Collection(coll).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", coll, err)
	}
	defer cursor.Close(ctx)

	var docs []models.RawFeedDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s results: %w", coll, err)
	}
	return docs, nil
}

func (r *MongoFeedRepository) getOne(ctx context.Context, coll string, filter bson.M) (*models.RawFeedDocument, error) {
	var doc models.RawFeedDocument
	err := r.db.Collection(coll).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		id, _ := filter["_id"].(string)
		return nil, &models.NotFoundError{Resource: "feed", IDs: []string{id}}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch from %s: %w", coll, err)
	}
	return &doc, nil
}
