package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/dairyfeed/internal/domain/models"
)

const dayLayout = "2006-01-02"

// UsageRepository records per-organization request counters and import runs.
type UsageRepository interface {
	IncrementUsage(ctx context.Context, orgID string, denied bool) error
	RollupDay(ctx context.Context, day time.Time) ([]models.UsageRecord, error)
	SaveImportLog(ctx context.Context, log models.ImportLog) error
}

// MongoUsageRepository implements UsageRepository.
type MongoUsageRepository struct {
	db *mongo.Database
}

// NewMongoUsageRepository builds the usage repository from an existing client.
func NewMongoUsageRepository(client *mongo.Client, dbName string) *MongoUsageRepository {
	return &MongoUsageRepository{db: client.Database(dbName)}
}

// IncrementUsage bumps today's counter for the organization. Denied requests
// are counted separately so the rollup can report throttling pressure.
func (r *MongoUsageRepository) IncrementUsage(ctx context.Context, orgID string, denied bool) error {
	now := time.Now().UTC()
	inc := bson.M{"requests": 1}
	if denied {
		inc = bson.M{"requests": 1, "denied": 1}
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.db.Collection("usage").UpdateOne(ctx,
		bson.M{"org_id": orgID, "day": now.Format(dayLayout)},
		bson.M{"$inc": inc, "$set": bson.M{"updated": now}},
		opts)
	if err != nil {
		return fmt.Errorf("increment usage for org %s: %w", orgID, err)
	}
	return nil
}

// RollupDay returns all organizations' counters for the given day.
func (r *MongoUsageRepository) RollupDay(ctx context.Context, day time.Time) ([]models.UsageRecord, error) {
	cursor, err := r.db.Collection("usage").Find(ctx, bson.M{"day": day.UTC().Format(dayLayout)})
	if err != nil {
		return nil, fmt.Errorf("query usage day: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.UsageRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode usage records: %w", err)
	}
	return records, nil
}

// SaveImportLog stores the outcome of one bulk feed import run.
func (r *MongoUsageRepository) SaveImportLog(ctx context.Context, log models.ImportLog) error {
	if _, err := r.db.Collection("import_logs").InsertOne(ctx, log); err != nil {
		return fmt.Errorf("insert import log: %w", err)
	}
	return nil
}
