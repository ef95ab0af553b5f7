// internal/repository/mongo/usage_log_repo.go
package mongo

import (
	"context"
	"log"
	"time"

	"alcyxob/coach-assistant/internal/domain"
	"alcyxob/coach-assistant/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const usageLogCollectionName = "content_usage_logs"

// mongoUsageLogRepository implements repository.UsageLogRepository
type mongoUsageLogRepository struct {
	collection *mongo.Collection
}

// NewMongoUsageLogRepository creates a new usage log repository.
func NewMongoUsageLogRepository(db *mongo.Database) repository.UsageLogRepository {
	return &mongoUsageLogRepository{
		collection: db.Collection(usageLogCollectionName),
	}
}

// Insert records one content usage event.
func (r *mongoUsageLogRepository) Insert(ctx context.Context, entry *domain.ContentUsageLog) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()
	if len(entry.Query) > 500 {
		entry.Query = entry.Query[:500]
	}

	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// EnsureUsageLogIndexes creates necessary indexes. Call during startup.
func EnsureUsageLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "contentId", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
