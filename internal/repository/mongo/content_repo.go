// internal/repository/mongo/content_repo.go
package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"alcyxob/coach-assistant/internal/domain"
	"alcyxob/coach-assistant/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const contentCollectionName = "trainer_content"

// mongoContentRepository implements repository.ContentRepository
type mongoContentRepository struct {
	collection *mongo.Collection
}

// NewMongoContentRepository creates a new trainer content repository.
func NewMongoContentRepository(db *mongo.Database) repository.ContentRepository {
	return &mongoContentRepository{
		collection: db.Collection(contentCollectionName),
	}
}

// Insert stores a new content item. The caller assigns the uuid ID.
func (r *mongoContentRepository) Insert(ctx context.Context, item *domain.TrainerContentItem) error {
	if item.ID == "" || item.TrainerID == primitive.NilObjectID {
		return errors.New("content item requires id and trainerId")
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, item)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a single content item.
func (r *mongoContentRepository) GetByID(ctx context.Context, id string) (*domain.TrainerContentItem, error) {
	var item domain.TrainerContentItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetActiveByTrainer retrieves all active library items of a trainer, newest
// first. The retriever scores this set in memory.
func (r *mongoContentRepository) GetActiveByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.TrainerContentItem, error) {
	var items []domain.TrainerContentItem
	filter := bson.M{
		"trainerId": trainerID,
		"isActive":  true,
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes an item, ensuring the trainer owns it.
func (r *mongoContentRepository) Delete(ctx context.Context, id string, trainerID primitive.ObjectID) error {
	filter := bson.M{
		"_id":       id,
		"trainerId": trainerID,
	}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Either the item never existed or it belongs to another trainer.
		return repository.ErrNotFound
	}
	return nil
}

// EnsureContentIndexes creates necessary indexes. Call during startup.
func EnsureContentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "contentType", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
