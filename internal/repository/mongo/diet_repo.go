// internal/repository/mongo/diet_repo.go
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

const dietCollectionName = "diets"

// mongoDietRepository implements repository.DietRepository
type mongoDietRepository struct {
	collection *mongo.Collection
}

// NewMongoDietRepository creates a new Diet repository.
func NewMongoDietRepository(db *mongo.Database) repository.DietRepository {
	return &mongoDietRepository{
		collection: db.Collection(dietCollectionName),
	}
}

// Insert stores a new diet document.
func (r *mongoDietRepository) Insert(ctx context.Context, diet *domain.DietDocument) (primitive.ObjectID, error) {
	if diet.UserID == primitive.NilObjectID || diet.TrainerID == primitive.NilObjectID || diet.Title == "" {
		return primitive.NilObjectID, errors.New("diet requires userId, trainerId, and title")
	}
	diet.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	diet.CreatedAt = now
	diet.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, diet)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The partial unique index caught a concurrent activation.
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted diet ID")
	}
	return insertedID, nil
}

// GetActive retrieves the single active diet for a user/trainer pair.
func (r *mongoDietRepository) GetActive(ctx context.Context, userID, trainerID primitive.ObjectID) (*domain.DietDocument, error) {
	var diet domain.DietDocument
	filter := bson.M{
		"userId":    userID,
		"trainerId": trainerID,
		"isActive":  true,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&diet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &diet, nil
}

// DeactivateActive clears the active flag on any active diet for the pair.
func (r *mongoDietRepository) DeactivateActive(ctx context.Context, userID, trainerID primitive.ObjectID) error {
	filter := bson.M{
		"userId":    userID,
		"trainerId": trainerID,
		"isActive":  true,
	}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// EnsureDietIndexes creates necessary indexes. Call during startup.
// The partial unique index enforces the single-active-diet invariant at the
// store level: the deactivate-then-insert sequence in the dispatcher is not
// atomic, and this turns a lost race into a duplicate-key error.
func EnsureDietIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "trainerId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "trainerId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isActive": true}),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
