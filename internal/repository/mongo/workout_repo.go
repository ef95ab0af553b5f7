// internal/repository/mongo/workout_repo.go
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

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Insert stores a new workout document.
func (r *mongoWorkoutRepository) Insert(ctx context.Context, workout *domain.WorkoutDocument) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.TrainerID == primitive.NilObjectID || workout.Title == "" {
		return primitive.NilObjectID, errors.New("workout requires userId, trainerId, and title")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetActive retrieves the single active workout for a user/trainer pair.
func (r *mongoWorkoutRepository) GetActive(ctx context.Context, userID, trainerID primitive.ObjectID) (*domain.WorkoutDocument, error) {
	var workout domain.WorkoutDocument
	filter := bson.M{
		"userId":    userID,
		"trainerId": trainerID,
		"isActive":  true,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// DeactivateActive clears the active flag on any active workout for the pair.
func (r *mongoWorkoutRepository) DeactivateActive(ctx context.Context, userID, trainerID primitive.ObjectID) error {
	filter := bson.M{
		"userId":    userID,
		"trainerId": trainerID,
		"isActive":  true,
	}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// UpdateContent rewrites the plan body of an existing workout in place.
// Ownership and active state are deliberately not touched here.
func (r *mongoWorkoutRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, title, description string, days []domain.WorkoutDay) error {
	if id == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"title":       title,
			"description": description,
			"days":        days,
			"updatedAt":   time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
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
