// internal/repository/mongo/meal_plan_repo.go
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

const mealPlanCollectionName = "meal_plan_days"

// mongoMealPlanRepository implements repository.MealPlanRepository
type mongoMealPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoMealPlanRepository creates a new MealPlan repository.
func NewMongoMealPlanRepository(db *mongo.Database) repository.MealPlanRepository {
	return &mongoMealPlanRepository{
		collection: db.Collection(mealPlanCollectionName),
	}
}

// Upsert replaces the (userId, trainerId, date) row or inserts it when
// absent. The meals array is replaced atomically at day granularity, so the
// second writer for a date always wins and duplicates can never accrete.
func (r *mongoMealPlanRepository) Upsert(ctx context.Context, day *domain.MealPlanDay) error {
	if day.UserID == primitive.NilObjectID || day.TrainerID == primitive.NilObjectID || day.Date == "" {
		return errors.New("meal plan day requires userId, trainerId, and date")
	}
	now := time.Now().UTC()
	filter := bson.M{
		"userId":    day.UserID,
		"trainerId": day.TrainerID,
		"date":      day.Date,
	}
	update := bson.M{
		"$set": bson.M{
			"meals":     day.Meals,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"userId":    day.UserID,
			"trainerId": day.TrainerID,
			"date":      day.Date,
			"createdAt": now,
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// GetByDate retrieves the planned meals for one date.
func (r *mongoMealPlanRepository) GetByDate(ctx context.Context, userID, trainerID primitive.ObjectID, date string) (*domain.MealPlanDay, error) {
	var day domain.MealPlanDay
	filter := bson.M{
		"userId":    userID,
		"trainerId": trainerID,
		"date":      date,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &day, nil
}

// GetRange retrieves the planned days in [from, to], ordered by date.
// ISO dates sort lexically, so string comparison is correct here.
func (r *mongoMealPlanRepository) GetRange(ctx context.Context, userID, trainerID primitive.ObjectID, from, to string) ([]domain.MealPlanDay, error) {
	var days []domain.MealPlanDay
	filter := bson.M{
		"userId":    userID,
		"trainerId": trainerID,
		"date":      bson.M{"$gte": from, "$lte": to},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// EnsureMealPlanIndexes creates necessary indexes. Call during startup.
// The unique compound index is what makes Upsert a true singleton per key.
func EnsureMealPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "trainerId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
