// internal/repository/mongo/food_category_repo.go
package mongo

import (
	"context"
	"errors"
	"log"

	"alcyxob/coach-assistant/internal/domain"
	"alcyxob/coach-assistant/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const foodCategoryCollectionName = "food_categories"

// mongoFoodCategoryRepository implements repository.FoodCategoryRepository
type mongoFoodCategoryRepository struct {
	collection *mongo.Collection
}

// NewMongoFoodCategoryRepository creates a new FoodCategory repository.
func NewMongoFoodCategoryRepository(db *mongo.Database) repository.FoodCategoryRepository {
	return &mongoFoodCategoryRepository{
		collection: db.Collection(foodCategoryCollectionName),
	}
}

// ReplaceForDiet drops the previous fan-out for a diet and inserts the new
// rows. The delete and insert are two operations; callers treat the whole
// fan-out as best-effort secondary to the diet write.
func (r *mongoFoodCategoryRepository) ReplaceForDiet(ctx context.Context, dietID primitive.ObjectID, rows []domain.FoodCategoryRow) error {
	if dietID == primitive.NilObjectID {
		return errors.New("diet ID is required for category fan-out")
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"dietId": dietID}); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(rows))
	for i := range rows {
		rows[i].ID = primitive.NewObjectID()
		rows[i].DietID = dietID
		docs = append(docs, rows[i])
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// GetByDiet retrieves all fan-out rows for a diet.
func (r *mongoFoodCategoryRepository) GetByDiet(ctx context.Context, dietID primitive.ObjectID) ([]domain.FoodCategoryRow, error) {
	var rows []domain.FoodCategoryRow
	findOptions := options.Find().SetSort(bson.D{{Key: "kind", Value: 1}, {Key: "category", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"dietId": dietID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	// Empty fan-out is not an error.
	return rows, nil
}

// EnsureFoodCategoryIndexes creates necessary indexes. Call during startup.
func EnsureFoodCategoryIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "dietId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "trainerId", Value: 1}, {Key: "kind", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
