package repository

import (
	"alcyxob/coach-assistant/internal/domain" // Import our defined domain models
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// DietRepository defines the interface for interacting with diet documents.
// At most one document per (userID, trainerID) is active; the mongo
// implementation backstops this with a partial unique index, so a lost
// deactivate/insert race surfaces as ErrDuplicate instead of a silent
// double-active state.
type DietRepository interface {
	Insert(ctx context.Context, diet *domain.DietDocument) (primitive.ObjectID, error)
	GetActive(ctx context.Context, userID, trainerID primitive.ObjectID) (*domain.DietDocument, error)
	DeactivateActive(ctx context.Context, userID, trainerID primitive.ObjectID) error
}

// WorkoutRepository defines the interface for interacting with workout documents.
type WorkoutRepository interface {
	Insert(ctx context.Context, workout *domain.WorkoutDocument) (primitive.ObjectID, error)
	GetActive(ctx context.Context, userID, trainerID primitive.ObjectID) (*domain.WorkoutDocument, error)
	DeactivateActive(ctx context.Context, userID, trainerID primitive.ObjectID) error
	// UpdateContent rewrites title, description and days of an existing
	// document in place, leaving its active flag untouched.
	UpdateContent(ctx context.Context, id primitive.ObjectID, title, description string, days []domain.WorkoutDay) error
}

// MealPlanRepository defines the interface for per-date meal plan rows.
type MealPlanRepository interface {
	// Upsert replaces the meals of the (userID, trainerID, date) row, or
	// inserts it when absent. The meals slice is replaced wholesale:
	// last-writer-wins at day granularity.
	Upsert(ctx context.Context, day *domain.MealPlanDay) error
	GetByDate(ctx context.Context, userID, trainerID primitive.ObjectID, date string) (*domain.MealPlanDay, error)
	GetRange(ctx context.Context, userID, trainerID primitive.ObjectID, from, to string) ([]domain.MealPlanDay, error)
}

// FoodCategoryRepository holds the flat fan-out of a diet's category listings.
type FoodCategoryRepository interface {
	// ReplaceForDiet drops any rows previously fanned out for the diet and
	// inserts the given set.
	ReplaceForDiet(ctx context.Context, dietID primitive.ObjectID, rows []domain.FoodCategoryRow) error
	GetByDiet(ctx context.Context, dietID primitive.ObjectID) ([]domain.FoodCategoryRow, error)
}

// ContentRepository defines the interface for the trainer content library.
type ContentRepository interface {
	Insert(ctx context.Context, item *domain.TrainerContentItem) error
	GetByID(ctx context.Context, id string) (*domain.TrainerContentItem, error)
	GetActiveByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.TrainerContentItem, error)
	Delete(ctx context.Context, id string, trainerID primitive.ObjectID) error
}

// UsageLogRepository records which content grounded which reply.
type UsageLogRepository interface {
	Insert(ctx context.Context, entry *domain.ContentUsageLog) error
}
