package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealPlanDateLayout is the wire and storage format for meal-plan dates.
const MealPlanDateLayout = "2006-01-02"

// MealPlanDay holds the planned meals for one calendar date, keyed uniquely
// by (UserID, TrainerID, Date). Re-planning a date replaces the Meals slice
// atomically; meals are never appended to an existing day.
type MealPlanDay struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Date      string             `bson:"date" json:"date"` // ISO date, MealPlanDateLayout
	Meals     []Meal             `bson:"meals" json:"meals"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
