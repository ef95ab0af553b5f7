// internal/domain/diet.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Food is a single food item inside a meal, with optional macro breakdown.
type Food struct {
	Name     string  `bson:"name" json:"name"`
	Quantity float64 `bson:"quantity" json:"quantity"`
	Unit     string  `bson:"unit" json:"unit"` // e.g. "g", "ml", "unidad"
	Calories float64 `bson:"calories,omitempty" json:"calories,omitempty"`
	Protein  float64 `bson:"protein,omitempty" json:"protein,omitempty"`
	Carbs    float64 `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Fats     float64 `bson:"fats,omitempty" json:"fats,omitempty"`
}

// Meal groups foods under a named slot at a given time of day.
type Meal struct {
	Name  string `bson:"name" json:"name"`  // e.g. "Desayuno", "Almuerzo"
	Time  string `bson:"time" json:"time"`  // "HH:MM", orderable lexically
	Foods []Food `bson:"foods" json:"foods"`
}

// FoodEntry is one entry in a diet's allowed/controlled/prohibited listings.
type FoodEntry struct {
	Name        string `bson:"name" json:"name"`
	MaxQuantity string `bson:"maxQuantity,omitempty" json:"maxQuantity,omitempty"` // only meaningful for controlled foods
	Frequency   string `bson:"frequency,omitempty" json:"frequency,omitempty"`     // e.g. "1x semana"
	Notes       string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// CategoryMap maps a food category (proteins, carbs, fats, vegetables, fruits,
// beverages, snacks) to its entries.
type CategoryMap map[string][]FoodEntry

// DietDocument is a trainer-authored diet for a client. At most one document
// per (UserID, TrainerID) may have IsActive=true; activating a new one
// deactivates the prior active document.
type DietDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	TrainerID     primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	DailyCalories float64            `bson:"dailyCalories,omitempty" json:"dailyCalories,omitempty"`
	DailyProteinG float64            `bson:"dailyProteinG,omitempty" json:"dailyProteinG,omitempty"`
	DailyCarbsG   float64            `bson:"dailyCarbsG,omitempty" json:"dailyCarbsG,omitempty"`
	DailyFatsG    float64            `bson:"dailyFatsG,omitempty" json:"dailyFatsG,omitempty"`
	Meals         []Meal             `bson:"meals,omitempty" json:"meals,omitempty"`

	AllowedFoods    CategoryMap `bson:"allowedFoods,omitempty" json:"allowedFoods,omitempty"`
	ControlledFoods CategoryMap `bson:"controlledFoods,omitempty" json:"controlledFoods,omitempty"`
	ProhibitedFoods CategoryMap `bson:"prohibitedFoods,omitempty" json:"prohibitedFoods,omitempty"`

	DailyOrganization string `bson:"dailyOrganization,omitempty" json:"dailyOrganization,omitempty"`
	Recommendations   string `bson:"recommendations,omitempty" json:"recommendations,omitempty"`

	IsActive  bool      `bson:"isActive" json:"isActive"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// FoodCategoryKind distinguishes the three listing kinds in the flattened
// food-category table.
type FoodCategoryKind string

const (
	FoodCategoryAllowed    FoodCategoryKind = "allowed"
	FoodCategoryControlled FoodCategoryKind = "controlled"
	FoodCategoryProhibited FoodCategoryKind = "prohibited"
)

// FoodCategoryRow is the flat fan-out of a diet's category listings, kept in
// its own collection so food questions can be answered without loading the
// whole diet document. Writes here are best-effort secondaries to the diet.
type FoodCategoryRow struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DietID    primitive.ObjectID `bson:"dietId" json:"dietId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Kind      FoodCategoryKind   `bson:"kind" json:"kind"`
	Category  string             `bson:"category" json:"category"` // e.g. "proteins"
	Entry     FoodEntry          `bson:"entry" json:"entry"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
