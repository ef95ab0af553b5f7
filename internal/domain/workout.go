package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is a single prescribed exercise within a workout day.
type Exercise struct {
	Name         string   `bson:"name" json:"name"`
	Sets         int      `bson:"sets" json:"sets"`
	Reps         string   `bson:"reps" json:"reps"` // kept as string: "8-12", "AMRAP", etc.
	RestSeconds  int      `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	Tempo        string   `bson:"tempo,omitempty" json:"tempo,omitempty"`
	MuscleGroups []string `bson:"muscleGroups,omitempty" json:"muscleGroups,omitempty"`
	Notes        string   `bson:"notes,omitempty" json:"notes,omitempty"`
}

// WorkoutDay groups the exercises for one labeled day of the plan.
type WorkoutDay struct {
	Day       string     `bson:"day" json:"day"` // e.g. "Día 1: Empuje"
	Exercises []Exercise `bson:"exercises" json:"exercises"`
}

// WorkoutDocument is a trainer-authored workout plan for a client. Same
// single-active-per-(UserID, TrainerID) invariant as DietDocument.
type WorkoutDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Days        []WorkoutDay       `bson:"days" json:"days"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
