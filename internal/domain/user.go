package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// User represents a user in the system (either a Trainer or a Client).
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"` // Should be unique
	Role      Role               `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Client-specific profile data ---
	// The assistant reads these when building prompts and the verifier uses Goal
	// for its goal-specific checks. Changes arrive as PROFILE_UPDATE requests,
	// which the client confirms before anything is written back here.
	Goal     string   `bson:"goal,omitempty" json:"goal,omitempty"` // e.g. "ganar músculo", "perder grasa"
	HeightCm *float64 `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	WeightKg *float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`

	// --- Client-specific ---
	// Stores the ObjectID of the Trainer coaching this Client.
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}
