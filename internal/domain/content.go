// internal/domain/content.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentType classifies an item in a trainer's content library.
type ContentType string

const (
	ContentTypeWorkout  ContentType = "workout"
	ContentTypeDiet     ContentType = "diet"
	ContentTypeDocument ContentType = "document"
	ContentTypeAll      ContentType = "all" // filter value only, never stored
)

// TrainerContentItem is a piece of trainer-authored source material the
// assistant may ground its replies in. Items are authored outside this
// subsystem (uploads, editor) and are read-only here; RelevanceScore is
// filled in per search and is not persisted.
type TrainerContentItem struct {
	ID              string             `bson:"_id" json:"id"` // uuid
	TrainerID       primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	ContentType     ContentType        `bson:"contentType" json:"contentType"`
	SourceKey       string             `bson:"sourceKey,omitempty" json:"sourceKey,omitempty"` // object-storage key of the original upload, if any
	Title           string             `bson:"title" json:"title"`
	RawContent      string             `bson:"rawContent" json:"rawContent"`
	StructuredData  map[string]any     `bson:"structuredData,omitempty" json:"structuredData,omitempty"`
	Tags            []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	TargetGoals     []string           `bson:"targetGoals,omitempty" json:"targetGoals,omitempty"`
	IntensityLevel  int                `bson:"intensityLevel,omitempty" json:"intensityLevel,omitempty"` // 1-10, 0 = unset
	ExperienceLevel string             `bson:"experienceLevel,omitempty" json:"experienceLevel,omitempty"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`

	RelevanceScore float64 `bson:"-" json:"relevanceScore,omitempty"`
}

// ContentUsageLog records which content item grounded a reply, for trainer
// analytics. Inserts are best-effort; a failed log never fails the turn.
type ContentUsageLog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID    primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	ContentID    string             `bson:"contentId" json:"contentId"`
	Query        string             `bson:"query" json:"query"` // truncated to 500 chars
	ResponseType string             `bson:"responseType" json:"responseType"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
