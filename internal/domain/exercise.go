package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the coach's library.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"` // Coach who created/owns this exercise
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	MuscleGroup   string `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"`     // e.g., "Chest", "Legs", "Back"
	Equipment     string `bson:"equipment,omitempty" json:"equipment,omitempty"`         // e.g., "Barbell", "Dumbbell", "Bodyweight"
	Applicability string `bson:"applicability,omitempty" json:"applicability,omitempty"` // e.g., "Home", "Gym", "Home/Gym"
	Difficulty    string `bson:"difficulty,omitempty" json:"difficulty,omitempty"`       // e.g., "Novice", "Medium", "Advanced"
	VideoURL      string `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
