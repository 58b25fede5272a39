package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DifficultyLevel of a program, informational only.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// Program is a coach-authored multi-week training plan. Schedule rows and
// progression rules hang off the program; assignments reference it without
// duplicating it.
type Program struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID         primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	DurationWeeks   int                `bson:"durationWeeks" json:"durationWeeks"`
	DifficultyLevel DifficultyLevel    `bson:"difficultyLevel,omitempty" json:"difficultyLevel,omitempty"`
	TargetAudience  string             `bson:"targetAudience,omitempty" json:"targetAudience,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AssignmentStatus is the lifecycle of a program assignment.
type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentActive    AssignmentStatus = "active"
	AssignmentPaused    AssignmentStatus = "paused"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// ProgramAssignment binds a program to one client. At most one assignment
// per (client, program) may be active at a time; the store enforces this
// with a partial unique index.
type ProgramAssignment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID primitive.ObjectID `bson:"programId" json:"programId"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"` // denormalized for ownership checks
	StartDate time.Time          `bson:"startDate" json:"startDate"`
	Status    AssignmentStatus   `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProgramProgress is the single mutable pointer into an assigned program:
// the only source of truth for "what day is it for this client right now".
// Week and day indexes are zero-based.
type ProgramProgress struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramAssignmentID primitive.ObjectID `bson:"programAssignmentId" json:"programAssignmentId"`
	ClientID            primitive.ObjectID `bson:"clientId" json:"clientId"`
	CurrentWeekIndex    int                `bson:"currentWeekIndex" json:"currentWeekIndex"`
	CurrentDayIndex     int                `bson:"currentDayIndex" json:"currentDayIndex"`
	IsCompleted         bool               `bson:"isCompleted" json:"isCompleted"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}
