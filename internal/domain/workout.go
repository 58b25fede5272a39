package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutStatus tracks a client-facing workout instance.
type WorkoutStatus string

const (
	WorkoutAssigned   WorkoutStatus = "assigned"
	WorkoutInProgress WorkoutStatus = "in_progress"
	WorkoutCompleted  WorkoutStatus = "completed"
	WorkoutSkipped    WorkoutStatus = "skipped"
)

// ProgramDayRef tags an execution record with the exact program day it
// belongs to. The (ProgramAssignmentID, ProgramScheduleID) pair, not the
// template id, identifies one scheduled occurrence: templates recur across
// days and weeks, program days do not.
type ProgramDayRef struct {
	ProgramAssignmentID primitive.ObjectID `bson:"programAssignmentId,omitempty" json:"programAssignmentId,omitempty"`
	ProgramScheduleID   primitive.ObjectID `bson:"programScheduleId,omitempty" json:"programScheduleId,omitempty"`
}

// IsZero reports whether the ref carries no program-day tagging, as on
// records written before the tagging migration.
func (r ProgramDayRef) IsZero() bool {
	return r.ProgramAssignmentID.IsZero() && r.ProgramScheduleID.IsZero()
}

// WorkoutAssignment is a concrete instance of a template for one client
// on one date. It is the durable record of "this workout was put in front
// of the client"; sessions and logs are companions that can be recreated.
type WorkoutAssignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID   primitive.ObjectID `bson:"clientId" json:"clientId"`
	CoachID    primitive.ObjectID `bson:"coachId" json:"coachId"`
	TemplateID primitive.ObjectID `bson:"templateId" json:"templateId"`
	Name       string             `bson:"name" json:"name"`
	Date       time.Time          `bson:"date" json:"date"`
	Status     WorkoutStatus      `bson:"status" json:"status"`
	ProgramDay ProgramDayRef      `bson:"programDay,omitempty" json:"programDay,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutSession is one execution attempt of an assignment. At most one
// in-progress session may exist per (client, program day); the store
// enforces this with a partial unique index so concurrent starters cannot
// both create one.
type WorkoutSession struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutAssignmentID primitive.ObjectID `bson:"workoutAssignmentId" json:"workoutAssignmentId"`
	ClientID            primitive.ObjectID `bson:"clientId" json:"clientId"`
	TemplateID          primitive.ObjectID `bson:"templateId" json:"templateId"`
	Status              WorkoutStatus      `bson:"status" json:"status"`
	ProgramDay          ProgramDayRef      `bson:"programDay,omitempty" json:"programDay,omitempty"`
	StartedAt           time.Time          `bson:"startedAt" json:"startedAt"`
	CompletedAt         *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// WorkoutLog records what the client actually did during an attempt.
// Set-level entries accumulate in SetLogs as the client trains.
type WorkoutLog struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutAssignmentID primitive.ObjectID `bson:"workoutAssignmentId" json:"workoutAssignmentId"`
	ClientID            primitive.ObjectID `bson:"clientId" json:"clientId"`
	TemplateID          primitive.ObjectID `bson:"templateId" json:"templateId"`
	ProgramDay          ProgramDayRef      `bson:"programDay,omitempty" json:"programDay,omitempty"`
	SetLogs             []WorkoutSetLog    `bson:"setLogs,omitempty" json:"setLogs,omitempty"`
	StartedAt           time.Time          `bson:"startedAt" json:"startedAt"`
	CompletedAt         *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// WorkoutSetLog is one performed set within a log.
type WorkoutSetLog struct {
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	BlockKey   int                `bson:"blockKey" json:"blockKey"`
	SetNumber  int                `bson:"setNumber" json:"setNumber"`
	Reps       int                `bson:"reps,omitempty" json:"reps,omitempty"`
	WeightKg   float64            `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	RPE        *float64           `bson:"rpe,omitempty" json:"rpe,omitempty"`
	LoggedAt   time.Time          `bson:"loggedAt" json:"loggedAt"`
}
