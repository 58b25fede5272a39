package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressionRule is the per-week, per-block parameter row for one
// scheduled day. Rules are materialized per (scheduleId, weekNumber):
// copying week 1 into week 2 creates independent week-2 rows, never
// references. Editing a week touches only that week's rows.
//
// IsPlaceholder marks a rule copied from week 1 that the coach has not
// edited for its own week yet. It flips to false on the first write and
// never flips back.
type ProgressionRule struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID     primitive.ObjectID `bson:"programId" json:"programId"`
	ScheduleID    primitive.ObjectID `bson:"scheduleId" json:"scheduleId"`
	WeekNumber    int                `bson:"weekNumber" json:"weekNumber"`
	BlockKey      int                `bson:"blockKey" json:"blockKey"` // position of the block within the template
	ExerciseID    primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	BlockType     BlockType          `bson:"blockType" json:"blockType"`
	Params        BlockParams        `bson:"params" json:"params"`
	IsPlaceholder bool               `bson:"isPlaceholder" json:"isPlaceholder"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks the rule's params against its declared block type.
func (r *ProgressionRule) Validate() error {
	return r.Params.Validate(r.BlockType)
}
