package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateBlock is one execution unit inside a workout template: an
// exercise plus the block type and its default parameters. Progression
// rules are materialized from these when the template is scheduled.
type TemplateBlock struct {
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	BlockType  BlockType          `bson:"blockType" json:"blockType"`
	Params     BlockParams        `bson:"params" json:"params"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// WorkoutTemplate is a coach-owned, reusable workout definition.
// Templates are referenced by schedule days; the same template may appear
// on many days across many weeks.
type WorkoutTemplate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name      string             `bson:"name" json:"name"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Blocks    []TemplateBlock    `bson:"blocks" json:"blocks"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks every block's params against its declared type.
func (t *WorkoutTemplate) Validate() error {
	for i := range t.Blocks {
		if err := t.Blocks[i].Params.Validate(t.Blocks[i].BlockType); err != nil {
			return err
		}
	}
	return nil
}
