package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleDay maps (program, week, day-of-week) to a workout template.
// Each week owns its own rows; there is no inheritance from week 1 after
// the initial copy, so different weeks may diverge freely.
// WeekNumber is 1-based, DayOfWeek is 0 (Sunday) through 6.
type ScheduleDay struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID  primitive.ObjectID `bson:"programId" json:"programId"`
	WeekNumber int                `bson:"weekNumber" json:"weekNumber"`
	DayOfWeek  int                `bson:"dayOfWeek" json:"dayOfWeek"`
	TemplateID primitive.ObjectID `bson:"templateId" json:"templateId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PositionLabel renders the human-facing "Week 2 · Day 3" label used when
// naming workout assignments created from this schedule day.
func (d *ScheduleDay) PositionLabel() string {
	return PositionLabel(d.WeekNumber, d.DayOfWeek)
}

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// PositionLabel formats a week number and day-of-week for display.
func PositionLabel(weekNumber, dayOfWeek int) string {
	name := "?"
	if dayOfWeek >= 0 && dayOfWeek <= 6 {
		name = dayNames[dayOfWeek]
	}
	return fmt.Sprintf("Week %d · %s", weekNumber, name)
}
