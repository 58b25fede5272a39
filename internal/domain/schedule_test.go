package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionLabel(t *testing.T) {
	assert.Equal(t, "Week 1 · Sunday", PositionLabel(1, 0))
	assert.Equal(t, "Week 2 · Wednesday", PositionLabel(2, 3))
	assert.Equal(t, "Week 4 · Saturday", PositionLabel(4, 6))
	assert.Equal(t, "Week 3 · ?", PositionLabel(3, 7))
}

func TestScheduleDayPositionLabel(t *testing.T) {
	day := ScheduleDay{WeekNumber: 2, DayOfWeek: 1}
	assert.Equal(t, "Week 2 · Monday", day.PositionLabel())
}
