package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonProgress_ComputePercent(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		expected  int
	}{
		{name: "none completed", completed: 0, total: 20, expected: 0},
		{name: "rounds down", completed: 7, total: 20, expected: 35},
		{name: "one third", completed: 1, total: 3, expected: 33},
		{name: "all completed", completed: 20, total: 20, expected: 100},
		{name: "over target is clamped", completed: 25, total: 20, expected: 100},
		{name: "zero target", completed: 3, total: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &LessonProgress{LessonsCompleted: tt.completed, TotalLessons: tt.total}
			p.ComputePercent()
			assert.Equal(t, tt.expected, p.Percent)
		})
	}
}

func TestBooking_StartsAt(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	t.Run("parsed in the given location", func(t *testing.T) {
		b := &Booking{LessonDate: "2030-03-11", LessonTime: "09:00"}

		startsAt, err := b.StartsAt(berlin)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2030, 3, 11, 8, 0, 0, 0, time.UTC), startsAt.UTC())
	})

	t.Run("invalid date", func(t *testing.T) {
		b := &Booking{LessonDate: "11/03/2030", LessonTime: "09:00"}

		_, err := b.StartsAt(time.UTC)

		assert.Error(t, err)
	})
}

func TestInstructor_HasSpecialty(t *testing.T) {
	i := &Instructor{Specialties: []string{"nervous-drivers", "test-prep"}}

	assert.True(t, i.HasSpecialty("nervous-drivers"))
	assert.False(t, i.HasSpecialty("highway"))
}

func TestValidationError(t *testing.T) {
	var err error = NewValidationError("rating must be between 1 and 5")

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "rating must be between 1 and 5", ve.Error())
}
