package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusched/timetable-api/internal/models"
	appErrors "github.com/edusched/timetable-api/pkg/errors"
)

func TestAvailabilityIndexOccupyAndRelease(t *testing.T) {
	idx := NewAvailabilityIndex()
	room := "r-1"
	slot := models.TimeSlot{Day: 1, LessonNumber: 2}
	lesson := &models.Lesson{
		ID:             "l-1",
		TeacherID:      "t-1",
		ClassOrGroupID: "c-1",
		ClassGroupIDs:  []string{"c-1"},
		ClassroomID:    &room,
		TimeSlot:       slot,
	}

	require.NoError(t, idx.OccupyLesson(lesson))
	assert.False(t, idx.IsFree(ResourceTeacher, "t-1", slot))
	assert.False(t, idx.IsFree(ResourceClassGroup, "c-1", slot))
	assert.False(t, idx.IsFree(ResourceClassroom, "r-1", slot))

	holder, ok := idx.Occupant(ResourceTeacher, "t-1", slot)
	require.True(t, ok)
	assert.Equal(t, "l-1", holder)

	idx.ReleaseLesson(lesson)
	assert.True(t, idx.IsFree(ResourceTeacher, "t-1", slot))
	assert.True(t, idx.IsFree(ResourceClassGroup, "c-1", slot))
	assert.True(t, idx.IsFree(ResourceClassroom, "r-1", slot))
}

func TestAvailabilityIndexConflictRollsBackClaimedCells(t *testing.T) {
	idx := NewAvailabilityIndex()
	room := "r-1"
	slot := models.TimeSlot{Day: 2, LessonNumber: 3}

	first := &models.Lesson{
		ID:             "l-1",
		TeacherID:      "t-1",
		ClassOrGroupID: "c-1",
		ClassGroupIDs:  []string{"c-1"},
		ClassroomID:    &room,
		TimeSlot:       slot,
	}
	require.NoError(t, idx.OccupyLesson(first))

	// Same classroom, different teacher and class: the room cell collides
	// after the teacher and class cells were already claimed.
	second := &models.Lesson{
		ID:             "l-2",
		TeacherID:      "t-2",
		ClassOrGroupID: "c-2",
		ClassGroupIDs:  []string{"c-2"},
		ClassroomID:    &room,
		TimeSlot:       slot,
	}
	err := idx.OccupyLesson(second)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSlotOccupied.Code, appErrors.FromError(err).Code)

	assert.True(t, idx.IsFree(ResourceTeacher, "t-2", slot), "partial claim must roll back")
	assert.True(t, idx.IsFree(ResourceClassGroup, "c-2", slot), "partial claim must roll back")
	assert.False(t, idx.IsFree(ResourceClassroom, "r-1", slot), "original holder keeps the cell")
}
