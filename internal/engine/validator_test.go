package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusched/timetable-api/internal/models"
	appErrors "github.com/edusched/timetable-api/pkg/errors"
)

func validatorModel() *models.DomainModel {
	model := &models.DomainModel{
		Classrooms: []models.Classroom{
			{ID: "r-1", Capacity: 20},
			{ID: "r-2", Capacity: 40},
		},
	}
	model.BuildIndexes()
	return model
}

func TestValidatorAcceptsConsistentSchedule(t *testing.T) {
	room := "r-2"
	lessons := []*models.Lesson{
		{
			ID: "l-1", TeacherID: "t-1", ClassOrGroupID: "c-1", ClassGroupIDs: []string{"c-1"},
			ClassroomID: &room, TimeSlot: models.TimeSlot{Day: 1, LessonNumber: 1},
			RosterIDs: studentIDs("s", 30),
		},
		{
			ID: "l-2", TeacherID: "t-1", ClassOrGroupID: "c-1", ClassGroupIDs: []string{"c-1"},
			ClassroomID: &room, TimeSlot: models.TimeSlot{Day: 1, LessonNumber: 2},
			RosterIDs: studentIDs("s", 30),
		},
	}
	require.NoError(t, NewConflictValidator(validatorModel()).Validate(lessons))
}

func TestValidatorDetectsTeacherDoubleBooking(t *testing.T) {
	lessons := []*models.Lesson{
		fillerLesson("l-1", "t-1", "c-1", 1, 1),
		fillerLesson("l-2", "t-1", "c-2", 1, 1),
	}
	err := NewConflictValidator(validatorModel()).Validate(lessons)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScheduleInvalid.Code, appErrors.FromError(err).Code)
}

func TestValidatorDetectsClassroomDoubleBooking(t *testing.T) {
	room := "r-1"
	lessons := []*models.Lesson{
		{
			ID: "l-1", TeacherID: "t-1", ClassOrGroupID: "c-1", ClassGroupIDs: []string{"c-1"},
			ClassroomID: &room, TimeSlot: models.TimeSlot{Day: 2, LessonNumber: 3},
		},
		{
			ID: "l-2", TeacherID: "t-2", ClassOrGroupID: "c-2", ClassGroupIDs: []string{"c-2"},
			ClassroomID: &room, TimeSlot: models.TimeSlot{Day: 2, LessonNumber: 3},
		},
	}
	err := NewConflictValidator(validatorModel()).Validate(lessons)
	require.Error(t, err)
}

func TestValidatorDetectsCapacityShortfall(t *testing.T) {
	room := "r-1"
	lessons := []*models.Lesson{
		{
			ID: "l-1", TeacherID: "t-1", ClassOrGroupID: "c-1", ClassGroupIDs: []string{"c-1"},
			ClassroomID: &room, TimeSlot: models.TimeSlot{Day: 1, LessonNumber: 1},
			RosterIDs: studentIDs("s", 25),
		},
	}
	err := NewConflictValidator(validatorModel()).Validate(lessons)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScheduleInvalid.Code, appErrors.FromError(err).Code)
}
