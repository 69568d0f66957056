package engine

import (
	"fmt"

	"github.com/edusched/timetable-api/internal/models"
	appErrors "github.com/edusched/timetable-api/pkg/errors"
)

// ConflictValidator is the final read-only invariant check. Any violation
// means the placer or optimizer broke transactional discipline; the run
// aborts rather than repairing the schedule.
type ConflictValidator struct {
	model *models.DomainModel
}

// NewConflictValidator builds a validator over the domain model.
func NewConflictValidator(model *models.DomainModel) *ConflictValidator {
	return &ConflictValidator{model: model}
}

// Validate verifies that no two lessons share a teacher, class-group or
// classroom cell, and that every lesson's allotted rooms seat its roster.
func (v *ConflictValidator) Validate(lessons []*models.Lesson) error {
	type cell struct {
		kind ResourceKind
		id   string
		slot models.TimeSlot
	}
	seen := make(map[cell]string)

	claim := func(kind ResourceKind, id string, lesson *models.Lesson) error {
		key := cell{kind: kind, id: id, slot: lesson.TimeSlot}
		if holder, dup := seen[key]; dup {
			return appErrors.Clone(appErrors.ErrScheduleInvalid,
				fmt.Sprintf("%s %s double-booked at day %d lesson %d by lessons %s and %s",
					kind, id, lesson.Day, lesson.LessonNumber, holder, lesson.ID))
		}
		seen[key] = lesson.ID
		return nil
	}

	for _, lesson := range lessons {
		if lesson.TeacherID != "" {
			if err := claim(ResourceTeacher, lesson.TeacherID, lesson); err != nil {
				return err
			}
		}
		for _, groupID := range lesson.ClassGroupIDs {
			if err := claim(ResourceClassGroup, groupID, lesson); err != nil {
				return err
			}
		}

		capacity := 0
		for _, roomID := range lesson.Classrooms() {
			if err := claim(ResourceClassroom, roomID, lesson); err != nil {
				return err
			}
			room := v.model.ClassroomByID(roomID)
			if room == nil {
				return appErrors.Clone(appErrors.ErrScheduleInvalid,
					fmt.Sprintf("lesson %s references unknown classroom %s", lesson.ID, roomID))
			}
			capacity += room.Capacity
		}
		if lesson.ClassroomID != nil && capacity < len(lesson.RosterIDs) {
			return appErrors.Clone(appErrors.ErrScheduleInvalid,
				fmt.Sprintf("lesson %s seats %d students in capacity %d", lesson.ID, len(lesson.RosterIDs), capacity))
		}
	}
	return nil
}
