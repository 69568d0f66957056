package engine

import (
	"fmt"

	"github.com/edusched/timetable-api/internal/models"
	appErrors "github.com/edusched/timetable-api/pkg/errors"
)

// ResourceKind names the three occupancy dimensions tracked per slot.
type ResourceKind string

const (
	ResourceTeacher    ResourceKind = "teacher"
	ResourceClassGroup ResourceKind = "class_group"
	ResourceClassroom  ResourceKind = "classroom"
)

type resourceSlot struct {
	Kind ResourceKind
	ID   string
	Slot models.TimeSlot
}

// AvailabilityIndex is the single source of truth for slot occupancy. Every
// cell records the lesson holding it, so releases can be verified.
type AvailabilityIndex struct {
	cells map[resourceSlot]string
}

// NewAvailabilityIndex returns an empty index.
func NewAvailabilityIndex() *AvailabilityIndex {
	return &AvailabilityIndex{cells: make(map[resourceSlot]string)}
}

// IsFree reports whether the resource has no lesson at the slot.
func (x *AvailabilityIndex) IsFree(kind ResourceKind, id string, slot models.TimeSlot) bool {
	_, occupied := x.cells[resourceSlot{Kind: kind, ID: id, Slot: slot}]
	return !occupied
}

// Occupant returns the lesson id holding the cell, if any.
func (x *AvailabilityIndex) Occupant(kind ResourceKind, id string, slot models.TimeSlot) (string, bool) {
	lessonID, ok := x.cells[resourceSlot{Kind: kind, ID: id, Slot: slot}]
	return lessonID, ok
}

func (x *AvailabilityIndex) occupyOne(kind ResourceKind, id string, slot models.TimeSlot, lessonID string) error {
	key := resourceSlot{Kind: kind, ID: id, Slot: slot}
	if holder, occupied := x.cells[key]; occupied {
		return appErrors.Clone(appErrors.ErrSlotOccupied,
			fmt.Sprintf("%s %s already occupied at day %d lesson %d by %s", kind, id, slot.Day, slot.LessonNumber, holder))
	}
	x.cells[key] = lessonID
	return nil
}

func (x *AvailabilityIndex) releaseOne(kind ResourceKind, id string, slot models.TimeSlot) {
	delete(x.cells, resourceSlot{Kind: kind, ID: id, Slot: slot})
}

// lessonCells enumerates every cell a lesson occupies: its teacher, each of
// its class-group resources and each allotted classroom.
func lessonCells(l *models.Lesson) []resourceSlot {
	cells := make([]resourceSlot, 0, 2+len(l.ClassGroupIDs)+len(l.ExtraClassrooms))
	if l.TeacherID != "" {
		cells = append(cells, resourceSlot{Kind: ResourceTeacher, ID: l.TeacherID, Slot: l.TimeSlot})
	}
	for _, groupID := range l.ClassGroupIDs {
		cells = append(cells, resourceSlot{Kind: ResourceClassGroup, ID: groupID, Slot: l.TimeSlot})
	}
	for _, room := range l.Classrooms() {
		cells = append(cells, resourceSlot{Kind: ResourceClassroom, ID: room, Slot: l.TimeSlot})
	}
	return cells
}

// OccupyLesson claims every cell the lesson touches as one transaction:
// either all cells are claimed or none. A collision is a defect in the
// caller's isFree discipline, not a recoverable condition.
func (x *AvailabilityIndex) OccupyLesson(l *models.Lesson) error {
	claimed := make([]resourceSlot, 0, 4)
	for _, cell := range lessonCells(l) {
		if err := x.occupyOne(cell.Kind, cell.ID, cell.Slot, l.ID); err != nil {
			for _, undo := range claimed {
				x.releaseOne(undo.Kind, undo.ID, undo.Slot)
			}
			return err
		}
		claimed = append(claimed, cell)
	}
	return nil
}

// ReleaseLesson frees every cell the lesson holds.
func (x *AvailabilityIndex) ReleaseLesson(l *models.Lesson) {
	for _, cell := range lessonCells(l) {
		x.releaseOne(cell.Kind, cell.ID, cell.Slot)
	}
}

// LessonFits reports whether every cell the lesson would occupy at its
// current slot is free.
func (x *AvailabilityIndex) LessonFits(l *models.Lesson) bool {
	for _, cell := range lessonCells(l) {
		if !x.IsFree(cell.Kind, cell.ID, cell.Slot) {
			return false
		}
	}
	return true
}
