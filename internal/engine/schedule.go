package engine

import (
	"sort"

	"github.com/edusched/timetable-api/internal/models"
)

// Schedule is the mutable aggregate of placed lessons. It owns the
// availability index; all mutation goes through Place and the optimizer's
// index-consistent swap, never by editing lessons directly.
type Schedule struct {
	Lessons []*models.Lesson
	Index   *AvailabilityIndex
}

// NewSchedule returns an empty schedule with a fresh index.
func NewSchedule() *Schedule {
	return &Schedule{Index: NewAvailabilityIndex()}
}

// Place claims the lesson's cells and appends it to the schedule.
func (s *Schedule) Place(l *models.Lesson) error {
	if err := s.Index.OccupyLesson(l); err != nil {
		return err
	}
	s.Lessons = append(s.Lessons, l)
	return nil
}

// dayOccupancy collects the lesson numbers each resource holds per day.
type dayOccupancy map[string]map[int][]int

func (o dayOccupancy) add(id string, slot models.TimeSlot) {
	if o[id] == nil {
		o[id] = make(map[int][]int)
	}
	o[id][slot.Day] = append(o[id][slot.Day], slot.LessonNumber)
}

// windows counts the unoccupied lesson numbers strictly between the first
// and last occupied slot of each day.
func (o dayOccupancy) windows(id string) int {
	total := 0
	for _, numbers := range o[id] {
		if len(numbers) < 2 {
			continue
		}
		sort.Ints(numbers)
		span := numbers[len(numbers)-1] - numbers[0] + 1
		distinct := 1
		for i := 1; i < len(numbers); i++ {
			if numbers[i] != numbers[i-1] {
				distinct++
			}
		}
		total += span - distinct
	}
	return total
}

// gapOccupancy indexes the schedule for gap accounting. Practice groups are
// excluded from the class side: their lessons sit in a shared reserved band
// and counting them per group would penalize the band itself.
func (s *Schedule) gapOccupancy() (teachers, classes dayOccupancy) {
	teachers = make(dayOccupancy)
	classes = make(dayOccupancy)
	for _, l := range s.Lessons {
		if l.TeacherID != "" {
			teachers.add(l.TeacherID, l.TimeSlot)
		}
		if l.IsPracticeGroup {
			continue
		}
		for _, groupID := range l.ClassGroupIDs {
			classes.add(groupID, l.TimeSlot)
		}
	}
	return teachers, classes
}

// TotalGaps sums idle windows over all teachers and school classes.
func (s *Schedule) TotalGaps() int {
	teachers, classes := s.gapOccupancy()
	total := 0
	for id := range teachers {
		total += teachers.windows(id)
	}
	for id := range classes {
		total += classes.windows(id)
	}
	return total
}

// GapOwner names a resource and its current window count.
type GapOwner struct {
	Kind ResourceKind `json:"kind"`
	ID   string       `json:"id"`
	Gaps int          `json:"gaps"`
}

// TopGapOwners lists the resources with the most windows, descending, at
// most limit entries. Zero-gap resources are omitted.
func (s *Schedule) TopGapOwners(limit int) []GapOwner {
	teachers, classes := s.gapOccupancy()
	owners := make([]GapOwner, 0)
	for id := range teachers {
		if gaps := teachers.windows(id); gaps > 0 {
			owners = append(owners, GapOwner{Kind: ResourceTeacher, ID: id, Gaps: gaps})
		}
	}
	for id := range classes {
		if gaps := classes.windows(id); gaps > 0 {
			owners = append(owners, GapOwner{Kind: ResourceClassGroup, ID: id, Gaps: gaps})
		}
	}
	sort.Slice(owners, func(i, j int) bool {
		if owners[i].Gaps != owners[j].Gaps {
			return owners[i].Gaps > owners[j].Gaps
		}
		if owners[i].Kind != owners[j].Kind {
			return owners[i].Kind < owners[j].Kind
		}
		return owners[i].ID < owners[j].ID
	})
	if limit > 0 && len(owners) > limit {
		owners = owners[:limit]
	}
	return owners
}

// SortLessons orders the lesson list by slot, then owning group, for stable
// output.
func (s *Schedule) SortLessons() {
	sort.Slice(s.Lessons, func(i, j int) bool {
		a, b := s.Lessons[i], s.Lessons[j]
		if a.TimeSlot != b.TimeSlot {
			return a.TimeSlot.Before(b.TimeSlot)
		}
		return a.ClassOrGroupID < b.ClassOrGroupID
	})
}
