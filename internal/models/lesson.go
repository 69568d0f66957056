package models

// TimeSlot is a cell in the weekly grid. Day and LessonNumber are 1-based.
type TimeSlot struct {
	Day          int `json:"day"`
	LessonNumber int `json:"lesson_number"`
}

// Index maps the slot onto [0, DaysPerWeek*LessonsPerDay).
func (s TimeSlot) Index() int {
	return (s.Day-1)*LessonsPerDay + (s.LessonNumber - 1)
}

// Before orders slots by (day, lesson number) ascending.
func (s TimeSlot) Before(other TimeSlot) bool {
	if s.Day != other.Day {
		return s.Day < other.Day
	}
	return s.LessonNumber < other.LessonNumber
}

// Valid reports whether the slot lies on the weekly grid.
func (s TimeSlot) Valid() bool {
	return s.Day >= 1 && s.Day <= DaysPerWeek && s.LessonNumber >= 1 && s.LessonNumber <= LessonsPerDay
}

// AllSlots enumerates the grid in (day, lesson number) ascending order.
func AllSlots() []TimeSlot {
	slots := make([]TimeSlot, 0, DaysPerWeek*LessonsPerDay)
	for day := 1; day <= DaysPerWeek; day++ {
		for lesson := 1; lesson <= LessonsPerDay; lesson++ {
			slots = append(slots, TimeSlot{Day: day, LessonNumber: lesson})
		}
	}
	return slots
}

// PracticeGroup is an elective cohort produced by group formation. TeacherID
// is empty when no teacher could be resolved for the subject; such groups are
// reported and skipped by placement.
type PracticeGroup struct {
	ID           string   `json:"id"`
	Subject      string   `json:"subject"`
	TeacherID    string   `json:"teacher_id"`
	StudentIDs   []string `json:"student_ids"`
	HoursPerWeek int      `json:"hours_per_week"`
}

// Size returns the group's roster size.
func (g PracticeGroup) Size() int { return len(g.StudentIDs) }

// Lesson is a single placed teaching hour.
//
// ClassOrGroupID identifies the owning class-group resource: the practice
// group id for elective lessons, the school class id otherwise. ClassGroupIDs
// lists every class-group resource the lesson occupies; for mandatory lessons
// spanning several classes it carries all of them.
type Lesson struct {
	ID              string   `json:"id"`
	Subject         string   `json:"subject"`
	TeacherID       string   `json:"teacher_id"`
	ClassOrGroupID  string   `json:"class_or_group_id"`
	ClassGroupIDs   []string `json:"class_group_ids,omitempty"`
	ClassroomID     *string  `json:"classroom_id"`
	ExtraClassrooms []string `json:"extra_classrooms,omitempty"`
	TimeSlot
	IsPracticeGroup  bool     `json:"is_practice_group"`
	RosterIDs        []string `json:"roster_ids"`
	UnsatisfiedHours int      `json:"unsatisfied_hours"`
}

// Classrooms returns every room allotted to the lesson, primary first.
func (l *Lesson) Classrooms() []string {
	if l.ClassroomID == nil {
		return nil
	}
	rooms := make([]string, 0, 1+len(l.ExtraClassrooms))
	rooms = append(rooms, *l.ClassroomID)
	rooms = append(rooms, l.ExtraClassrooms...)
	return rooms
}
