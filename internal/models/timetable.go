package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus represents lifecycle phases for saved timetables.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "DRAFT"
	TimetableStatusPublished TimetableStatus = "PUBLISHED"
	TimetableStatusArchived  TimetableStatus = "ARCHIVED"
)

// Timetable captures a versioned saved timetable for a cohort label.
type Timetable struct {
	ID        string          `db:"id" json:"id"`
	Label     string          `db:"label" json:"label"`
	Version   int             `db:"version" json:"version"`
	Status    TimetableStatus `db:"status" json:"status"`
	Meta      types.JSONText  `db:"meta" json:"meta"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// TimetableLesson is a persisted lesson row inside a saved timetable.
type TimetableLesson struct {
	ID              string         `db:"id" json:"id"`
	TimetableID     string         `db:"timetable_id" json:"timetable_id"`
	Day             int            `db:"day" json:"day"`
	LessonNumber    int            `db:"lesson_number" json:"lesson_number"`
	Subject         string         `db:"subject" json:"subject"`
	TeacherID       string         `db:"teacher_id" json:"teacher_id"`
	ClassGroupID    string         `db:"class_group_id" json:"class_group_id"`
	ClassroomID     *string        `db:"classroom_id" json:"classroom_id,omitempty"`
	IsPracticeGroup bool           `db:"is_practice_group" json:"is_practice_group"`
	Roster          types.JSONText `db:"roster" json:"roster"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// TimetableMeta is the run summary stored alongside a saved timetable.
type TimetableMeta struct {
	PlacedLessons   int `json:"placed_lessons"`
	UnplacedLessons int `json:"unplaced_lessons"`
	InitialGaps     int `json:"initial_gaps"`
	FinalGaps       int `json:"final_gaps"`
	AcceptedSwaps   int `json:"accepted_swaps"`
	Warnings        int `json:"warnings"`
}
