package engine

import (
	"fmt"

	"github.com/edusched/timetable-api/internal/models"
)

func allWeek() [models.DaysPerWeek]bool {
	return [models.DaysPerWeek]bool{true, true, true, true, true}
}

func onlyDay(day int) [models.DaysPerWeek]bool {
	var days [models.DaysPerWeek]bool
	days[day-1] = true
	return days
}

func studentIDs(prefix string, n int) []string {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, fmt.Sprintf("%s-%d", prefix, i))
	}
	return ids
}

func electiveStudents(prefix string, n int, classID, subject string) []models.Student {
	students := make([]models.Student, 0, n)
	for _, id := range studentIDs(prefix, n) {
		students = append(students, models.Student{ID: id, ClassID: classID, Electives: []string{subject}})
	}
	return students
}

// fillerLesson occupies index cells without touching classrooms, for
// constraining placement scenarios.
func fillerLesson(id, teacherID, classID string, day, number int) *models.Lesson {
	return &models.Lesson{
		ID:             id,
		Subject:        "filler",
		TeacherID:      teacherID,
		ClassOrGroupID: classID,
		ClassGroupIDs:  []string{classID},
		TimeSlot:       models.TimeSlot{Day: day, LessonNumber: number},
		RosterIDs:      nil,
	}
}
