package export

import (
	"strconv"

	"github.com/edusched/timetable-api/internal/models"
)

var dayNames = map[int]string{
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
}

// ClassGridDataset renders one class-group's week as a lesson-by-day grid.
// Cell values are "Subject (room)" or empty when the slot is free.
func ClassGridDataset(classGroupID string, lessons []models.TimetableLesson, lessonsPerDay int) Dataset {
	headers := []string{"Lesson", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	cells := make(map[int]map[int]string)
	for _, l := range lessons {
		if l.ClassGroupID != classGroupID {
			continue
		}
		if cells[l.LessonNumber] == nil {
			cells[l.LessonNumber] = make(map[int]string)
		}
		value := l.Subject
		if l.ClassroomID != nil {
			value += " (" + *l.ClassroomID + ")"
		}
		cells[l.LessonNumber][l.Day] = value
	}

	rows := make([]map[string]string, 0, lessonsPerDay)
	for number := 1; number <= lessonsPerDay; number++ {
		row := map[string]string{"Lesson": strconv.Itoa(number)}
		for day := 1; day <= len(headers)-1; day++ {
			row[headers[day]] = cells[number][day]
		}
		rows = append(rows, row)
	}
	return Dataset{Headers: headers, Rows: rows}
}

// TimetableDataset flattens stored lesson rows into an export table ordered
// the way they arrive, which is slot order from the repository.
func TimetableDataset(lessons []models.TimetableLesson) Dataset {
	headers := []string{"Day", "Lesson", "Subject", "Teacher", "Class/Group", "Classroom", "Practice"}
	rows := make([]map[string]string, 0, len(lessons))
	for _, l := range lessons {
		day := dayNames[l.Day]
		if day == "" {
			day = strconv.Itoa(l.Day)
		}
		room := ""
		if l.ClassroomID != nil {
			room = *l.ClassroomID
		}
		practice := "no"
		if l.IsPracticeGroup {
			practice = "yes"
		}
		rows = append(rows, map[string]string{
			"Day":         day,
			"Lesson":      strconv.Itoa(l.LessonNumber),
			"Subject":     l.Subject,
			"Teacher":     l.TeacherID,
			"Class/Group": l.ClassGroupID,
			"Classroom":   room,
			"Practice":    practice,
		})
	}
	return Dataset{Headers: headers, Rows: rows}
}
