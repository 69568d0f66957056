package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusched/timetable-api/internal/models"
)

func exportLessons() []models.TimetableLesson {
	room := "r-1"
	return []models.TimetableLesson{
		{Day: 1, LessonNumber: 2, Subject: "Mathematics", TeacherID: "t-1", ClassGroupID: "c-1", ClassroomID: &room},
		{Day: 3, LessonNumber: 1, Subject: "History", TeacherID: "t-2", ClassGroupID: "c-1"},
		{Day: 1, LessonNumber: 5, Subject: "Physics", TeacherID: "t-3", ClassGroupID: "Physics", IsPracticeGroup: true},
	}
}

func TestTimetableDataset(t *testing.T) {
	dataset := TimetableDataset(exportLessons())

	require.Len(t, dataset.Rows, 3)
	assert.Equal(t, "Monday", dataset.Rows[0]["Day"])
	assert.Equal(t, "r-1", dataset.Rows[0]["Classroom"])
	assert.Equal(t, "", dataset.Rows[1]["Classroom"])
	assert.Equal(t, "yes", dataset.Rows[2]["Practice"])

	payload, err := NewCSVExporter().Render(dataset)
	require.NoError(t, err)
	assert.Equal(t, utf8BOM, payload[:3])
	assert.Contains(t, string(payload), "Monday,2,Mathematics,t-1,c-1,r-1,no")
}

func TestClassGridDataset(t *testing.T) {
	grid := ClassGridDataset("c-1", exportLessons(), models.LessonsPerDay)

	require.Len(t, grid.Rows, models.LessonsPerDay)
	assert.Equal(t, "Mathematics (r-1)", grid.Rows[1]["Monday"])
	assert.Equal(t, "History", grid.Rows[0]["Wednesday"])
	// Practice group lessons belong to their own group id, not the class.
	assert.Equal(t, "", grid.Rows[4]["Monday"])
}
