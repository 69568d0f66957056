package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusched/timetable-api/internal/models"
)

func phasedModel() *models.DomainModel {
	return &models.DomainModel{
		Teachers: []models.Teacher{
			{ID: "t-1", Subjects: []string{"History"}, DaysAvailable: allWeek()},
			{ID: "t-2", Subjects: []string{"Physics"}, DaysAvailable: allWeek()},
		},
		Classrooms: []models.Classroom{{ID: "r-1", Capacity: 30}, {ID: "r-2", Capacity: 30}},
		Classes:    []models.SchoolClass{{ID: "c-1", StudentIDs: studentIDs("s", 10)}},
		Students:   electiveStudents("s", 10, "c-1", "Physics"),
		Subjects: []models.Subject{
			{Name: "History", Type: models.SubjectTypeMandatory, HoursPerWeek: 2, TeacherID: "t-1", ClassIDs: []string{"c-1"}},
			{Name: "Physics", Type: models.SubjectTypeElective, HoursPerWeek: 2, TeacherID: "t-2"},
		},
	}
}

func TestSessionRunUntilGroups(t *testing.T) {
	result, err := NewSession(phasedModel(), Config{}, nil).RunUntil(context.Background(), PhaseGroups)
	require.NoError(t, err)

	require.Len(t, result.Groups, 1)
	assert.Equal(t, "Physics", result.Groups[0].Subject)
	assert.Empty(t, result.Lessons)
	assert.Zero(t, result.Report.PlacedLessons)
}

func TestSessionCountsSplitSubjectsOnce(t *testing.T) {
	model := &models.DomainModel{
		Teachers: []models.Teacher{
			{ID: "t-1", Subjects: []string{"Physics"}, DaysAvailable: allWeek()},
		},
		Students: electiveStudents("s", 130, "c-1", "Physics"),
	}

	result, err := NewSession(model, Config{MaxGroupSize: 60}, nil).RunUntil(context.Background(), PhaseGroups)
	require.NoError(t, err)

	// One subject split three ways counts once.
	require.Len(t, result.Groups, 3)
	assert.Equal(t, 1, result.Report.SplitGroups)
}

func TestSessionRunUntilPlaceSkipsOptimizer(t *testing.T) {
	result, err := NewSession(phasedModel(), Config{}, nil).RunUntil(context.Background(), PhasePlace)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Lessons)
	assert.Zero(t, result.Report.OptimizerIterations)
	assert.Zero(t, result.Report.AcceptedSwaps)
	assert.Equal(t, result.Report.InitialGaps, result.Report.FinalGaps)
}

func TestSessionFullRunMatchesPlacedCount(t *testing.T) {
	placed, err := NewSession(phasedModel(), Config{}, nil).RunUntil(context.Background(), PhasePlace)
	require.NoError(t, err)
	full, err := NewSession(phasedModel(), Config{}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(placed.Lessons), len(full.Lessons))
	assert.LessOrEqual(t, full.Report.FinalGaps, full.Report.InitialGaps)
}
