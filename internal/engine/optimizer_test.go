package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusched/timetable-api/internal/models"
)

func optimizerModel() *models.DomainModel {
	model := &models.DomainModel{
		Teachers: []models.Teacher{
			{ID: "t-1", DaysAvailable: allWeek()},
			{ID: "t-2", DaysAvailable: allWeek()},
		},
	}
	model.BuildIndexes()
	return model
}

func TestOptimizerClosesWindows(t *testing.T) {
	model := optimizerModel()
	s := NewSchedule()
	require.NoError(t, s.Place(fillerLesson("l-1", "t-1", "c-1", 1, 1)))
	require.NoError(t, s.Place(fillerLesson("l-2", "t-1", "c-1", 1, 3)))
	require.NoError(t, s.Place(fillerLesson("l-3", "t-2", "c-2", 1, 2)))

	initial := s.TotalGaps()
	require.Equal(t, 2, initial)

	accepted, iterations, err := NewLocalOptimizer(model, s, 100, nil).Optimize(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, accepted, 1)
	assert.Greater(t, iterations, 0)
	assert.Equal(t, 0, s.TotalGaps())
	require.NoError(t, NewConflictValidator(model).Validate(s.Lessons))
}

func TestOptimizerNeverIncreasesGaps(t *testing.T) {
	model := optimizerModel()
	s := NewSchedule()
	require.NoError(t, s.Place(fillerLesson("l-1", "t-1", "c-1", 1, 2)))
	require.NoError(t, s.Place(fillerLesson("l-2", "t-1", "c-1", 1, 5)))
	require.NoError(t, s.Place(fillerLesson("l-3", "t-2", "c-2", 2, 1)))
	require.NoError(t, s.Place(fillerLesson("l-4", "t-2", "c-2", 2, 4)))

	before := s.TotalGaps()
	_, _, err := NewLocalOptimizer(model, s, 100, nil).Optimize(context.Background())
	require.NoError(t, err)

	assert.LessOrEqual(t, s.TotalGaps(), before)
}

func TestSwapInverseRestoresAssignments(t *testing.T) {
	model := optimizerModel()
	s := NewSchedule()
	a := fillerLesson("l-1", "t-1", "c-1", 1, 1)
	b := fillerLesson("l-2", "t-2", "c-2", 2, 3)
	require.NoError(t, s.Place(a))
	require.NoError(t, s.Place(b))

	slotA, slotB := a.TimeSlot, b.TimeSlot

	// currentGaps of zero can never strictly improve, so the tentative
	// swap must revert through its inverse.
	o := NewLocalOptimizer(model, s, 100, nil)
	accepted, _, err := o.trySwap(a, b, 0)
	require.NoError(t, err)
	assert.False(t, accepted)

	assert.Equal(t, slotA, a.TimeSlot)
	assert.Equal(t, slotB, b.TimeSlot)

	holder, ok := s.Index.Occupant(ResourceTeacher, "t-1", slotA)
	require.True(t, ok)
	assert.Equal(t, "l-1", holder)
	holder, ok = s.Index.Occupant(ResourceTeacher, "t-2", slotB)
	require.True(t, ok)
	assert.Equal(t, "l-2", holder)
}

func TestOptimizerRespectsIterationBudget(t *testing.T) {
	model := optimizerModel()
	s := NewSchedule()
	require.NoError(t, s.Place(fillerLesson("l-1", "t-1", "c-1", 1, 1)))
	require.NoError(t, s.Place(fillerLesson("l-2", "t-1", "c-1", 1, 3)))
	require.NoError(t, s.Place(fillerLesson("l-3", "t-2", "c-2", 1, 2)))

	_, iterations, err := NewLocalOptimizer(model, s, 1, nil).Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, iterations)
}

func TestOptimizerStopsOnCancelledContext(t *testing.T) {
	model := optimizerModel()
	s := NewSchedule()
	require.NoError(t, s.Place(fillerLesson("l-1", "t-1", "c-1", 1, 1)))
	require.NoError(t, s.Place(fillerLesson("l-2", "t-1", "c-1", 1, 3)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	accepted, iterations, err := NewLocalOptimizer(model, s, 100, nil).Optimize(ctx)
	require.NoError(t, err)
	assert.Zero(t, accepted)
	assert.Zero(t, iterations)
}

func TestOptimizerSkipsPracticePairSwaps(t *testing.T) {
	model := optimizerModel()
	s := NewSchedule()
	a := fillerLesson("l-1", "t-1", "g-1", 1, 1)
	a.IsPracticeGroup = true
	b := fillerLesson("l-2", "t-2", "g-2", 1, 3)
	b.IsPracticeGroup = true
	require.NoError(t, s.Place(a))
	require.NoError(t, s.Place(b))

	_, iterations, err := NewLocalOptimizer(model, s, 100, nil).Optimize(context.Background())
	require.NoError(t, err)
	assert.Zero(t, iterations)
}
