package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/edusched/timetable-api/internal/models"
)

// LocalOptimizer reduces the total window count by swapping pairs of placed
// lessons' slots. It is a bounded local search: the result is locally, not
// globally, optimal.
type LocalOptimizer struct {
	model         *models.DomainModel
	schedule      *Schedule
	maxIterations int
	logger        *zap.Logger
}

// NewLocalOptimizer builds an optimizer over the schedule. maxIterations
// bounds the number of evaluated legal swaps.
func NewLocalOptimizer(model *models.DomainModel, schedule *Schedule, maxIterations int, logger *zap.Logger) *LocalOptimizer {
	if maxIterations <= 0 {
		maxIterations = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalOptimizer{model: model, schedule: schedule, maxIterations: maxIterations, logger: logger}
}

// Optimize runs improvement passes until a full pass yields no accepted
// swap, the iteration budget is exhausted, or the context is cancelled.
// Pairs are enumerated in lesson list index order so runs are reproducible
// without a seed. Only swaps that strictly decrease the gap count are kept;
// everything else is reverted through the inverse swap.
func (o *LocalOptimizer) Optimize(ctx context.Context) (accepted, iterations int, err error) {
	currentGaps := o.schedule.TotalGaps()
	for {
		if ctx.Err() != nil {
			return accepted, iterations, nil
		}
		improved := false
		lessons := o.schedule.Lessons
		for i := 0; i < len(lessons); i++ {
			for j := i + 1; j < len(lessons); j++ {
				if iterations >= o.maxIterations {
					return accepted, iterations, nil
				}
				a, b := lessons[i], lessons[j]
				if a.IsPracticeGroup && b.IsPracticeGroup {
					continue
				}
				if a.TimeSlot == b.TimeSlot {
					continue
				}

				ok, gaps, swapErr := o.trySwap(a, b, currentGaps)
				if swapErr != nil {
					return accepted, iterations, swapErr
				}
				iterations++
				if ok {
					currentGaps = gaps
					accepted++
					improved = true
				}
			}
			if ctx.Err() != nil {
				return accepted, iterations, nil
			}
		}
		if !improved {
			return accepted, iterations, nil
		}
	}
}

// trySwap exchanges the two lessons' slots through the availability index.
// The swap is kept only when it is conflict-free and strictly reduces the
// gap count; otherwise the inverse swap restores the original state.
func (o *LocalOptimizer) trySwap(a, b *models.Lesson, currentGaps int) (bool, int, error) {
	o.schedule.Index.ReleaseLesson(a)
	o.schedule.Index.ReleaseLesson(b)
	a.TimeSlot, b.TimeSlot = b.TimeSlot, a.TimeSlot

	if o.swapLegal(a) && o.swapLegal(b) {
		if gaps := o.schedule.TotalGaps(); gaps < currentGaps {
			if err := o.reoccupy(a, b); err != nil {
				return false, 0, err
			}
			return true, gaps, nil
		}
	}

	a.TimeSlot, b.TimeSlot = b.TimeSlot, a.TimeSlot
	if err := o.reoccupy(a, b); err != nil {
		return false, 0, err
	}
	return false, 0, nil
}

// swapLegal checks the lesson at its tentative slot: the teacher must work
// that day and every resource cell must be free. Both lessons are released
// when this runs, so their own previous occupancy never blocks the check.
func (o *LocalOptimizer) swapLegal(l *models.Lesson) bool {
	if l.TeacherID != "" {
		teacher := o.model.TeacherByID(l.TeacherID)
		if teacher == nil || !teacher.AvailableOn(l.Day) {
			return false
		}
	}
	return o.schedule.Index.LessonFits(l)
}

func (o *LocalOptimizer) reoccupy(a, b *models.Lesson) error {
	if err := o.schedule.Index.OccupyLesson(a); err != nil {
		return err
	}
	if err := o.schedule.Index.OccupyLesson(b); err != nil {
		return err
	}
	return nil
}
