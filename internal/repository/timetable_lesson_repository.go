package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edusched/timetable-api/internal/models"
)

// TimetableLessonRepository manages lesson rows for saved timetables.
type TimetableLessonRepository struct {
	db *sqlx.DB
}

// NewTimetableLessonRepository builds repository.
func NewTimetableLessonRepository(db *sqlx.DB) *TimetableLessonRepository {
	return &TimetableLessonRepository{db: db}
}

func (r *TimetableLessonRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// UpsertBatch inserts or updates lesson rows for a timetable.
func (r *TimetableLessonRepository) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, lessons []models.TimetableLesson) error {
	if len(lessons) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO timetable_lessons (id, timetable_id, day, lesson_number, subject, teacher_id, class_group_id, classroom_id, is_practice_group, roster, created_at)
VALUES (:id, :timetable_id, :day, :lesson_number, :subject, :teacher_id, :class_group_id, :classroom_id, :is_practice_group, :roster, :created_at)
ON CONFLICT (timetable_id, day, lesson_number, class_group_id) DO UPDATE
SET subject = EXCLUDED.subject,
    teacher_id = EXCLUDED.teacher_id,
    classroom_id = EXCLUDED.classroom_id,
    is_practice_group = EXCLUDED.is_practice_group,
    roster = EXCLUDED.roster`

	for i := range lessons {
		lesson := &lessons[i]
		if lesson.ID == "" {
			lesson.ID = uuid.NewString()
		}
		if lesson.CreatedAt.IsZero() {
			lesson.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, lesson); err != nil {
			return fmt.Errorf("upsert timetable lesson: %w", err)
		}
	}
	return nil
}

// ListByTimetable returns lessons ordered by slot for a timetable.
func (r *TimetableLessonRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableLesson, error) {
	const query = `SELECT id, timetable_id, day, lesson_number, subject, teacher_id, class_group_id, classroom_id, is_practice_group, roster, created_at
FROM timetable_lessons WHERE timetable_id = $1 ORDER BY day ASC, lesson_number ASC, class_group_id ASC`
	var lessons []models.TimetableLesson
	if err := r.db.SelectContext(ctx, &lessons, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable lessons: %w", err)
	}
	return lessons, nil
}
