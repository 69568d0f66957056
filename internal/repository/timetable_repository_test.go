package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusched/timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM timetables WHERE label = $1")).
		WithArgs("grade-11").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WithArgs(sqlmock.AnyArg(), "grade-11", 3, string(models.TimetableStatusDraft), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	payload := &models.Timetable{
		Label: "grade-11",
		Meta:  types.JSONText(`{"final_gaps":2}`),
	}
	err := repo.CreateVersioned(context.Background(), nil, payload)
	require.NoError(t, err)
	assert.Equal(t, 3, payload.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListByLabel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "label", "version", "status", "meta", "created_at", "updated_at"}).
		AddRow("tt-1", "grade-11", 1, string(models.TimetableStatusDraft), types.JSONText(`{}`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, label, version, status, meta, created_at, updated_at\nFROM timetables WHERE label = $1 ORDER BY version DESC")).
		WithArgs("grade-11").
		WillReturnRows(rows)

	list, err := repo.ListByLabel(context.Background(), "grade-11")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables WHERE id = $1")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(1, 0))

	err := repo.Delete(context.Background(), "tt-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(string(models.TimetableStatusPublished), sqlmock.AnyArg(), "tt-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpdateStatus(context.Background(), nil, "tt-1", models.TimetableStatusPublished, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableLessonRepositoryUpsertBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableLessonRepository(db)

	room := "r-1"
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_lessons")).
		WithArgs(sqlmock.AnyArg(), "tt-1", 1, 2, "Mathematics", "t-1", "c-1", "r-1", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	lessons := []models.TimetableLesson{
		{
			TimetableID:  "tt-1",
			Day:          1,
			LessonNumber: 2,
			Subject:      "Mathematics",
			TeacherID:    "t-1",
			ClassGroupID: "c-1",
			ClassroomID:  &room,
			Roster:       types.JSONText(`["s-1"]`),
		},
	}
	require.NoError(t, repo.UpsertBatch(context.Background(), nil, lessons))
	assert.NotEmpty(t, lessons[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableLessonRepositoryListByTimetable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableLessonRepository(db)

	rows := sqlmock.NewRows([]string{"id", "timetable_id", "day", "lesson_number", "subject", "teacher_id", "class_group_id", "classroom_id", "is_practice_group", "roster", "created_at"}).
		AddRow("tl-1", "tt-1", 1, 2, "Mathematics", "t-1", "c-1", nil, false, types.JSONText(`[]`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_lessons WHERE timetable_id = $1 ORDER BY day ASC, lesson_number ASC, class_group_id ASC")).
		WithArgs("tt-1").
		WillReturnRows(rows)

	lessons, err := repo.ListByTimetable(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
