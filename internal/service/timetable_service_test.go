package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusched/timetable-api/internal/dto"
	"github.com/edusched/timetable-api/internal/models"
	"github.com/edusched/timetable-api/pkg/config"
	appErrors "github.com/edusched/timetable-api/pkg/errors"
)

type stubTimetableRepo struct {
	created       *models.Timetable
	byID          map[string]*models.Timetable
	listed        []models.Timetable
	deletedIDs    []string
	statusUpdates []models.TimetableStatus
}

func (s *stubTimetableRepo) CreateVersioned(_ context.Context, _ sqlx.ExtContext, t *models.Timetable) error {
	t.ID = "tt-created"
	t.Version = 1
	if t.Status == "" {
		t.Status = models.TimetableStatusDraft
	}
	s.created = t
	return nil
}

func (s *stubTimetableRepo) ListByLabel(context.Context, string) ([]models.Timetable, error) {
	return s.listed, nil
}

func (s *stubTimetableRepo) FindByID(_ context.Context, id string) (*models.Timetable, error) {
	t, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (s *stubTimetableRepo) Delete(_ context.Context, id string) error {
	s.deletedIDs = append(s.deletedIDs, id)
	return nil
}

func (s *stubTimetableRepo) UpdateStatus(_ context.Context, _ sqlx.ExtContext, _ string, status models.TimetableStatus, _ types.JSONText) error {
	s.statusUpdates = append(s.statusUpdates, status)
	return nil
}

type stubLessonRepo struct {
	upserted []models.TimetableLesson
	listed   []models.TimetableLesson
}

func (s *stubLessonRepo) UpsertBatch(_ context.Context, _ sqlx.ExtContext, lessons []models.TimetableLesson) error {
	s.upserted = append(s.upserted, lessons...)
	return nil
}

func (s *stubLessonRepo) ListByTimetable(context.Context, string) ([]models.TimetableLesson, error) {
	return s.listed, nil
}

func newTxProvider(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func schedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:            true,
		ProposalTTL:        time.Minute,
		MaxGroupSize:       60,
		MaxIterations:      1000,
		ElectiveDailyLimit: 2,
	}
}

func tinyModel() models.DomainModel {
	return models.DomainModel{
		Teachers: []models.Teacher{
			{ID: "t-1", Name: "Ivanova", Subjects: []string{"Mathematics"}, DaysAvailable: [5]bool{true, true, true, true, true}},
		},
		Classrooms: []models.Classroom{
			{ID: "r-1", Capacity: 30},
		},
		Classes: []models.SchoolClass{
			{ID: "c-1", StudentIDs: []string{"s-1", "s-2"}},
		},
		Students: []models.Student{
			{ID: "s-1", ClassID: "c-1"},
			{ID: "s-2", ClassID: "c-1"},
		},
		Subjects: []models.Subject{
			{Name: "Mathematics", Type: models.SubjectTypeMandatory, HoursPerWeek: 2, TeacherID: "t-1", ClassIDs: []string{"c-1"}},
		},
	}
}

func TestTimetableServiceGenerate(t *testing.T) {
	svc := NewTimetableService(&stubTimetableRepo{}, &stubLessonRepo{}, nil, nil, nil, schedulerConfig(), nil)

	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		Label: "grade-11",
		Model: tinyModel(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ProposalID)
	assert.Equal(t, "grade-11", resp.Label)
	assert.Len(t, resp.Lessons, 2)
	assert.Equal(t, 2, resp.Report.PlacedLessons)
	assert.Zero(t, resp.Report.UnplacedLessons)

	proposal, err := svc.loadProposal(context.Background(), resp.ProposalID)
	require.NoError(t, err)
	assert.Equal(t, "grade-11", proposal.Label)
}

func TestTimetableServiceGenerateValidation(t *testing.T) {
	svc := NewTimetableService(&stubTimetableRepo{}, &stubLessonRepo{}, nil, nil, nil, schedulerConfig(), nil)

	_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{Model: tinyModel()})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceSavePublishes(t *testing.T) {
	db, mock, cleanup := newTxProvider(t)
	defer cleanup()
	repo := &stubTimetableRepo{byID: map[string]*models.Timetable{}}
	lessonRepo := &stubLessonRepo{}
	svc := NewTimetableService(repo, lessonRepo, nil, db, nil, schedulerConfig(), nil)

	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		Label: "grade-11",
		Model: tinyModel(),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	saved, err := svc.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: resp.ProposalID, Publish: true})
	require.NoError(t, err)
	assert.Equal(t, "tt-created", saved.ID)
	assert.Equal(t, models.TimetableStatusPublished, saved.Status)
	assert.Len(t, lessonRepo.upserted, 2)
	assert.Equal(t, []models.TimetableStatus{models.TimetableStatusPublished}, repo.statusUpdates)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Saving consumes the proposal.
	_, err = svc.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: resp.ProposalID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceSaveUnknownProposal(t *testing.T) {
	svc := NewTimetableService(&stubTimetableRepo{}, &stubLessonRepo{}, nil, nil, nil, schedulerConfig(), nil)

	_, err := svc.Save(context.Background(), dto.SaveTimetableRequest{ProposalID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceDeletePublishedRejected(t *testing.T) {
	repo := &stubTimetableRepo{byID: map[string]*models.Timetable{
		"tt-1": {ID: "tt-1", Status: models.TimetableStatusPublished},
	}}
	svc := NewTimetableService(repo, &stubLessonRepo{}, nil, nil, nil, schedulerConfig(), nil)

	err := svc.Delete(context.Background(), "tt-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deletedIDs)
}

func TestTimetableServiceDeleteDraft(t *testing.T) {
	repo := &stubTimetableRepo{byID: map[string]*models.Timetable{
		"tt-1": {ID: "tt-1", Status: models.TimetableStatusDraft},
	}}
	svc := NewTimetableService(repo, &stubLessonRepo{}, nil, nil, nil, schedulerConfig(), nil)

	require.NoError(t, svc.Delete(context.Background(), "tt-1"))
	assert.Equal(t, []string{"tt-1"}, repo.deletedIDs)
}
