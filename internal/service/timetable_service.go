package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/edusched/timetable-api/internal/dto"
	"github.com/edusched/timetable-api/internal/engine"
	"github.com/edusched/timetable-api/internal/models"
	"github.com/edusched/timetable-api/pkg/config"
	appErrors "github.com/edusched/timetable-api/pkg/errors"
)

type timetableRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	ListByLabel(ctx context.Context, label string) ([]models.Timetable, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus, meta types.JSONText) error
}

type timetableLessonRepository interface {
	UpsertBatch(ctx context.Context, exec sqlx.ExtContext, lessons []models.TimetableLesson) error
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableLesson, error)
}

type proposalCache interface {
	GetProposal(ctx context.Context, id string, dest interface{}) error
	SetProposal(ctx context.Context, id string, value interface{}, ttl time.Duration) error
	DeleteProposal(ctx context.Context, id string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type engineRecorder interface {
	ObserveEngineRun(phase string, duration time.Duration)
	RecordEngineResult(placed, acceptedSwaps int)
	RecordEngineWarning(kind string)
}

// Proposal is a generated schedule awaiting review. It lives in memory with a
// TTL and is mirrored to Redis so a restart does not lose in-flight work.
type Proposal struct {
	ID        string         `json:"id"`
	Label     string         `json:"label"`
	Result    *engine.Result `json:"result"`
	CreatedAt time.Time      `json:"createdAt"`
}

type proposalEntry struct {
	proposal  *Proposal
	expiresAt time.Time
}

// TimetableService orchestrates schedule generation and the versioned
// persistence of accepted proposals.
type TimetableService struct {
	repo       timetableRepository
	lessonRepo timetableLessonRepository
	cache      proposalCache
	tx         txProvider
	metrics    engineRecorder
	cfg        config.SchedulerConfig
	validate   *validator.Validate
	logger     *zap.Logger

	mu        sync.RWMutex
	proposals map[string]proposalEntry
}

// NewTimetableService wires the service. Cache, tx provider and metrics may
// be nil; the service degrades gracefully without them.
func NewTimetableService(
	repo timetableRepository,
	lessonRepo timetableLessonRepository,
	cache proposalCache,
	tx txProvider,
	metrics engineRecorder,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	return &TimetableService{
		repo:       repo,
		lessonRepo: lessonRepo,
		cache:      cache,
		tx:         tx,
		metrics:    metrics,
		cfg:        cfg,
		validate:   validator.New(),
		logger:     logger,
		proposals:  make(map[string]proposalEntry),
	}
}

func (s *TimetableService) engineConfig(opts dto.GenerateOptions) engine.Config {
	cfg := engine.Config{
		MaxGroupSize:       s.cfg.MaxGroupSize,
		MaxIterations:      s.cfg.MaxIterations,
		ElectiveDailyLimit: s.cfg.ElectiveDailyLimit,
		PrioritySubjects:   s.cfg.PrioritySubjects,
	}
	if opts.MaxGroupSize > 0 {
		cfg.MaxGroupSize = opts.MaxGroupSize
	}
	if opts.MaxIterations > 0 {
		cfg.MaxIterations = opts.MaxIterations
	}
	if opts.ElectiveDailyLimit > 0 {
		cfg.ElectiveDailyLimit = opts.ElectiveDailyLimit
	}
	if len(opts.PrioritySubjects) > 0 {
		cfg.PrioritySubjects = opts.PrioritySubjects
	}
	return cfg
}

// Generate runs a full scheduling session and stores the outcome as a
// proposal for later saving.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation request")
	}

	start := time.Now()
	session := engine.NewSession(&req.Model, s.engineConfig(req.Options), s.logger)
	result, err := session.Run(ctx)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveEngineRun("full", time.Since(start))
		s.metrics.RecordEngineResult(result.Report.PlacedLessons, result.Report.AcceptedSwaps)
		for _, w := range result.Report.Warnings {
			s.metrics.RecordEngineWarning(string(w.Kind))
		}
	}

	proposal := &Proposal{
		ID:        uuid.NewString(),
		Label:     req.Label,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
	s.storeProposal(proposal)

	if s.cache != nil {
		if err := s.cache.SetProposal(ctx, proposal.ID, proposal, s.cfg.ProposalTTL); err != nil {
			s.logger.Warn("failed to mirror proposal to cache", zap.String("proposal_id", proposal.ID), zap.Error(err))
		}
	}

	return &dto.GenerateTimetableResponse{
		ProposalID: proposal.ID,
		Label:      proposal.Label,
		Lessons:    result.Lessons,
		Groups:     result.Groups,
		Report:     result.Report,
	}, nil
}

func (s *TimetableService) storeProposal(p *Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, entry := range s.proposals {
		if now.After(entry.expiresAt) {
			delete(s.proposals, id)
		}
	}
	s.proposals[p.ID] = proposalEntry{proposal: p, expiresAt: now.Add(s.cfg.ProposalTTL)}
}

func (s *TimetableService) loadProposal(ctx context.Context, id string) (*Proposal, error) {
	s.mu.RLock()
	entry, ok := s.proposals[id]
	s.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.proposal, nil
	}

	if s.cache != nil {
		var proposal Proposal
		err := s.cache.GetProposal(ctx, id, &proposal)
		if err == nil {
			return &proposal, nil
		}
		if appErrors.FromError(err).Code != appErrors.ErrCacheMiss.Code {
			s.logger.Warn("proposal cache lookup failed", zap.String("proposal_id", id), zap.Error(err))
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
}

func (s *TimetableService) dropProposal(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.proposals, id)
	s.mu.Unlock()
	if s.cache != nil {
		if err := s.cache.DeleteProposal(ctx, id); err != nil {
			s.logger.Warn("failed to drop mirrored proposal", zap.String("proposal_id", id), zap.Error(err))
		}
	}
}

func lessonRows(timetableID string, lessons []*models.Lesson) ([]models.TimetableLesson, error) {
	rows := make([]models.TimetableLesson, 0, len(lessons))
	for _, l := range lessons {
		roster, err := json.Marshal(l.RosterIDs)
		if err != nil {
			return nil, fmt.Errorf("marshal lesson roster: %w", err)
		}
		rows = append(rows, models.TimetableLesson{
			TimetableID:     timetableID,
			Day:             l.Day,
			LessonNumber:    l.LessonNumber,
			Subject:         l.Subject,
			TeacherID:       l.TeacherID,
			ClassGroupID:    l.ClassOrGroupID,
			ClassroomID:     l.ClassroomID,
			IsPracticeGroup: l.IsPracticeGroup,
			Roster:          types.JSONText(roster),
		})
	}
	return rows, nil
}

// Save persists a proposal as the next timetable version for its label,
// optionally publishing it in the same transaction.
func (s *TimetableService) Save(ctx context.Context, req dto.SaveTimetableRequest) (*models.Timetable, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save request")
	}

	proposal, err := s.loadProposal(ctx, req.ProposalID)
	if err != nil {
		return nil, err
	}

	meta, err := json.Marshal(models.TimetableMeta{
		PlacedLessons:   proposal.Result.Report.PlacedLessons,
		UnplacedLessons: proposal.Result.Report.UnplacedLessons,
		InitialGaps:     proposal.Result.Report.InitialGaps,
		FinalGaps:       proposal.Result.Report.FinalGaps,
		AcceptedSwaps:   proposal.Result.Report.AcceptedSwaps,
		Warnings:        len(proposal.Result.Report.Warnings),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal timetable meta: %w", err)
	}

	timetable := &models.Timetable{
		Label: proposal.Label,
		Meta:  types.JSONText(meta),
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.repo.CreateVersioned(ctx, tx, timetable); err != nil {
		return nil, err
	}

	rows, err := lessonRows(timetable.ID, proposal.Result.Lessons)
	if err != nil {
		return nil, err
	}
	if err := s.lessonRepo.UpsertBatch(ctx, tx, rows); err != nil {
		return nil, err
	}

	if req.Publish {
		if err := s.repo.UpdateStatus(ctx, tx, timetable.ID, models.TimetableStatusPublished, nil); err != nil {
			return nil, err
		}
		timetable.Status = models.TimetableStatusPublished
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save transaction: %w", err)
	}

	s.dropProposal(ctx, req.ProposalID)
	s.logger.Info("timetable saved",
		zap.String("timetable_id", timetable.ID),
		zap.String("label", timetable.Label),
		zap.Int("version", timetable.Version),
		zap.Int("lessons", len(rows)),
	)
	return timetable, nil
}

// List returns every stored version for a label, newest first.
func (s *TimetableService) List(ctx context.Context, label string) ([]models.Timetable, error) {
	if label == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "label is required")
	}
	return s.repo.ListByLabel(ctx, label)
}

// Get loads one stored timetable.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.Timetable, error) {
	timetable, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, fmt.Errorf("find timetable: %w", err)
	}
	return timetable, nil
}

// GetLessons loads a stored timetable together with its lesson rows.
func (s *TimetableService) GetLessons(ctx context.Context, id string) (*models.Timetable, []models.TimetableLesson, error) {
	timetable, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	lessons, err := s.lessonRepo.ListByTimetable(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return timetable, lessons, nil
}

// Delete removes a draft timetable. Published versions are immutable.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	timetable, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if timetable.Status == models.TimetableStatusPublished {
		return appErrors.Clone(appErrors.ErrConflict, "published timetables cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return err
	}
	return nil
}
