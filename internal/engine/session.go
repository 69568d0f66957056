package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/edusched/timetable-api/internal/models"
)

// Config carries the engine knobs for one scheduling session.
type Config struct {
	MaxGroupSize       int
	MaxIterations      int
	ElectiveDailyLimit int
	PrioritySubjects   []string
}

// Result bundles the produced lessons, the practice groups they derive from
// and the structured run report.
type Result struct {
	Lessons []*models.Lesson       `json:"lessons"`
	Groups  []models.PracticeGroup `json:"groups"`
	Report  Report                 `json:"report"`
}

// Phase selects how far a session runs. Batch tooling uses the earlier
// phases to inspect intermediate output.
type Phase int

const (
	PhaseGroups Phase = iota + 1
	PhasePlace
	PhaseOptimize
)

// Session owns one scheduling computation end to end: group formation,
// placement, optimization, validation. All state lives here; nothing is
// ambient or shared between sessions.
type Session struct {
	model  *models.DomainModel
	cfg    Config
	logger *zap.Logger
}

// NewSession prepares a session over the given domain model.
func NewSession(model *models.DomainModel, cfg Config, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{model: model, cfg: cfg, logger: logger}
}

// Run executes the full pipeline and returns a best-effort schedule with its
// report. Only internal consistency violations produce an error.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	return s.RunUntil(ctx, PhaseOptimize)
}

// RunUntil executes the pipeline up to and including the given phase.
func (s *Session) RunUntil(ctx context.Context, phase Phase) (*Result, error) {
	s.model.BuildIndexes()

	report := Report{DayLoad: make(map[int]int)}

	formation := NewGroupFormation(s.cfg.MaxGroupSize, s.logger)
	groups, warnings := formation.Form(s.model)
	for _, w := range warnings {
		report.warn(w)
	}
	splitSubjects := make(map[string]bool)
	for _, g := range groups {
		if g.ID != g.Subject {
			splitSubjects[g.Subject] = true
		}
	}
	report.SplitGroups = len(splitSubjects)
	if phase == PhaseGroups {
		return &Result{Groups: groups, Report: report}, nil
	}

	schedule := NewSchedule()
	placer := NewPlacer(s.model, schedule, &report, s.cfg.PrioritySubjects, s.cfg.ElectiveDailyLimit, s.logger)
	if err := placer.PlacePractices(groups); err != nil {
		return nil, err
	}
	if err := placer.PlaceMandatory(); err != nil {
		return nil, err
	}

	report.InitialGaps = schedule.TotalGaps()
	report.FinalGaps = report.InitialGaps

	if phase >= PhaseOptimize {
		optimizer := NewLocalOptimizer(s.model, schedule, s.cfg.MaxIterations, s.logger)
		accepted, iterations, err := optimizer.Optimize(ctx)
		if err != nil {
			return nil, err
		}
		report.AcceptedSwaps = accepted
		report.OptimizerIterations = iterations
		report.FinalGaps = schedule.TotalGaps()
	}
	report.TopGapOwners = schedule.TopGapOwners(5)

	validator := NewConflictValidator(s.model)
	if err := validator.Validate(schedule.Lessons); err != nil {
		return nil, err
	}

	schedule.SortLessons()
	s.logger.Info("scheduling session complete",
		zap.Int("lessons", len(schedule.Lessons)),
		zap.Int("initial_gaps", report.InitialGaps),
		zap.Int("final_gaps", report.FinalGaps),
		zap.Int("accepted_swaps", report.AcceptedSwaps),
	)

	return &Result{Lessons: schedule.Lessons, Groups: groups, Report: report}, nil
}
