package dto

import (
	"github.com/edusched/timetable-api/internal/engine"
	"github.com/edusched/timetable-api/internal/models"
)

// GenerateOptions tunes a single engine run. Zero values fall back to the
// configured defaults.
type GenerateOptions struct {
	MaxGroupSize       int      `json:"maxGroupSize" validate:"omitempty,min=1"`
	MaxIterations      int      `json:"maxIterations" validate:"omitempty,min=1"`
	ElectiveDailyLimit int      `json:"electiveDailyLimit" validate:"omitempty,min=1"`
	PrioritySubjects   []string `json:"prioritySubjects"`
}

// GenerateTimetableRequest carries the full domain payload for one run.
type GenerateTimetableRequest struct {
	Label   string             `json:"label" validate:"required"`
	Model   models.DomainModel `json:"model" validate:"required"`
	Options GenerateOptions    `json:"options"`
}

// GenerateTimetableResponse returns the built proposal.
type GenerateTimetableResponse struct {
	ProposalID string                 `json:"proposalId"`
	Label      string                 `json:"label"`
	Lessons    []*models.Lesson       `json:"lessons"`
	Groups     []models.PracticeGroup `json:"groups"`
	Report     engine.Report          `json:"report"`
}

// SaveTimetableRequest persists a proposal as a timetable version.
type SaveTimetableRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Publish    bool   `json:"publish"`
}

// TimetableQuery filters stored timetable versions.
type TimetableQuery struct {
	Label string `form:"label" validate:"required"`
}
