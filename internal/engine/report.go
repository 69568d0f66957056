package engine

// WarningKind classifies non-fatal conditions accumulated during a run.
type WarningKind string

const (
	WarningUnresolvedTeacher WarningKind = "UNRESOLVED_TEACHER"
	WarningCapacityOverflow  WarningKind = "CAPACITY_OVERFLOW"
	WarningUnplaceableLesson WarningKind = "UNPLACEABLE_LESSON"
)

// Warning is a single reportable condition. Placed/Required carry the
// fulfillment counts for unplaceable-lesson warnings.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	Subject  string      `json:"subject,omitempty"`
	GroupID  string      `json:"group_id,omitempty"`
	Message  string      `json:"message"`
	Placed   int         `json:"placed,omitempty"`
	Required int         `json:"required,omitempty"`
}

// Report is the structured run summary returned alongside the schedule.
// Non-fatal conditions accumulate here; only consistency violations abort.
type Report struct {
	UnresolvedTeacherGroups int         `json:"unresolved_teacher_groups"`
	SplitGroups             int         `json:"split_groups"`
	CapacityOverflows       int         `json:"capacity_overflows"`
	UnplacedLessons         int         `json:"unplaced_lessons"`
	PlacedLessons           int         `json:"placed_lessons"`
	InitialGaps             int         `json:"initial_gaps"`
	FinalGaps               int         `json:"final_gaps"`
	AcceptedSwaps           int         `json:"accepted_swaps"`
	OptimizerIterations     int         `json:"optimizer_iterations"`
	DayLoad                 map[int]int `json:"day_load"`
	TopGapOwners            []GapOwner  `json:"top_gap_owners,omitempty"`
	Warnings                []Warning   `json:"warnings,omitempty"`
}

func (r *Report) warn(w Warning) {
	r.Warnings = append(r.Warnings, w)
	switch w.Kind {
	case WarningUnresolvedTeacher:
		r.UnresolvedTeacherGroups++
	case WarningCapacityOverflow:
		r.CapacityOverflows++
	case WarningUnplaceableLesson:
		r.UnplacedLessons += w.Required - w.Placed
	}
}
