package engine

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/edusched/timetable-api/internal/models"
)

// defaultElectiveHours applies when no subject record declares a weekly load
// for an elective chosen by students.
const defaultElectiveHours = 2

// subjectAliases maps normalized spelling variants onto canonical subject
// names. Matching teacher declarations against student choices goes through
// this table; anything unmapped surfaces as a warning, never as a guess.
var subjectAliases = map[string]string{
	"math":           "mathematics",
	"maths":          "mathematics",
	"algebra":        "mathematics",
	"informatics":    "computer science",
	"cs":             "computer science",
	"russian":        "russian language",
	"english":        "english language",
	"literature":     "russian literature",
	"social science": "social studies",
	"society":        "social studies",
	"bio":            "biology",
	"chem":           "chemistry",
	"phys":           "physics",
	"geo":            "geography",
}

// normalizeSubjectName lowercases, trims and collapses interior whitespace.
func normalizeSubjectName(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	return strings.Join(fields, " ")
}

// canonicalSubjectName resolves aliases after normalization.
func canonicalSubjectName(name string) string {
	normalized := normalizeSubjectName(name)
	if canonical, ok := subjectAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// GroupFormation derives elective practice groups from student choices.
type GroupFormation struct {
	maxGroupSize int
	logger       *zap.Logger
}

// NewGroupFormation builds a formation stage. maxGroupSize caps practice
// group rosters; groups above it split into filled subgroups.
func NewGroupFormation(maxGroupSize int, logger *zap.Logger) *GroupFormation {
	if maxGroupSize <= 0 {
		maxGroupSize = 60
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupFormation{maxGroupSize: maxGroupSize, logger: logger}
}

// resolveTeacher finds the first teacher, in model order, whose declared
// subjects match the elective's canonical name. Empty result means
// unresolved; the caller reports it and the group is skipped by placement.
func (f *GroupFormation) resolveTeacher(model *models.DomainModel, subject string) string {
	want := canonicalSubjectName(subject)
	for i := range model.Teachers {
		for _, declared := range model.Teachers[i].Subjects {
			if canonicalSubjectName(declared) == want {
				return model.Teachers[i].ID
			}
		}
	}
	return ""
}

// electiveHours reads the weekly load from the elective's subject record,
// falling back to defaultElectiveHours.
func electiveHours(model *models.DomainModel, subject string) int {
	want := canonicalSubjectName(subject)
	for i := range model.Subjects {
		s := &model.Subjects[i]
		if s.Type == models.SubjectTypeElective && canonicalSubjectName(s.Name) == want {
			if s.HoursPerWeek > 0 {
				return s.HoursPerWeek
			}
		}
	}
	return defaultElectiveHours
}

// Form collects students per chosen elective, resolves each group's teacher
// and splits oversized groups. Canonical names drive the matching; the
// emitted groups keep a display spelling, preferring the subject record's
// over the first student choice. Output order is deterministic: canonical
// subject ascending, then subgroup index.
func (f *GroupFormation) Form(model *models.DomainModel) ([]models.PracticeGroup, []Warning) {
	rosters := make(map[string][]string)
	displayNames := make(map[string]string)
	for i := range model.Students {
		student := &model.Students[i]
		for _, choice := range student.Electives {
			subject := canonicalSubjectName(choice)
			if subject == "" {
				continue
			}
			rosters[subject] = append(rosters[subject], student.ID)
			if _, ok := displayNames[subject]; !ok {
				displayNames[subject] = strings.Join(strings.Fields(strings.TrimSpace(choice)), " ")
			}
		}
	}
	for i := range model.Subjects {
		s := &model.Subjects[i]
		if s.Type != models.SubjectTypeElective {
			continue
		}
		key := canonicalSubjectName(s.Name)
		if _, ok := rosters[key]; ok {
			displayNames[key] = s.Name
		}
	}

	subjects := make([]string, 0, len(rosters))
	for subject := range rosters {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	var groups []models.PracticeGroup
	var warnings []Warning
	for _, subject := range subjects {
		roster := rosters[subject]
		name := displayNames[subject]
		teacherID := f.resolveTeacher(model, subject)
		if teacherID == "" {
			warnings = append(warnings, Warning{
				Kind:    WarningUnresolvedTeacher,
				Subject: name,
				Message: fmt.Sprintf("no teacher declares subject %q; group left unassigned", name),
			})
			f.logger.Warn("unresolved elective teacher", zap.String("subject", name), zap.Int("students", len(roster)))
		}
		hours := electiveHours(model, subject)

		chunks := splitRoster(roster, f.maxGroupSize)
		for idx, chunk := range chunks {
			id := name
			if len(chunks) > 1 {
				id = fmt.Sprintf("%s [%d]", name, idx+1)
			}
			groups = append(groups, models.PracticeGroup{
				ID:           id,
				Subject:      name,
				TeacherID:    teacherID,
				StudentIDs:   chunk,
				HoursPerWeek: hours,
			})
		}
	}
	return groups, warnings
}

// splitRoster cuts the roster into filled chunks of at most max students,
// preserving order. 130 students at max 60 yield 60, 60, 10.
func splitRoster(roster []string, max int) [][]string {
	if len(roster) <= max {
		return [][]string{roster}
	}
	var chunks [][]string
	for start := 0; start < len(roster); start += max {
		end := start + max
		if end > len(roster) {
			end = len(roster)
		}
		chunks = append(chunks, roster[start:end])
	}
	return chunks
}
