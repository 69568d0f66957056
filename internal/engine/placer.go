package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edusched/timetable-api/internal/models"
)

// Placer turns demands into concrete lesson placements. Practice groups are
// placed first into a shared reserved band; mandatory subjects then fill the
// remaining grid via ranked candidate search.
type Placer struct {
	model    *models.DomainModel
	schedule *Schedule
	report   *Report
	logger   *zap.Logger

	prioritySet        map[string]bool
	electiveDailyLimit int

	// reserved marks the elective band; mandatory candidates never use it.
	reserved map[models.TimeSlot]bool
	// classDayLoad tracks placed lessons per school class per day for the
	// load-balancing penalty.
	classDayLoad map[string]map[int]int
}

// NewPlacer wires a placer over the given schedule and report accumulator.
func NewPlacer(model *models.DomainModel, schedule *Schedule, report *Report, prioritySubjects []string, electiveDailyLimit int, logger *zap.Logger) *Placer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if electiveDailyLimit <= 0 {
		electiveDailyLimit = 2
	}
	prioritySet := make(map[string]bool, len(prioritySubjects))
	for _, name := range prioritySubjects {
		prioritySet[canonicalSubjectName(name)] = true
	}
	return &Placer{
		model:              model,
		schedule:           schedule,
		report:             report,
		logger:             logger,
		prioritySet:        prioritySet,
		electiveDailyLimit: electiveDailyLimit,
		reserved:           make(map[models.TimeSlot]bool),
		classDayLoad:       make(map[string]map[int]int),
	}
}

func (p *Placer) bumpClassLoad(classID string, day int) {
	if p.classDayLoad[classID] == nil {
		p.classDayLoad[classID] = make(map[int]int)
	}
	p.classDayLoad[classID][day]++
	if p.report.DayLoad == nil {
		p.report.DayLoad = make(map[int]int)
	}
	p.report.DayLoad[day]++
}

// --- Phase 1: practice groups ---

// reserveBand scores every grid slot for the shared elective band and picks
// the best ones, at most electiveDailyLimit per day. The band is sized to
// the largest weekly demand among the placeable groups so every group fits
// inside it. No reservation happens when every group lacks a teacher, so the
// slots stay open for mandatory placement.
func (p *Placer) reserveBand(groups []models.PracticeGroup) []models.TimeSlot {
	bandSize := 0
	teacherIDs := make([]string, 0, len(groups))
	for _, g := range groups {
		if g.TeacherID == "" {
			continue
		}
		if g.HoursPerWeek > bandSize {
			bandSize = g.HoursPerWeek
		}
		teacherIDs = append(teacherIDs, g.TeacherID)
	}
	if bandSize == 0 {
		return nil
	}

	type scoredSlot struct {
		slot  models.TimeSlot
		score int
	}
	scored := make([]scoredSlot, 0, models.DaysPerWeek*models.LessonsPerDay)
	for _, slot := range models.AllSlots() {
		score := 0
		switch {
		case slot.LessonNumber == 1:
			score -= 30
		case slot.LessonNumber == models.LessonsPerDay:
			score -= 20
		case slot.LessonNumber >= 2 && slot.LessonNumber <= 4:
			score += 20
		}
		if len(teacherIDs) > 0 {
			available := 0
			for _, id := range teacherIDs {
				if t := p.model.TeacherByID(id); t != nil && t.AvailableOn(slot.Day) {
					available++
				}
			}
			score += available * 20 / len(teacherIDs)
		}
		scored = append(scored, scoredSlot{slot: slot, score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].slot.Before(scored[j].slot)
	})

	band := make([]models.TimeSlot, 0, bandSize)
	perDay := make(map[int]int)
	for _, candidate := range scored {
		if len(band) == bandSize {
			break
		}
		if perDay[candidate.slot.Day] >= p.electiveDailyLimit {
			continue
		}
		band = append(band, candidate.slot)
		perDay[candidate.slot.Day]++
		p.reserved[candidate.slot] = true
	}
	sort.Slice(band, func(i, j int) bool { return band[i].Before(band[j]) })
	return band
}

// PlacePractices reserves the elective band and places every resolvable
// practice group inside it. Groups without a teacher are skipped; they were
// already reported by group formation.
func (p *Placer) PlacePractices(groups []models.PracticeGroup) error {
	band := p.reserveBand(groups)
	if len(band) == 0 {
		return nil
	}
	p.logger.Debug("elective band reserved", zap.Int("slots", len(band)))

	for gi := range groups {
		group := &groups[gi]
		if group.TeacherID == "" {
			continue
		}
		teacher := p.model.TeacherByID(group.TeacherID)
		if teacher == nil {
			continue
		}

		var placed []*models.Lesson
		for _, slot := range band {
			if len(placed) == group.HoursPerWeek {
				break
			}
			if !teacher.AvailableOn(slot.Day) {
				continue
			}
			if !p.schedule.Index.IsFree(ResourceTeacher, group.TeacherID, slot) {
				continue
			}
			if !p.schedule.Index.IsFree(ResourceClassGroup, group.ID, slot) {
				continue
			}
			primary, extras, overflow, ok := p.findClassroom(teacher, slot, group.Size())
			if !ok {
				continue
			}
			lesson := &models.Lesson{
				ID:              uuid.NewString(),
				Subject:         group.Subject,
				TeacherID:       group.TeacherID,
				ClassOrGroupID:  group.ID,
				ClassGroupIDs:   []string{group.ID},
				ClassroomID:     primary,
				ExtraClassrooms: extras,
				TimeSlot:        slot,
				IsPracticeGroup: true,
				RosterIDs:       group.StudentIDs,
			}
			if err := p.schedule.Place(lesson); err != nil {
				return err
			}
			if overflow {
				p.report.warn(Warning{
					Kind:    WarningCapacityOverflow,
					Subject: group.Subject,
					GroupID: group.ID,
					Message: fmt.Sprintf("roster of %d exceeds any single classroom; %d rooms allotted", group.Size(), 1+len(extras)),
				})
			}
			placed = append(placed, lesson)
			p.report.PlacedLessons++
		}

		if deficit := group.HoursPerWeek - len(placed); deficit > 0 {
			p.report.warn(Warning{
				Kind:     WarningUnplaceableLesson,
				Subject:  group.Subject,
				GroupID:  group.ID,
				Message:  fmt.Sprintf("placed %d of %d weekly hours", len(placed), group.HoursPerWeek),
				Placed:   len(placed),
				Required: group.HoursPerWeek,
			})
			for _, lesson := range placed {
				lesson.UnsatisfiedHours = deficit
			}
		}
	}
	return nil
}

// --- Phase 2: mandatory subjects ---

type demand struct {
	subject   string
	teacherID string
	classID   string
	roster    []string
	hours     int
	priority  bool
	enum      int

	lessons  []*models.Lesson
	usedDays map[int]bool
}

func (p *Placer) buildMandatoryDemands() []*demand {
	var demands []*demand
	enum := 0
	for i := range p.model.Subjects {
		subject := &p.model.Subjects[i]
		if subject.Type != models.SubjectTypeMandatory {
			continue
		}
		for _, classID := range subject.ClassIDs {
			class := p.model.ClassByID(classID)
			if class == nil {
				continue
			}
			demands = append(demands, &demand{
				subject:   subject.Name,
				teacherID: subject.TeacherID,
				classID:   classID,
				roster:    class.StudentIDs,
				hours:     subject.HoursPerWeek,
				priority:  p.prioritySet[canonicalSubjectName(subject.Name)],
				enum:      enum,
				usedDays:  make(map[int]bool),
			})
			enum++
		}
	}
	sort.SliceStable(demands, func(i, j int) bool {
		if demands[i].hours != demands[j].hours {
			return demands[i].hours > demands[j].hours
		}
		if demands[i].priority != demands[j].priority {
			return demands[i].priority
		}
		return demands[i].enum < demands[j].enum
	})
	return demands
}

// scoreCandidate applies the placement heuristic: mid-morning bonus for
// priority subjects, first and last lesson penalties, and a load-balancing
// penalty on the class's existing day load.
func (p *Placer) scoreCandidate(d *demand, slot models.TimeSlot) int {
	score := 100
	if d.priority {
		if slot.LessonNumber >= 2 && slot.LessonNumber <= 4 {
			score += 30
		} else {
			score -= 30
		}
	}
	if slot.LessonNumber == 1 {
		score -= 10
	}
	if slot.LessonNumber == models.LessonsPerDay {
		score -= 15
	}
	score -= 2 * p.classDayLoad[d.classID][slot.Day]
	return score
}

// candidates lists legal slots for the demand, best first. Reserved band
// slots are excluded up front; classroom availability is checked later, at
// acceptance time.
func (p *Placer) candidates(d *demand, teacher *models.Teacher) []models.TimeSlot {
	type scoredSlot struct {
		slot  models.TimeSlot
		score int
	}
	var unusedDay, usedDay []scoredSlot
	for _, slot := range models.AllSlots() {
		if p.reserved[slot] {
			continue
		}
		if !teacher.AvailableOn(slot.Day) {
			continue
		}
		if !p.schedule.Index.IsFree(ResourceTeacher, d.teacherID, slot) {
			continue
		}
		if !p.schedule.Index.IsFree(ResourceClassGroup, d.classID, slot) {
			continue
		}
		entry := scoredSlot{slot: slot, score: p.scoreCandidate(d, slot)}
		if d.usedDays[slot.Day] {
			usedDay = append(usedDay, entry)
		} else {
			unusedDay = append(unusedDay, entry)
		}
	}
	byScore := func(list []scoredSlot) {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].score != list[j].score {
				return list[i].score > list[j].score
			}
			return list[i].slot.Before(list[j].slot)
		})
	}
	byScore(unusedDay)
	byScore(usedDay)

	// Spread over fresh days first; fall back to reusing a day only when
	// no untouched day has a legal slot.
	ordered := make([]models.TimeSlot, 0, len(unusedDay)+len(usedDay))
	for _, entry := range unusedDay {
		ordered = append(ordered, entry.slot)
	}
	for _, entry := range usedDay {
		ordered = append(ordered, entry.slot)
	}
	return ordered
}

// PlaceMandatory schedules every mandatory subject demand, most constrained
// first. Shortfalls are reported, never fatal.
func (p *Placer) PlaceMandatory() error {
	for _, d := range p.buildMandatoryDemands() {
		teacher := p.model.TeacherByID(d.teacherID)
		if teacher == nil {
			p.report.warn(Warning{
				Kind:     WarningUnplaceableLesson,
				Subject:  d.subject,
				GroupID:  d.classID,
				Message:  fmt.Sprintf("teacher %q not found; demand skipped", d.teacherID),
				Placed:   0,
				Required: d.hours,
			})
			continue
		}

		for len(d.lessons) < d.hours {
			lesson, err := p.placeOne(d, teacher)
			if err != nil {
				return err
			}
			if lesson == nil {
				break
			}
			d.lessons = append(d.lessons, lesson)
		}

		if deficit := d.hours - len(d.lessons); deficit > 0 {
			p.report.warn(Warning{
				Kind:     WarningUnplaceableLesson,
				Subject:  d.subject,
				GroupID:  d.classID,
				Message:  fmt.Sprintf("placed %d of %d weekly hours", len(d.lessons), d.hours),
				Placed:   len(d.lessons),
				Required: d.hours,
			})
			for _, lesson := range d.lessons {
				lesson.UnsatisfiedHours = deficit
			}
		}
	}
	return nil
}

// placeOne consumes the best candidate slot that also has a workable
// classroom. Returns nil without error when no candidate fits.
func (p *Placer) placeOne(d *demand, teacher *models.Teacher) (*models.Lesson, error) {
	for _, slot := range p.candidates(d, teacher) {
		primary, extras, overflow, ok := p.findClassroom(teacher, slot, len(d.roster))
		if !ok {
			continue
		}
		lesson := &models.Lesson{
			ID:              uuid.NewString(),
			Subject:         d.subject,
			TeacherID:       d.teacherID,
			ClassOrGroupID:  d.classID,
			ClassGroupIDs:   []string{d.classID},
			ClassroomID:     primary,
			ExtraClassrooms: extras,
			TimeSlot:        slot,
			RosterIDs:       d.roster,
		}
		if err := p.schedule.Place(lesson); err != nil {
			return nil, err
		}
		if overflow {
			p.report.warn(Warning{
				Kind:    WarningCapacityOverflow,
				Subject: d.subject,
				GroupID: d.classID,
				Message: fmt.Sprintf("roster of %d exceeds any single classroom; %d rooms allotted", len(d.roster), 1+len(extras)),
			})
		}
		d.usedDays[slot.Day] = true
		p.bumpClassLoad(d.classID, slot.Day)
		p.report.PlacedLessons++
		return lesson, nil
	}
	return nil, nil
}

// --- Classroom selection ---

// findClassroom prefers the teacher's home classroom, then the smallest free
// room that fits, then a multi-room allocation whose combined capacity
// covers the roster. ok is false when no allocation can seat everyone.
func (p *Placer) findClassroom(teacher *models.Teacher, slot models.TimeSlot, need int) (primary *string, extras []string, overflow bool, ok bool) {
	free := p.freeClassrooms(slot)
	if len(free) == 0 {
		return nil, nil, false, false
	}

	if teacher.HomeClassroom != "" {
		for _, room := range free {
			if room.ID == teacher.HomeClassroom && room.Capacity >= need {
				id := room.ID
				return &id, nil, false, true
			}
		}
	}

	// free is sorted by capacity ascending, so the first fit is the
	// smallest adequate room.
	for _, room := range free {
		if room.Capacity >= need {
			id := room.ID
			return &id, nil, false, true
		}
	}

	// Multi-room fallback: largest rooms first until the roster is seated.
	total := 0
	var chosen []models.Classroom
	for i := len(free) - 1; i >= 0; i-- {
		chosen = append(chosen, free[i])
		total += free[i].Capacity
		if total >= need {
			break
		}
	}
	if total < need {
		return nil, nil, false, false
	}
	id := chosen[0].ID
	rest := make([]string, 0, len(chosen)-1)
	for _, room := range chosen[1:] {
		rest = append(rest, room.ID)
	}
	return &id, rest, true, true
}

// freeClassrooms lists rooms unoccupied at the slot, capacity ascending with
// id tie-break for determinism.
func (p *Placer) freeClassrooms(slot models.TimeSlot) []models.Classroom {
	var free []models.Classroom
	for i := range p.model.Classrooms {
		room := p.model.Classrooms[i]
		if p.schedule.Index.IsFree(ResourceClassroom, room.ID, slot) {
			free = append(free, room)
		}
	}
	sort.Slice(free, func(i, j int) bool {
		if free[i].Capacity != free[j].Capacity {
			return free[i].Capacity < free[j].Capacity
		}
		return free[i].ID < free[j].ID
	})
	return free
}
