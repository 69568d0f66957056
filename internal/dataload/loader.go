package dataload

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/edusched/timetable-api/internal/models"
	appErrors "github.com/edusched/timetable-api/pkg/errors"
)

// File names expected inside the data directory.
const (
	TeachersFile   = "teachers.csv"
	ClassroomsFile = "classrooms.csv"
	StudentsFile   = "students.csv"
	ClassesFile    = "classes.csv"
	SubjectsFile   = "subjects.csv"
)

type teacherRow struct {
	ID            string `csv:"id" validate:"required"`
	Name          string `csv:"name"`
	Subjects      string `csv:"subjects" validate:"required"`
	HomeClassroom string `csv:"home_classroom"`
	Days          string `csv:"days" validate:"required"`
}

type classroomRow struct {
	ID       string `csv:"id" validate:"required"`
	Capacity int    `csv:"capacity" validate:"gt=0"`
	Floor    int    `csv:"floor"`
}

type studentRow struct {
	ID        string `csv:"id" validate:"required"`
	Name      string `csv:"name"`
	ClassID   string `csv:"class_id" validate:"required"`
	Electives string `csv:"electives"`
}

type classRow struct {
	ID       string `csv:"id" validate:"required"`
	Profile  string `csv:"profile"`
	Students string `csv:"students"`
}

type subjectRow struct {
	Name         string `csv:"name" validate:"required"`
	Type         string `csv:"type" validate:"required,oneof=mandatory elective"`
	HoursPerWeek int    `csv:"hours_per_week" validate:"gte=1"`
	TeacherID    string `csv:"teacher_id"`
	Classes      string `csv:"classes"`
}

// Loader reads the CSV contract into a DomainModel. List-valued cells are
// semicolon separated; teacher days accept Mon..Fri abbreviations or 1..5.
type Loader struct {
	validate *validator.Validate
	logger   *zap.Logger
}

// NewLoader builds a loader.
func NewLoader(validate *validator.Validate, logger *zap.Logger) *Loader {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{validate: validate, logger: logger}
}

// Load parses every CSV file under dir and returns an indexed domain model.
func (l *Loader) Load(dir string) (*models.DomainModel, error) {
	var teachers []teacherRow
	if err := l.readFile(filepath.Join(dir, TeachersFile), &teachers); err != nil {
		return nil, err
	}
	var classrooms []classroomRow
	if err := l.readFile(filepath.Join(dir, ClassroomsFile), &classrooms); err != nil {
		return nil, err
	}
	var students []studentRow
	if err := l.readFile(filepath.Join(dir, StudentsFile), &students); err != nil {
		return nil, err
	}
	var classes []classRow
	if err := l.readFile(filepath.Join(dir, ClassesFile), &classes); err != nil {
		return nil, err
	}
	var subjects []subjectRow
	if err := l.readFile(filepath.Join(dir, SubjectsFile), &subjects); err != nil {
		return nil, err
	}

	model := &models.DomainModel{}
	for i, row := range teachers {
		if err := l.validateRow(TeachersFile, i, row); err != nil {
			return nil, err
		}
		days, err := parseDays(row.Days)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("%s row %d: %v", TeachersFile, i+1, err))
		}
		model.Teachers = append(model.Teachers, models.Teacher{
			ID:            row.ID,
			Name:          row.Name,
			Subjects:      splitList(row.Subjects),
			HomeClassroom: row.HomeClassroom,
			DaysAvailable: days,
		})
	}
	for i, row := range classrooms {
		if err := l.validateRow(ClassroomsFile, i, row); err != nil {
			return nil, err
		}
		model.Classrooms = append(model.Classrooms, models.Classroom{
			ID:       row.ID,
			Capacity: row.Capacity,
			Floor:    row.Floor,
		})
	}
	for i, row := range students {
		if err := l.validateRow(StudentsFile, i, row); err != nil {
			return nil, err
		}
		model.Students = append(model.Students, models.Student{
			ID:        row.ID,
			Name:      row.Name,
			ClassID:   row.ClassID,
			Electives: splitList(row.Electives),
		})
	}
	for i, row := range classes {
		if err := l.validateRow(ClassesFile, i, row); err != nil {
			return nil, err
		}
		model.Classes = append(model.Classes, models.SchoolClass{
			ID:         row.ID,
			Profile:    row.Profile,
			StudentIDs: splitList(row.Students),
		})
	}
	for i, row := range subjects {
		if err := l.validateRow(SubjectsFile, i, row); err != nil {
			return nil, err
		}
		subjectType := models.SubjectTypeMandatory
		if row.Type == "elective" {
			subjectType = models.SubjectTypeElective
		}
		model.Subjects = append(model.Subjects, models.Subject{
			Name:         row.Name,
			Type:         subjectType,
			HoursPerWeek: row.HoursPerWeek,
			TeacherID:    row.TeacherID,
			ClassIDs:     splitList(row.Classes),
		})
	}

	model.BuildIndexes()
	l.logger.Info("domain model loaded",
		zap.Int("teachers", len(model.Teachers)),
		zap.Int("classrooms", len(model.Classrooms)),
		zap.Int("students", len(model.Students)),
		zap.Int("classes", len(model.Classes)),
		zap.Int("subjects", len(model.Subjects)),
	)
	return model, nil
}

func (l *Loader) readFile(path string, dest interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("cannot open %s", filepath.Base(path)))
	}
	defer file.Close()

	if err := gocsv.UnmarshalFile(file, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("cannot parse %s", filepath.Base(path)))
	}
	return nil
}

func (l *Loader) validateRow(file string, idx int, row interface{}) error {
	if err := l.validate.Struct(row); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("%s row %d is invalid", file, idx+1))
	}
	return nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

var dayAbbreviations = map[string]int{
	"mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5,
}

func parseDays(raw string) ([models.DaysPerWeek]bool, error) {
	var days [models.DaysPerWeek]bool
	for _, token := range splitList(raw) {
		lowered := strings.ToLower(token)
		if day, ok := dayAbbreviations[lowered]; ok {
			days[day-1] = true
			continue
		}
		day, err := strconv.Atoi(lowered)
		if err != nil || day < 1 || day > models.DaysPerWeek {
			return days, fmt.Errorf("unknown day %q", token)
		}
		days[day-1] = true
	}
	return days, nil
}
