package models

// SubjectType distinguishes weekly mandatory subjects from elective practice courses.
type SubjectType string

const (
	SubjectTypeMandatory SubjectType = "MANDATORY"
	SubjectTypeElective  SubjectType = "ELECTIVE"
)

// DaysPerWeek and LessonsPerDay bound the weekly slot grid.
const (
	DaysPerWeek   = 5
	LessonsPerDay = 7
)

// Teacher is a loader-supplied staff record, read-only during scheduling.
type Teacher struct {
	ID            string   `json:"id" validate:"required"`
	Name          string   `json:"name"`
	Subjects      []string `json:"subjects"`
	HomeClassroom string   `json:"home_classroom,omitempty"`
	// DaysAvailable holds one flag per weekday, index 0 = day 1.
	DaysAvailable [DaysPerWeek]bool `json:"days_available"`
}

// AvailableOn reports whether the teacher works on the given day (1-based).
func (t Teacher) AvailableOn(day int) bool {
	if day < 1 || day > DaysPerWeek {
		return false
	}
	return t.DaysAvailable[day-1]
}

// Classroom is a loader-supplied room record.
type Classroom struct {
	ID       string `json:"id" validate:"required"`
	Capacity int    `json:"capacity" validate:"gt=0"`
	Floor    int    `json:"floor"`
}

// Student is a loader-supplied student record with elective choices.
type Student struct {
	ID        string   `json:"id" validate:"required"`
	Name      string   `json:"name"`
	ClassID   string   `json:"class_id" validate:"required"`
	Electives []string `json:"electives"`
}

// SchoolClass is a graduating class with a fixed member roster.
type SchoolClass struct {
	ID         string   `json:"id" validate:"required"`
	Profile    string   `json:"profile"`
	StudentIDs []string `json:"student_ids"`
}

// Subject is a weekly lesson demand source for one or more classes.
type Subject struct {
	Name         string      `json:"name" validate:"required"`
	Type         SubjectType `json:"type" validate:"required,oneof=MANDATORY ELECTIVE"`
	HoursPerWeek int         `json:"hours_per_week" validate:"gte=1"`
	TeacherID    string      `json:"teacher_id"`
	ClassIDs     []string    `json:"class_ids"`
}

// DomainModel is the immutable-after-load entity set the engine works on.
type DomainModel struct {
	Teachers   []Teacher     `json:"teachers"`
	Classrooms []Classroom   `json:"classrooms"`
	Students   []Student     `json:"students"`
	Classes    []SchoolClass `json:"classes"`
	Subjects   []Subject     `json:"subjects"`

	teacherIndex   map[string]*Teacher
	classroomIndex map[string]*Classroom
	studentIndex   map[string]*Student
	classIndex     map[string]*SchoolClass
}

// BuildIndexes prepares the lookup maps. Call once after loading; lookups
// before that fall back to linear scans.
func (m *DomainModel) BuildIndexes() {
	m.teacherIndex = make(map[string]*Teacher, len(m.Teachers))
	for i := range m.Teachers {
		m.teacherIndex[m.Teachers[i].ID] = &m.Teachers[i]
	}
	m.classroomIndex = make(map[string]*Classroom, len(m.Classrooms))
	for i := range m.Classrooms {
		m.classroomIndex[m.Classrooms[i].ID] = &m.Classrooms[i]
	}
	m.studentIndex = make(map[string]*Student, len(m.Students))
	for i := range m.Students {
		m.studentIndex[m.Students[i].ID] = &m.Students[i]
	}
	m.classIndex = make(map[string]*SchoolClass, len(m.Classes))
	for i := range m.Classes {
		m.classIndex[m.Classes[i].ID] = &m.Classes[i]
	}
}

// TeacherByID returns the teacher with the given id, or nil.
func (m *DomainModel) TeacherByID(id string) *Teacher {
	if m.teacherIndex != nil {
		return m.teacherIndex[id]
	}
	for i := range m.Teachers {
		if m.Teachers[i].ID == id {
			return &m.Teachers[i]
		}
	}
	return nil
}

// ClassroomByID returns the classroom with the given id, or nil.
func (m *DomainModel) ClassroomByID(id string) *Classroom {
	if m.classroomIndex != nil {
		return m.classroomIndex[id]
	}
	for i := range m.Classrooms {
		if m.Classrooms[i].ID == id {
			return &m.Classrooms[i]
		}
	}
	return nil
}

// StudentByID returns the student with the given id, or nil.
func (m *DomainModel) StudentByID(id string) *Student {
	if m.studentIndex != nil {
		return m.studentIndex[id]
	}
	for i := range m.Students {
		if m.Students[i].ID == id {
			return &m.Students[i]
		}
	}
	return nil
}

// ClassByID returns the school class with the given id, or nil.
func (m *DomainModel) ClassByID(id string) *SchoolClass {
	if m.classIndex != nil {
		return m.classIndex[id]
	}
	for i := range m.Classes {
		if m.Classes[i].ID == id {
			return &m.Classes[i]
		}
	}
	return nil
}
