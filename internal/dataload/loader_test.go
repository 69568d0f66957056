package dataload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusched/timetable-api/internal/models"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeValidFixtures(t *testing.T, dir string) {
	t.Helper()
	writeFixture(t, dir, TeachersFile,
		"id,name,subjects,home_classroom,days\n"+
			"t-1,Ivanova,Mathematics;Physics,r-1,Mon;Tue;Wed;Thu;Fri\n"+
			"t-2,Petrov,History,,1;3;5\n")
	writeFixture(t, dir, ClassroomsFile,
		"id,capacity,floor\nr-1,30,1\nr-2,60,2\n")
	writeFixture(t, dir, StudentsFile,
		"id,name,class_id,electives\ns-1,Anna,c-1,Mathematics\ns-2,Boris,c-1,\n")
	writeFixture(t, dir, ClassesFile,
		"id,profile,students\nc-1,science,s-1;s-2\n")
	writeFixture(t, dir, SubjectsFile,
		"name,type,hours_per_week,teacher_id,classes\n"+
			"Mathematics,mandatory,4,t-1,c-1\n"+
			"History,mandatory,2,t-2,c-1\n")
}

func TestLoaderParsesFullContract(t *testing.T) {
	dir := t.TempDir()
	writeValidFixtures(t, dir)

	model, err := NewLoader(nil, nil).Load(dir)
	require.NoError(t, err)

	require.Len(t, model.Teachers, 2)
	assert.Equal(t, []string{"Mathematics", "Physics"}, model.Teachers[0].Subjects)
	assert.Equal(t, "r-1", model.Teachers[0].HomeClassroom)
	assert.True(t, model.Teachers[0].AvailableOn(3))
	assert.True(t, model.Teachers[1].AvailableOn(1))
	assert.False(t, model.Teachers[1].AvailableOn(2))

	require.Len(t, model.Classrooms, 2)
	assert.Equal(t, 60, model.Classrooms[1].Capacity)

	require.Len(t, model.Students, 2)
	assert.Equal(t, []string{"Mathematics"}, model.Students[0].Electives)
	assert.Empty(t, model.Students[1].Electives)

	require.Len(t, model.Subjects, 2)
	assert.Equal(t, models.SubjectTypeMandatory, model.Subjects[0].Type)
	assert.Equal(t, []string{"c-1"}, model.Subjects[0].ClassIDs)

	// Indexes are ready for the engine.
	require.NotNil(t, model.TeacherByID("t-2"))
	require.NotNil(t, model.ClassByID("c-1"))
}

func TestLoaderRejectsInvalidCapacity(t *testing.T) {
	dir := t.TempDir()
	writeValidFixtures(t, dir)
	writeFixture(t, dir, ClassroomsFile, "id,capacity,floor\nr-1,0,1\n")

	_, err := NewLoader(nil, nil).Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ClassroomsFile)
}

func TestLoaderRejectsUnknownDayToken(t *testing.T) {
	dir := t.TempDir()
	writeValidFixtures(t, dir)
	writeFixture(t, dir, TeachersFile,
		"id,name,subjects,home_classroom,days\nt-1,Ivanova,Mathematics,,Funday\n")

	_, err := NewLoader(nil, nil).Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Funday")
}

func TestLoaderFailsOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeValidFixtures(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, SubjectsFile)))

	_, err := NewLoader(nil, nil).Load(dir)
	require.Error(t, err)
}
