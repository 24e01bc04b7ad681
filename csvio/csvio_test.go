package csvio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classrooms/assign"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadClassrooms(t *testing.T) {
	path := writeTemp(t, "classrooms.csv", strings.Join([]string{
		"classroom_name;capacity;classroom_type;responsable_institute;board_type;available",
		"F3014;50;Sala;IC;Quadro branco;TRUE",
		"LAB1;30;Laboratorio;IC;Quadro de giz;TRUE",
		"CLOSED;99;Sala;IC;;FALSE",
		"NOCAP;abc;Sala;IC;;TRUE",
	}, "\n"))

	classrooms, err := LoadClassrooms(path)
	require.NoError(t, err)
	require.Len(t, classrooms, 3)

	assert.Equal(t, 50, classrooms["F3014"].Capacity)
	assert.Equal(t, assign.RoomTypeTheory, classrooms["F3014"].RoomType)
	assert.Equal(t, assign.RoomTypeLab, classrooms["LAB1"].RoomType)
	assert.NotContains(t, classrooms, "CLOSED")
	// Malformed capacity coerces to zero instead of failing the load.
	assert.Equal(t, 0, classrooms["NOCAP"].Capacity)
}

func TestLoadSectionsSkipsUnscheduled(t *testing.T) {
	path := writeTemp(t, "sections.csv", strings.Join([]string{
		"section_key;day;time;capacity;classroom_type;responsable_institute;term;class_type;blackboard_restriction;professor;graduation_course;course_id;course_name",
		"MC102A;SEG,QUA;08:00-10:00;45;Sala;IC;1;Calouro;TRUE;Zanoni;CC;MC102;Algoritmos",
		"GHOST;;08:00-10:00;30;Sala;IC;2;;;X;CC;MC202;Estruturas",
	}, "\n"))

	sections, err := LoadSections(path)
	require.NoError(t, err)
	require.Len(t, sections, 1)

	sec := sections["MC102A"]
	require.NotNil(t, sec)
	assert.Equal(t, "SEG,QUA", sec.Day)
	assert.Equal(t, 45, sec.Capacity)
	assert.Equal(t, 1, sec.Term)
	assert.Equal(t, "Calouro", sec.ClassType)
	assert.True(t, sec.BlackboardRestricted)
	assert.Equal(t, "Zanoni", sec.Professor)
}

func TestLoadOverrides(t *testing.T) {
	path := writeTemp(t, "overrides.csv", strings.Join([]string{
		"classroom_name;section_key;day;time",
		"F3014;MC102A;SEG;08:00-10:00",
		";;;",
	}, "\n"))

	overrides, err := LoadOverrides(path)
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, assign.Override{Classroom: "F3014", Section: "MC102A", Day: "SEG", Time: "08:00-10:00"}, overrides[0])
}

func TestWriteAssignments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assignment.csv")
	rows := []assign.Row{{
		Classroom: "F3014", Section: "MC102A", Professor: "Zanoni",
		GraduationCourse: "CC", CourseID: "MC102", CourseName: "Algoritmos",
		Term: 1, Day: "SEG", Time: "08:00-10:00",
	}}
	require.NoError(t, WriteAssignments(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "classroom_name;professor;graduation_course;course_id;course_name;term;day;time", lines[0])
	assert.Equal(t, "F3014;Zanoni;CC;MC102;Algoritmos;1;SEG;08:00-10:00", lines[1])
}

func TestWriteDiagnostics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pnc.csv")
	require.NoError(t, WriteDiagnostics(path, []string{"PNC_F3014#12"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "identity\nPNC_F3014#12", strings.TrimSpace(string(data)))
}
