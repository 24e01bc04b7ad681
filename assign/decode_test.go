package assign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSolutionClassifiesEntries(t *testing.T) {
	sections := map[string]*Section{
		"MC102A": {
			Key: "MC102A", Term: 3, Professor: "Zanoni",
			GraduationCourse: "CC", CourseID: "MC102", CourseName: "Algoritmos",
		},
	}
	report := []string{
		"F3014_MC102A_SEG_08:00-10:00#1",
		"CapDiff_F3014_MC102A#12",
		"PNC_F3014#4",
	}

	decoded, err := DecodeSolution(report, sections)
	require.NoError(t, err)

	require.Len(t, decoded.Rows, 1)
	row := decoded.Rows[0]
	assert.Equal(t, "F3014", row.Classroom)
	assert.Equal(t, "MC102A", row.Section)
	assert.Equal(t, "Zanoni", row.Professor)
	assert.Equal(t, "CC", row.GraduationCourse)
	assert.Equal(t, "MC102", row.CourseID)
	assert.Equal(t, "Algoritmos", row.CourseName)
	assert.Equal(t, 3, row.Term)
	assert.Equal(t, "SEG", row.Day)
	assert.Equal(t, "08:00-10:00", row.Time)

	assert.Equal(t, []string{"CapDiff_F3014_MC102A#12"}, decoded.CapacityDiagnostics)
	assert.Equal(t, []string{"PNC_F3014#4"}, decoded.OverrunDiagnostics)
}

func TestDecodeSolutionSkipsZeroValues(t *testing.T) {
	decoded, err := DecodeSolution([]string{"CapDiff_F3014_MC102A#0"}, nil)
	require.NoError(t, err)
	assert.Empty(t, decoded.Rows)
	assert.Empty(t, decoded.CapacityDiagnostics)
}

func TestDecodeSolutionUnknownSectionFails(t *testing.T) {
	_, err := DecodeSolution([]string{"F3014_GHOST_SEG_08:00-10:00#1"}, map[string]*Section{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GHOST")
}

func TestDecodeSolutionMalformedEntryFails(t *testing.T) {
	_, err := DecodeSolution([]string{"F3014_MC102A_SEG"}, nil)
	assert.Error(t, err)

	_, err = DecodeSolution([]string{"F3014_MC102A_SEG_08:00_09:00#1"}, nil)
	assert.Error(t, err)
}
