// Package csvio loads classroom, section, and override data from
// semicolon-delimited CSV files and writes solver results back out in
// the same shape the allocation staff consume.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	log "github.com/golang/glog"

	"classrooms/assign"
)

// Delimiter is the field separator of every file this package touches.
const Delimiter = ';'

func init() {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = Delimiter
		return r
	})
	gocsv.SetCSVWriter(func(out io.Writer) *gocsv.SafeCSVWriter {
		w := csv.NewWriter(out)
		w.Comma = Delimiter
		return gocsv.NewSafeCSVWriter(w)
	})
}

type classroomRow struct {
	Name      string `csv:"classroom_name"`
	Capacity  string `csv:"capacity"`
	RoomType  string `csv:"classroom_type"`
	Institute string `csv:"responsable_institute"`
	BoardType string `csv:"board_type"`
	Available string `csv:"available"`
}

type sectionRow struct {
	Key              string `csv:"section_key"`
	Day              string `csv:"day"`
	Time             string `csv:"time"`
	Capacity         string `csv:"capacity"`
	RoomTypes        string `csv:"classroom_type"`
	Institute        string `csv:"responsable_institute"`
	Term             string `csv:"term"`
	ClassType        string `csv:"class_type"`
	Blackboard       string `csv:"blackboard_restriction"`
	Professor        string `csv:"professor"`
	GraduationCourse string `csv:"graduation_course"`
	CourseID         string `csv:"course_id"`
	CourseName       string `csv:"course_name"`
}

type overrideRow struct {
	Classroom string `csv:"classroom_name"`
	Section   string `csv:"section_key"`
	Day       string `csv:"day"`
	Time      string `csv:"time"`
}

// LoadClassrooms reads the classroom file. Rooms marked unavailable are
// skipped; malformed capacities coerce to 0 rather than failing the
// whole load.
func LoadClassrooms(path string) (map[string]*assign.Classroom, error) {
	var rows []*classroomRow
	if err := unmarshalFile(path, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]*assign.Classroom, len(rows))
	for _, r := range rows {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		if r.Available != "" && !parseBool(r.Available) {
			continue
		}
		out[name] = &assign.Classroom{
			Name:      name,
			Capacity:  coerceInt(r.Capacity),
			RoomType:  assign.NormalizeRoomType(r.RoomType),
			Institute: strings.TrimSpace(r.Institute),
			BoardType: strings.TrimSpace(r.BoardType),
		}
	}
	return out, nil
}

// LoadSections reads the section file. Rows without a day or time cannot
// be scheduled and are skipped with a warning.
func LoadSections(path string) (map[string]*assign.Section, error) {
	var rows []*sectionRow
	if err := unmarshalFile(path, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]*assign.Section, len(rows))
	for i, r := range rows {
		key := strings.TrimSpace(r.Key)
		if key == "" {
			key = strconv.Itoa(i + 1)
		}
		if strings.TrimSpace(r.Day) == "" || strings.TrimSpace(r.Time) == "" {
			log.Warningf("section %s has no schedule, skipped", key)
			continue
		}
		out[key] = &assign.Section{
			Key:                  key,
			Day:                  strings.TrimSpace(r.Day),
			Time:                 strings.TrimSpace(r.Time),
			Capacity:             coerceInt(r.Capacity),
			RoomTypes:            strings.TrimSpace(r.RoomTypes),
			Institute:            strings.TrimSpace(r.Institute),
			Term:                 coerceInt(r.Term),
			ClassType:            strings.TrimSpace(r.ClassType),
			BlackboardRestricted: parseBool(r.Blackboard),
			Professor:            strings.TrimSpace(r.Professor),
			GraduationCourse:     strings.TrimSpace(r.GraduationCourse),
			CourseID:             strings.TrimSpace(r.CourseID),
			CourseName:           strings.TrimSpace(r.CourseName),
		}
	}
	return out, nil
}

// LoadOverrides reads manual placements.
func LoadOverrides(path string) ([]assign.Override, error) {
	var rows []*overrideRow
	if err := unmarshalFile(path, &rows); err != nil {
		return nil, err
	}
	out := make([]assign.Override, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.Classroom) == "" || strings.TrimSpace(r.Section) == "" {
			continue
		}
		out = append(out, assign.Override{
			Classroom: strings.TrimSpace(r.Classroom),
			Section:   strings.TrimSpace(r.Section),
			Day:       strings.TrimSpace(r.Day),
			Time:      strings.TrimSpace(r.Time),
		})
	}
	return out, nil
}

type assignmentRow struct {
	Classroom        string `csv:"classroom_name"`
	Professor        string `csv:"professor"`
	GraduationCourse string `csv:"graduation_course"`
	CourseID         string `csv:"course_id"`
	CourseName       string `csv:"course_name"`
	Term             int    `csv:"term"`
	Day              string `csv:"day"`
	Time             string `csv:"time"`
}

// WriteAssignments writes the decoded assignment rows.
func WriteAssignments(path string, rows []assign.Row) error {
	converted := make([]*assignmentRow, len(rows))
	for i, r := range rows {
		converted[i] = &assignmentRow{
			Classroom:        r.Classroom,
			Professor:        r.Professor,
			GraduationCourse: r.GraduationCourse,
			CourseID:         r.CourseID,
			CourseName:       r.CourseName,
			Term:             r.Term,
			Day:              r.Day,
			Time:             r.Time,
		}
	}
	return marshalFile(path, &converted)
}

type diagnosticRow struct {
	Identity string `csv:"identity"`
}

// WriteDiagnostics writes raw "{identity}#{value}" entries, one per row.
func WriteDiagnostics(path string, entries []string) error {
	converted := make([]*diagnosticRow, len(entries))
	for i, e := range entries {
		converted[i] = &diagnosticRow{Identity: e}
	}
	return marshalFile(path, &converted)
}

func unmarshalFile(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func marshalFile(path string, in any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(in, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func coerceInt(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return v
}

func parseBool(raw string) bool {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TRUE", "1", "SIM", "YES", "X":
		return true
	default:
		return false
	}
}
