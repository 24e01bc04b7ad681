package assign

import (
	"fmt"
	"math"

	log "github.com/golang/glog"
)

// Row is one decoded assignment. The columns mirror the published
// results sheet.
type Row struct {
	Classroom        string
	Section          string
	Professor        string
	GraduationCourse string
	CourseID         string
	CourseName       string
	Term             int
	Day              string
	Time             string
}

// Decoded is a solver report split by variable kind. Diagnostics keep
// the raw "{identity}#{value}" entries since their value is the payload.
type Decoded struct {
	Rows                []Row
	CapacityDiagnostics []string
	OverrunDiagnostics  []string
}

const valueTolerance = 1e-6

// DecodeSolution classifies each report entry by its identity tag and
// resolves assignments against the section collection. An assignment
// whose section key is unknown fails the whole decode; silently dropping
// it would hide a corrupted report.
func DecodeSolution(report []string, sections map[string]*Section) (*Decoded, error) {
	out := &Decoded{}
	for _, entry := range report {
		name, value, err := DecodeValue(entry)
		if err != nil {
			return nil, err
		}
		if value <= 0 {
			continue
		}
		key, err := ParseVarKey(name)
		if err != nil {
			return nil, err
		}

		switch key.Kind {
		case VarCapacitySlack:
			if math.Abs(value-math.Round(value)) > valueTolerance {
				log.Warningf("capacity slack %s is not integral: %v", name, value)
			}
			out.CapacityDiagnostics = append(out.CapacityDiagnostics, entry)

		case VarRoomOverrun:
			out.OverrunDiagnostics = append(out.OverrunDiagnostics, entry)

		default:
			if math.Abs(value-1) > valueTolerance {
				log.Warningf("assignment %s has non-unit value %v", name, value)
			}
			sec, ok := sections[key.Section]
			if !ok {
				return nil, fmt.Errorf("solved variable %q references unknown section key %q", name, key.Section)
			}
			out.Rows = append(out.Rows, Row{
				Classroom:        key.Classroom,
				Section:          sec.Key,
				Professor:        sec.Professor,
				GraduationCourse: sec.GraduationCourse,
				CourseID:         sec.CourseID,
				CourseName:       sec.CourseName,
				Term:             sec.Term,
				Day:              key.Day,
				Time:             key.Time,
			})
		}
	}
	return out, nil
}
