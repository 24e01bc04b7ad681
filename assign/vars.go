package assign

import (
	"fmt"
	"strconv"
	"strings"
)

type VarKind int

const (
	// VarAssignment is a binary variable: one classroom hosting one
	// section at one slot.
	VarAssignment VarKind = iota
	// VarCapacitySlack measures wasted seats for a (classroom, section)
	// pair.
	VarCapacitySlack
	// VarRoomOverrun measures how far a classroom's aggregate load
	// exceeds its capacity.
	VarRoomOverrun
)

const (
	capacitySlackPrefix = "CapDiff"
	roomOverrunPrefix   = "PNC"
	identitySep         = "_"
	valueSep            = "#"
)

// VarKey is the reversible identity of one model variable. Its string
// form is the name handed to the solver and the key used to decode
// results, so classroom names, section keys, days, and times must not
// contain the underscore separator.
type VarKey struct {
	Kind      VarKind
	Classroom string
	Section   string
	Day       string
	Time      string
}

func AssignmentVar(classroom, section, day, time string) VarKey {
	return VarKey{Kind: VarAssignment, Classroom: classroom, Section: section, Day: day, Time: time}
}

func CapacitySlackVar(classroom, section string) VarKey {
	return VarKey{Kind: VarCapacitySlack, Classroom: classroom, Section: section}
}

func RoomOverrunVar(classroom string) VarKey {
	return VarKey{Kind: VarRoomOverrun, Classroom: classroom}
}

func (k VarKey) String() string {
	switch k.Kind {
	case VarCapacitySlack:
		return strings.Join([]string{capacitySlackPrefix, k.Classroom, k.Section}, identitySep)
	case VarRoomOverrun:
		return roomOverrunPrefix + identitySep + k.Classroom
	default:
		return strings.Join([]string{k.Classroom, k.Section, k.Day, k.Time}, identitySep)
	}
}

// ParseVarKey inverts String.
func ParseVarKey(s string) (VarKey, error) {
	parts := strings.Split(s, identitySep)
	switch {
	case strings.HasPrefix(s, capacitySlackPrefix+identitySep):
		if len(parts) != 3 {
			return VarKey{}, fmt.Errorf("malformed capacity slack identity %q", s)
		}
		return CapacitySlackVar(parts[1], parts[2]), nil
	case strings.HasPrefix(s, roomOverrunPrefix+identitySep):
		if len(parts) != 2 {
			return VarKey{}, fmt.Errorf("malformed room overrun identity %q", s)
		}
		return RoomOverrunVar(parts[1]), nil
	default:
		if len(parts) != 4 {
			return VarKey{}, fmt.Errorf("malformed assignment identity %q", s)
		}
		return AssignmentVar(parts[0], parts[1], parts[2], parts[3]), nil
	}
}

// EncodeValue renders one solved variable as "{identity}#{value}", the
// report format shared by the CLI output files and the service.
func EncodeValue(name string, value float64) string {
	return name + valueSep + strconv.FormatFloat(value, 'g', -1, 64)
}

// DecodeValue splits a report entry back into identity and value.
func DecodeValue(entry string) (string, float64, error) {
	name, raw, ok := strings.Cut(entry, valueSep)
	if !ok {
		return "", 0, fmt.Errorf("report entry %q has no value separator", entry)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("report entry %q has a malformed value: %w", entry, err)
	}
	return name, value, nil
}
