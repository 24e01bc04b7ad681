// Package assign builds the classroom assignment model for one academic
// term and decodes solver results back into assignment rows. Sections
// bring their own weekly schedule and room-type requirements; classrooms
// bring capacity, type, and board information. Everything in between is
// linear constraints.
package assign

import (
	"strings"
)

// Canonical room type labels. Input data carries free-form tags and
// abbreviations, so every comparison goes through NormalizeRoomType first.
const (
	RoomTypeTheory     = "Sala"
	RoomTypeLab        = "Laboratório"
	RoomTypeAuditorium = "Auditório"
	RoomTypeUnknown    = "NAO INFORMADO"
)

type Classroom struct {
	Name      string
	Capacity  int
	RoomType  string
	Institute string
	BoardType string
}

// HasBoardMarker reports whether the classroom's board description
// contains the given marker, case-insensitively.
func (c *Classroom) HasBoardMarker(marker string) bool {
	if marker == "" {
		return false
	}
	return strings.Contains(strings.ToLower(c.BoardType), strings.ToLower(marker))
}

// Section is one teaching section of a course. Day, Time, and RoomTypes
// are comma-separated lists as they appear in the planning sheet.
type Section struct {
	Key       string
	Day       string
	Time      string
	Capacity  int
	RoomTypes string
	Institute string
	Term      int
	ClassType string

	// BlackboardRestricted marks sections that cannot meet in rooms whose
	// board matches the restricted marker.
	BlackboardRestricted bool

	Professor        string
	GraduationCourse string
	CourseID         string
	CourseName       string
}

// Schedule splits the section's day and time lists and pairs them up
// index by index. When fewer times than days are listed, the first time
// repeats for the remaining days. Both slices have equal length; a
// section with no usable day or time returns nil, nil.
func (s *Section) Schedule() (days, times []string) {
	if s.Day == "" || s.Time == "" {
		return nil, nil
	}
	days = splitList(s.Day)
	times = splitList(s.Time)
	if len(days) == 0 || len(times) == 0 {
		return nil, nil
	}
	if len(times) < len(days) {
		first := times[0]
		times = make([]string, len(days))
		for i := range times {
			times[i] = first
		}
	}
	if len(times) > len(days) {
		times = times[:len(days)]
	}
	return days, times
}

// RequiredTypes returns the section's room type requirements, normalized.
// A single requirement applies to every meeting, so it expands to one
// entry per scheduled day.
func (s *Section) RequiredTypes() []string {
	raw := splitList(s.RoomTypes)
	types := make([]string, 0, len(raw))
	for _, t := range raw {
		types = append(types, NormalizeRoomType(t))
	}
	if len(types) == 1 {
		if days, _ := s.Schedule(); len(days) > 1 {
			expanded := make([]string, len(days))
			for i := range expanded {
				expanded[i] = types[0]
			}
			return expanded
		}
	}
	return types
}

// NormalizeRoomType maps the tags and abbreviations found in the source
// sheets onto the canonical labels. Anything unrecognized becomes
// RoomTypeUnknown, which never matches a requirement.
func NormalizeRoomType(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SALA", "SALA DE AULA", "S", "SL", "TEORICA", "TEÓRICA":
		return RoomTypeTheory
	case "LABORATORIO", "LABORATÓRIO", "LAB", "L":
		return RoomTypeLab
	case "AUDITORIO", "AUDITÓRIO", "AUD", "A":
		return RoomTypeAuditorium
	default:
		return RoomTypeUnknown
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
