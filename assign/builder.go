package assign

import (
	"fmt"

	log "github.com/golang/glog"

	"classrooms/solver"
)

// Config carries the policy knobs of the model. Weights are relative:
// the institute bonus should dominate the type bonus, and the overrun
// weight should dominate everything else so overruns only appear when
// nothing fits.
type Config struct {
	CoeffInstituteMatch int64
	CoeffTypeMatch      int64
	OverrunWeight       int64

	// LegacyOverrun keeps the per-classroom overrun slack active: the
	// seated load at any slot may exceed the room's capacity only by
	// the heavily penalized PNC variable. Disabling it makes oversized
	// sections infeasible instead of expensive.
	LegacyOverrun bool

	// DesignatedClassroom hosts every incoming-cohort section. Empty
	// disables the rule.
	DesignatedClassroom string
	IncomingCohortTerm  int
	IncomingCohortTag   string

	// RestrictedBoardMarker excludes rooms whose board description
	// contains it from blackboard-restricted sections.
	RestrictedBoardMarker string
}

func DefaultConfig() Config {
	return Config{
		CoeffInstituteMatch:   100,
		CoeffTypeMatch:        10,
		OverrunWeight:         1000,
		LegacyOverrun:         true,
		DesignatedClassroom:   "F3014",
		IncomingCohortTerm:    1,
		IncomingCohortTag:     "Calouro",
		RestrictedBoardMarker: "giz",
	}
}

// Override pins one assignment variable to 1. All four fields must name
// a combination the model actually contains.
type Override struct {
	Classroom string
	Section   string
	Day       string
	Time      string
}

// Model owns the decision variables, preference coefficients, and
// constraints for one term's solve.
type Model struct {
	Classrooms map[string]*Classroom
	Sections   map[string]*Section
	Index      *ScheduleIndex
	Problem    *solver.Problem

	cfg            Config
	vars           map[VarKey]solver.VarID
	coeffs         map[VarKey]int64
	classroomNames []string
	sectionKeys    []string
}

// NewModel creates every decision and slack variable. Sections without a
// usable schedule cannot be assigned and are dropped up front.
func NewModel(classrooms map[string]*Classroom, sections map[string]*Section, cfg Config) *Model {
	modeled := make(map[string]*Section, len(sections))
	for key, sec := range sections {
		if days, _ := sec.Schedule(); len(days) == 0 {
			log.Warningf("section %s has no usable schedule, excluded from the model", key)
			continue
		}
		modeled[key] = sec
	}

	m := &Model{
		Classrooms:     classrooms,
		Sections:       modeled,
		Index:          NewScheduleIndex(modeled),
		Problem:        solver.NewProblem(),
		cfg:            cfg,
		vars:           make(map[VarKey]solver.VarID),
		coeffs:         make(map[VarKey]int64),
		classroomNames: sortedKeys(classrooms),
		sectionKeys:    sortedKeys(modeled),
	}
	m.addAssignmentVariables()
	m.addSlackVariables()
	return m
}

// Var returns the solver variable behind a key.
func (m *Model) Var(key VarKey) (solver.VarID, bool) {
	id, ok := m.vars[key]
	return id, ok
}

// Coefficient returns the preference reward of an assignment variable.
func (m *Model) Coefficient(key VarKey) int64 {
	return m.coeffs[key]
}

func (m *Model) addAssignmentVariables() {
	for _, name := range m.classroomNames {
		room := m.Classrooms[name]
		roomType := NormalizeRoomType(room.RoomType)
		for _, key := range m.sectionKeys {
			sec := m.Sections[key]
			coeff := m.preference(room, roomType, sec)
			days, times := sec.Schedule()
			for i := range days {
				vk := AssignmentVar(name, key, days[i], times[i])
				if _, ok := m.vars[vk]; ok {
					continue
				}
				m.vars[vk] = m.Problem.AddBinary(vk.String())
				m.coeffs[vk] = coeff
			}
		}
	}
}

// preference scores how well a classroom suits a section. A type match
// earns the base reward; sharing the responsible institute earns the
// larger one. Unknown room types never match.
func (m *Model) preference(room *Classroom, roomType string, sec *Section) int64 {
	if roomType == RoomTypeUnknown {
		return 0
	}
	matched := false
	for _, t := range sec.RequiredTypes() {
		if t == roomType {
			matched = true
			break
		}
	}
	if !matched {
		return 0
	}
	if room.Institute != "" && room.Institute == sec.Institute {
		return m.cfg.CoeffInstituteMatch
	}
	return m.cfg.CoeffTypeMatch
}

func (m *Model) addSlackVariables() {
	for _, name := range m.classroomNames {
		room := m.Classrooms[name]
		if m.cfg.LegacyOverrun {
			vk := RoomOverrunVar(name)
			m.vars[vk] = m.Problem.AddInteger(vk.String(), 0, m.totalSectionLoad())
		}
		for _, key := range m.sectionKeys {
			vk := CapacitySlackVar(name, key)
			hi := int64(room.Capacity)
			if hi < 0 {
				hi = 0
			}
			m.vars[vk] = m.Problem.AddInteger(vk.String(), 0, hi)
		}
	}
}

// totalSectionLoad bounds how much load any single classroom could ever
// absorb: every section meeting in it at every slot.
func (m *Model) totalSectionLoad() int64 {
	total := int64(0)
	for _, key := range m.sectionKeys {
		sec := m.Sections[key]
		days, _ := sec.Schedule()
		total += int64(sec.Capacity) * int64(len(days))
	}
	return total
}

// mustVar resolves a key the model is guaranteed to contain. A miss is a
// programming error in the builder, not bad input.
func (m *Model) mustVar(key VarKey) solver.VarID {
	id, ok := m.vars[key]
	if !ok {
		panic(fmt.Sprintf("no decision variable for %s", key))
	}
	return id
}
