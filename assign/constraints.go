package assign

import (
	"fmt"

	"classrooms/solver"
)

// BuildConstraints emits the full rule set. Rule numbers follow the
// allocation team's naming: RN1 no double booking, RN2 one room per
// section slot, RN3 room type counts, RN4 incoming cohort room, RN5
// blackboard restriction.
func (m *Model) BuildConstraints(overrides []Override) error {
	m.addCapacityConstraints()
	m.addOccupancyConstraints()
	m.addSingleRoomConstraints()
	m.addRoomTypeConstraints()
	if err := m.addIncomingCohortConstraints(); err != nil {
		return err
	}
	m.addBoardConstraints()
	return m.addOverrideConstraints(overrides)
}

// sectionSlots returns a section's distinct meeting slots in schedule
// order.
func (m *Model) sectionSlots(sec *Section) []Slot {
	days, times := sec.Schedule()
	out := make([]Slot, 0, len(days))
	seen := make(map[Slot]bool, len(days))
	for i := range days {
		slot := Slot{Day: days[i], Time: times[i]}
		if seen[slot] {
			continue
		}
		seen[slot] = true
		out = append(out, slot)
	}
	return out
}

// addCapacityConstraints emits the soft capacity rules. Per classroom
// and slot, the seated load may exceed capacity only by the overrun
// slack. Per (classroom, section) pair, the slack variable must cover
// the wasted seats of any slot the pair is assigned at.
func (m *Model) addCapacityConstraints() {
	for _, name := range m.classroomNames {
		room := m.Classrooms[name]

		if m.cfg.LegacyOverrun {
			overrun := m.mustVar(RoomOverrunVar(name))
			for _, slot := range m.Index.Slots() {
				var terms []solver.Term
				for _, key := range m.Index.SectionsAt(slot.Day, slot.Time) {
					id := m.mustVar(AssignmentVar(name, key, slot.Day, slot.Time))
					terms = append(terms, solver.Term{Var: id, Coeff: int64(m.Sections[key].Capacity)})
				}
				terms = append(terms, solver.Term{Var: overrun, Coeff: -1})
				m.Problem.AddConstraint(
					fmt.Sprintf("CapacityOverrun[%s@%s %s]", name, slot.Day, slot.Time),
					terms, solver.Le, int64(room.Capacity))
			}
		}

		for _, key := range m.sectionKeys {
			sec := m.Sections[key]
			waste := int64(room.Capacity) - int64(sec.Capacity)
			if waste <= 0 {
				continue
			}
			slack := m.mustVar(CapacitySlackVar(name, key))
			for _, slot := range m.sectionSlots(sec) {
				id := m.mustVar(AssignmentVar(name, key, slot.Day, slot.Time))
				m.Problem.AddConstraint(
					fmt.Sprintf("CapacitySlack[%s/%s@%s %s]", name, key, slot.Day, slot.Time),
					[]solver.Term{{Var: slack, Coeff: 1}, {Var: id, Coeff: -waste}},
					solver.Ge, 0)
			}
		}
	}
}

// addOccupancyConstraints forbids double booking: per classroom and
// slot, at most one of the sections meeting at that slot.
func (m *Model) addOccupancyConstraints() {
	for _, name := range m.classroomNames {
		for _, slot := range m.Index.Slots() {
			keys := m.Index.SectionsAt(slot.Day, slot.Time)
			terms := make([]solver.Term, 0, len(keys))
			for _, key := range keys {
				terms = append(terms, solver.Term{Var: m.mustVar(AssignmentVar(name, key, slot.Day, slot.Time)), Coeff: 1})
			}
			m.Problem.AddConstraint(
				fmt.Sprintf("RN1[%s@%s %s]", name, slot.Day, slot.Time),
				terms, solver.Le, 1)
		}
	}
}

// addSingleRoomConstraints requires exactly one classroom per section
// slot. With no classrooms available the constraint is unsatisfiable,
// which is the correct outcome.
func (m *Model) addSingleRoomConstraints() {
	for _, key := range m.sectionKeys {
		sec := m.Sections[key]
		for _, slot := range m.sectionSlots(sec) {
			terms := make([]solver.Term, 0, len(m.classroomNames))
			for _, name := range m.classroomNames {
				terms = append(terms, solver.Term{Var: m.mustVar(AssignmentVar(name, key, slot.Day, slot.Time)), Coeff: 1})
			}
			m.Problem.AddConstraint(
				fmt.Sprintf("RN2[%s@%s %s]", key, slot.Day, slot.Time),
				terms, solver.Eq, 1)
		}
	}
}

// addRoomTypeConstraints makes each section's slot assignments match its
// room type requirements: for every required type, exactly as many
// meetings in rooms of that type as the requirement lists, and zero
// meetings in rooms of any other type.
func (m *Model) addRoomTypeConstraints() {
	for _, key := range m.sectionKeys {
		sec := m.Sections[key]
		slots := m.sectionSlots(sec)

		counts := make(map[string]int64)
		var order []string
		for _, t := range sec.RequiredTypes() {
			if t == RoomTypeUnknown {
				continue
			}
			if _, ok := counts[t]; !ok {
				order = append(order, t)
			}
			counts[t]++
		}

		for _, t := range order {
			var terms []solver.Term
			for _, name := range m.classroomNames {
				if NormalizeRoomType(m.Classrooms[name].RoomType) != t {
					continue
				}
				for _, slot := range slots {
					terms = append(terms, solver.Term{Var: m.mustVar(AssignmentVar(name, key, slot.Day, slot.Time)), Coeff: 1})
				}
			}
			m.Problem.AddConstraint(fmt.Sprintf("RN3[%s:%s]", key, t), terms, solver.Eq, counts[t])
		}

		if len(counts) == 0 {
			continue
		}
		for _, name := range m.classroomNames {
			if _, required := counts[NormalizeRoomType(m.Classrooms[name].RoomType)]; required {
				continue
			}
			terms := make([]solver.Term, 0, len(slots))
			for _, slot := range slots {
				terms = append(terms, solver.Term{Var: m.mustVar(AssignmentVar(name, key, slot.Day, slot.Time)), Coeff: 1})
			}
			m.Problem.AddConstraint(fmt.Sprintf("RN3[%s/%s]", key, name), terms, solver.Eq, 0)
		}
	}
}

// addIncomingCohortConstraints keeps incoming-cohort sections in the
// designated classroom for as many meetings as that room's type appears
// in their requirements.
func (m *Model) addIncomingCohortConstraints() error {
	if m.cfg.DesignatedClassroom == "" {
		return nil
	}
	for _, key := range m.sectionKeys {
		sec := m.Sections[key]
		if sec.Term != m.cfg.IncomingCohortTerm || sec.ClassType != m.cfg.IncomingCohortTag {
			continue
		}
		room, ok := m.Classrooms[m.cfg.DesignatedClassroom]
		if !ok {
			return fmt.Errorf("designated incoming-cohort classroom %q is not in the classroom set", m.cfg.DesignatedClassroom)
		}
		roomType := NormalizeRoomType(room.RoomType)
		required := int64(0)
		for _, t := range sec.RequiredTypes() {
			if t == roomType {
				required++
			}
		}
		slots := m.sectionSlots(sec)
		terms := make([]solver.Term, 0, len(slots))
		for _, slot := range slots {
			terms = append(terms, solver.Term{Var: m.mustVar(AssignmentVar(room.Name, key, slot.Day, slot.Time)), Coeff: 1})
		}
		m.Problem.AddConstraint(fmt.Sprintf("RN4[%s]", key), terms, solver.Eq, required)
	}
	return nil
}

// addBoardConstraints keeps blackboard-restricted sections out of rooms
// whose board matches the restricted marker.
func (m *Model) addBoardConstraints() {
	for _, key := range m.sectionKeys {
		sec := m.Sections[key]
		if !sec.BlackboardRestricted {
			continue
		}
		var terms []solver.Term
		for _, name := range m.classroomNames {
			if !m.Classrooms[name].HasBoardMarker(m.cfg.RestrictedBoardMarker) {
				continue
			}
			for _, slot := range m.sectionSlots(sec) {
				terms = append(terms, solver.Term{Var: m.mustVar(AssignmentVar(name, key, slot.Day, slot.Time)), Coeff: 1})
			}
		}
		if len(terms) == 0 {
			continue
		}
		m.Problem.AddConstraint(fmt.Sprintf("RN5[%s]", key), terms, solver.Eq, 0)
	}
}

// addOverrideConstraints pins manual placements. An override naming a
// combination outside the model is rejected before any solve is
// attempted.
func (m *Model) addOverrideConstraints(overrides []Override) error {
	for _, o := range overrides {
		vk := AssignmentVar(o.Classroom, o.Section, o.Day, o.Time)
		id, ok := m.vars[vk]
		if !ok {
			return fmt.Errorf("override names a combination outside the model: %s", vk)
		}
		m.Problem.AddConstraint(
			fmt.Sprintf("Override[%s]", vk),
			[]solver.Term{{Var: id, Coeff: 1}},
			solver.Eq, 1)
	}
	return nil
}

// BuildObjective composes the maximize objective: preference rewards
// minus wasted seats minus heavily weighted capacity overruns.
func (m *Model) BuildObjective() {
	var terms []solver.Term
	for _, name := range m.classroomNames {
		for _, key := range m.sectionKeys {
			sec := m.Sections[key]
			for _, slot := range m.sectionSlots(sec) {
				vk := AssignmentVar(name, key, slot.Day, slot.Time)
				if coeff := m.coeffs[vk]; coeff != 0 {
					terms = append(terms, solver.Term{Var: m.mustVar(vk), Coeff: coeff})
				}
			}
			terms = append(terms, solver.Term{Var: m.mustVar(CapacitySlackVar(name, key)), Coeff: -1})
		}
		if m.cfg.LegacyOverrun {
			terms = append(terms, solver.Term{Var: m.mustVar(RoomOverrunVar(name)), Coeff: -m.cfg.OverrunWeight})
		}
	}
	m.Problem.SetObjective(terms, true)
}
