package assign

import "sort"

type Slot struct {
	Day  string
	Time string
}

// ScheduleIndex answers which sections occupy each distinct (day, time)
// slot. Occupancy is pair-aligned: a section occupies exactly the slots
// its Schedule produces, never the cross product of its days and times.
type ScheduleIndex struct {
	slots     []Slot
	occupants map[Slot][]string
}

func NewScheduleIndex(sections map[string]*Section) *ScheduleIndex {
	ix := &ScheduleIndex{occupants: make(map[Slot][]string)}
	for _, key := range sortedKeys(sections) {
		days, times := sections[key].Schedule()
		seen := make(map[Slot]bool, len(days))
		for i := range days {
			slot := Slot{Day: days[i], Time: times[i]}
			if seen[slot] {
				continue
			}
			seen[slot] = true
			if _, ok := ix.occupants[slot]; !ok {
				ix.slots = append(ix.slots, slot)
			}
			ix.occupants[slot] = append(ix.occupants[slot], key)
		}
	}
	sort.Slice(ix.slots, func(i, j int) bool {
		if ix.slots[i].Day != ix.slots[j].Day {
			return ix.slots[i].Day < ix.slots[j].Day
		}
		return ix.slots[i].Time < ix.slots[j].Time
	})
	return ix
}

// Slots returns every distinct slot in use, in deterministic order.
func (ix *ScheduleIndex) Slots() []Slot {
	return ix.slots
}

// SectionsAt returns the keys of the sections meeting at exactly the
// given day and time.
func (ix *ScheduleIndex) SectionsAt(day, time string) []string {
	return ix.occupants[Slot{Day: day, Time: time}]
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
