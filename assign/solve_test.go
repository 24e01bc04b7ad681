package assign

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classrooms/solver"
)

// exhaustiveEngine enumerates every binary combination and derives the
// minimal slack values for each, so small models solve exactly without a
// real solver.
type exhaustiveEngine struct{}

func (exhaustiveEngine) Solve(_ context.Context, p *solver.Problem) (*solver.Result, error) {
	var binaries, integers []int
	for i, v := range p.Vars {
		if v.Kind == solver.Binary {
			binaries = append(binaries, i)
		} else {
			integers = append(integers, i)
		}
	}
	if len(binaries) > 20 {
		panic("model too large for exhaustive search")
	}

	var best []int64
	bestObj := int64(0)
	for mask := 0; mask < 1<<len(binaries); mask++ {
		values := make([]int64, len(p.Vars))
		for bit, vi := range binaries {
			if mask>>bit&1 == 1 {
				values[vi] = 1
			}
		}
		for _, vi := range integers {
			values[vi] = minimalSlack(p, vi, values)
		}
		if len(p.Violated(values)) > 0 {
			continue
		}
		obj := p.ObjectiveValue(values)
		if best == nil || obj > bestObj {
			best = values
			bestObj = obj
		}
	}
	if best == nil {
		return nil, &solver.InfeasibleError{}
	}

	res := &solver.Result{Optimal: true, Objective: float64(bestObj)}
	for i, v := range best {
		if v != 0 {
			res.Values = append(res.Values, solver.Value{Name: p.Vars[i].Name, Value: float64(v)})
		}
	}
	return res, nil
}

// minimalSlack computes the smallest value of an integer variable that
// satisfies its lower-bounding constraints given fixed binaries. Slack
// variables only appear with coefficient +1 in >= constraints and -1 in
// <= constraints, so the bound is direct.
func minimalSlack(p *solver.Problem, vi int, values []int64) int64 {
	lb := p.Vars[vi].Lo
	for _, c := range p.Constraints {
		coeff, rest := int64(0), int64(0)
		for _, t := range c.Terms {
			if int(t.Var) == vi {
				coeff += t.Coeff
			} else {
				rest += t.Coeff * values[t.Var]
			}
		}
		var need int64
		switch {
		case c.Rel == solver.Ge && coeff > 0:
			need = ceilDiv(c.RHS-rest, coeff)
		case c.Rel == solver.Le && coeff < 0:
			need = ceilDiv(rest-c.RHS, -coeff)
		default:
			continue
		}
		if need > lb {
			lb = need
		}
	}
	return lb
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func TestSolveAssignsMatchingRooms(t *testing.T) {
	classrooms, sections := twoRoomFixture()

	outcome, err := Solve(context.Background(), classrooms, sections, nil, DefaultConfig(), exhaustiveEngine{})
	require.NoError(t, err)

	assert.True(t, outcome.Optimal)
	assert.Equal(t, 390.0, outcome.Objective)

	byKey := map[string][]string{}
	for _, row := range outcome.Rows {
		byKey[row.Section] = append(byKey[row.Section], row.Classroom)
	}
	assert.Equal(t, []string{"R1", "R1"}, byKey["S1"])
	assert.Equal(t, []string{"R2", "R2"}, byKey["S2"])

	assert.Empty(t, outcome.OverrunDiagnostics)
	assert.ElementsMatch(t, []string{"CapDiff_R1_S1#5", "CapDiff_R2_S2#5"}, outcome.CapacityDiagnostics)
}

func TestSolveSplitsTwoTypeSection(t *testing.T) {
	classrooms, _ := twoRoomFixture()
	sections := map[string]*Section{
		"SX": {Key: "SX", Day: "SEG,QUA", Time: "10:00-12:00", Capacity: 20, RoomTypes: "Sala,Laboratório", Institute: "IC"},
	}

	outcome, err := Solve(context.Background(), classrooms, sections, nil, DefaultConfig(), exhaustiveEngine{})
	require.NoError(t, err)

	require.Len(t, outcome.Rows, 2)
	rooms := map[string]bool{}
	for _, row := range outcome.Rows {
		assert.Equal(t, "SX", row.Section)
		rooms[row.Classroom] = true
	}
	assert.True(t, rooms["R1"], "one meeting in the theory room")
	assert.True(t, rooms["R2"], "one meeting in the lab")
}

func TestSolveWithoutClassroomsIsInfeasible(t *testing.T) {
	_, sections := twoRoomFixture()

	_, err := Solve(context.Background(), map[string]*Classroom{}, sections, nil, DefaultConfig(), exhaustiveEngine{})
	var infeasible *solver.InfeasibleError
	require.True(t, errors.As(err, &infeasible))
}

func TestSolveHonorsOverride(t *testing.T) {
	classrooms := map[string]*Classroom{
		"RA": {Name: "RA", Capacity: 30, RoomType: RoomTypeTheory, Institute: "IC"},
		"RB": {Name: "RB", Capacity: 30, RoomType: RoomTypeTheory, Institute: "OTHER"},
	}
	sections := map[string]*Section{
		"S1": {Key: "S1", Day: "SEG", Time: "08:00-10:00", Capacity: 30, RoomTypes: "Sala", Institute: "IC"},
	}
	overrides := []Override{{Classroom: "RB", Section: "S1", Day: "SEG", Time: "08:00-10:00"}}

	outcome, err := Solve(context.Background(), classrooms, sections, overrides, DefaultConfig(), exhaustiveEngine{})
	require.NoError(t, err)

	require.Len(t, outcome.Rows, 1)
	assert.Equal(t, "RB", outcome.Rows[0].Classroom)
	assert.Equal(t, 10.0, outcome.Objective)

	// Without the override the preferred institute wins.
	outcome, err = Solve(context.Background(), classrooms, sections, nil, DefaultConfig(), exhaustiveEngine{})
	require.NoError(t, err)
	require.Len(t, outcome.Rows, 1)
	assert.Equal(t, "RA", outcome.Rows[0].Classroom)
	assert.Equal(t, 100.0, outcome.Objective)
}

func TestSolveReportsOverrun(t *testing.T) {
	classrooms := map[string]*Classroom{
		"R1": {Name: "R1", Capacity: 10, RoomType: RoomTypeTheory, Institute: "IC"},
	}
	sections := map[string]*Section{
		"S1": {Key: "S1", Day: "SEG", Time: "08:00-10:00", Capacity: 25, RoomTypes: "Sala", Institute: "IC"},
	}

	outcome, err := Solve(context.Background(), classrooms, sections, nil, DefaultConfig(), exhaustiveEngine{})
	require.NoError(t, err)

	require.Len(t, outcome.Rows, 1)
	assert.Equal(t, []string{"PNC_R1#15"}, outcome.OverrunDiagnostics)
	// 100 reward, 15 overrun at weight 1000.
	assert.Equal(t, -14900.0, outcome.Objective)
}
