package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemBuilding(t *testing.T) {
	p := NewProblem()
	x := p.AddBinary("x")
	y := p.AddInteger("y", 0, 10)
	p.AddConstraint("cap", []Term{{Var: x, Coeff: 5}, {Var: y, Coeff: -1}}, Le, 3)
	p.SetObjective([]Term{{Var: x, Coeff: 100}, {Var: y, Coeff: -1}}, true)

	require.Len(t, p.Vars, 2)
	assert.Equal(t, "x", p.Name(x))
	assert.Equal(t, Binary, p.Vars[x].Kind)
	assert.Equal(t, Variable{Name: "y", Kind: Integer, Lo: 0, Hi: 10}, p.Vars[y])
	require.Len(t, p.Constraints, 1)
	assert.True(t, p.Objective.Maximize)
}

func TestViolated(t *testing.T) {
	p := NewProblem()
	x := p.AddBinary("x")
	y := p.AddInteger("y", 0, 10)
	p.AddConstraint("le", []Term{{Var: x, Coeff: 5}, {Var: y, Coeff: -1}}, Le, 3)
	p.AddConstraint("eq", []Term{{Var: x, Coeff: 1}}, Eq, 1)
	p.AddConstraint("ge", []Term{{Var: y, Coeff: 1}}, Ge, 2)

	assert.ElementsMatch(t, []string{"eq", "ge"}, p.Violated([]int64{0, 0}))
	assert.ElementsMatch(t, []string{"le", "ge"}, p.Violated([]int64{1, 1}))
	assert.Empty(t, p.Violated([]int64{1, 2}))

	assert.Contains(t, p.Violated([]int64{2, 11}), "bounds[x]")
	assert.Contains(t, p.Violated([]int64{2, 11}), "bounds[y]")
}

func TestObjectiveValue(t *testing.T) {
	p := NewProblem()
	x := p.AddBinary("x")
	y := p.AddInteger("y", 0, 10)
	p.SetObjective([]Term{{Var: x, Coeff: 100}, {Var: y, Coeff: -3}}, true)

	assert.Equal(t, int64(94), p.ObjectiveValue([]int64{1, 2}))
}

func TestInfeasibleErrorMessage(t *testing.T) {
	assert.Equal(t, "model is infeasible", (&InfeasibleError{}).Error())
	assert.Equal(t, "model is infeasible; conflicting constraints: a; b",
		(&InfeasibleError{Conflicts: []string{"a", "b"}}).Error())
}
