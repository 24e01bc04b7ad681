// Package solver defines the optimization contract for the assignment
// model: integer variables, linear constraints, and a single linear
// objective, handed to an interchangeable engine. The model layer only
// depends on this package, never on a concrete solver.
package solver

import (
	"context"
	"fmt"
	"strings"
)

type VarID int

type VarKind int

const (
	Binary VarKind = iota
	Integer
)

type Variable struct {
	Name string
	Kind VarKind
	Lo   int64
	Hi   int64
}

type Relation int

const (
	Eq Relation = iota
	Le
	Ge
)

func (r Relation) String() string {
	switch r {
	case Eq:
		return "=="
	case Le:
		return "<="
	case Ge:
		return ">="
	}
	return "?"
}

type Term struct {
	Var   VarID
	Coeff int64
}

// Constraint is a linear expression related to a constant. Label names the
// business rule that produced it and is what infeasibility diagnostics
// report back.
type Constraint struct {
	Label string
	Terms []Term
	Rel   Relation
	RHS   int64
}

type Objective struct {
	Terms    []Term
	Maximize bool
}

// Problem is one complete model instance. Variables are identified by the
// dense VarID handed out at creation; names only matter for reporting.
type Problem struct {
	Vars        []Variable
	Constraints []Constraint
	Objective   Objective
}

func NewProblem() *Problem {
	return &Problem{}
}

func (p *Problem) AddBinary(name string) VarID {
	p.Vars = append(p.Vars, Variable{Name: name, Kind: Binary, Lo: 0, Hi: 1})
	return VarID(len(p.Vars) - 1)
}

func (p *Problem) AddInteger(name string, lo, hi int64) VarID {
	p.Vars = append(p.Vars, Variable{Name: name, Kind: Integer, Lo: lo, Hi: hi})
	return VarID(len(p.Vars) - 1)
}

func (p *Problem) AddConstraint(label string, terms []Term, rel Relation, rhs int64) {
	p.Constraints = append(p.Constraints, Constraint{Label: label, Terms: terms, Rel: rel, RHS: rhs})
}

func (p *Problem) SetObjective(terms []Term, maximize bool) {
	p.Objective = Objective{Terms: terms, Maximize: maximize}
}

func (p *Problem) Name(id VarID) string {
	return p.Vars[id].Name
}

// Violated evaluates a complete assignment of values (indexed by VarID)
// and returns the labels of every variable bound and constraint it
// breaks. Used for diagnostics and model verification.
func (p *Problem) Violated(values []int64) []string {
	var out []string
	for i, v := range p.Vars {
		if values[i] < v.Lo || values[i] > v.Hi {
			out = append(out, fmt.Sprintf("bounds[%s]", v.Name))
		}
	}
	for _, c := range p.Constraints {
		sum := int64(0)
		for _, t := range c.Terms {
			sum += t.Coeff * values[t.Var]
		}
		ok := false
		switch c.Rel {
		case Eq:
			ok = sum == c.RHS
		case Le:
			ok = sum <= c.RHS
		case Ge:
			ok = sum >= c.RHS
		}
		if !ok {
			out = append(out, c.Label)
		}
	}
	return out
}

// ObjectiveValue evaluates the objective for a complete assignment.
func (p *Problem) ObjectiveValue(values []int64) int64 {
	sum := int64(0)
	for _, t := range p.Objective.Terms {
		sum += t.Coeff * values[t.Var]
	}
	return sum
}

// Value is one solved variable. Engines only report variables with a
// non-zero value.
type Value struct {
	Name  string
	Value float64
}

type Result struct {
	Optimal   bool
	Objective float64
	Values    []Value
}

// InfeasibleError reports that the model admits no solution. When the
// engine ran with diagnosis enabled, Conflicts holds the labels of a
// constraint subset that is already unsatisfiable on its own.
type InfeasibleError struct {
	Conflicts []string
}

func (e *InfeasibleError) Error() string {
	if len(e.Conflicts) == 0 {
		return "model is infeasible"
	}
	return fmt.Sprintf("model is infeasible; conflicting constraints: %s", strings.Join(e.Conflicts, "; "))
}

type Engine interface {
	Solve(ctx context.Context, p *Problem) (*Result, error)
}
