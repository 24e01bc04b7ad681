package solver

import (
	"context"
	"fmt"
	"time"

	log "github.com/golang/glog"
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"google.golang.org/protobuf/proto"

	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
)

type CPSATConfig struct {
	TimeLimit time.Duration
	Workers   int
	LogSearch bool

	// Diagnose attaches an assumption literal to every constraint so an
	// infeasible solve can name a conflicting subset. It slows the solve
	// down, so batch runs enable it and the service leaves it off until a
	// solve comes back infeasible.
	Diagnose bool
}

// CPSAT solves problems with the CP-SAT solver. All model data is
// integral, so the MIP formulation maps onto it directly.
type CPSAT struct {
	cfg CPSATConfig
}

func NewCPSAT(cfg CPSATConfig) *CPSAT {
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = 5 * time.Minute
	}
	return &CPSAT{cfg: cfg}
}

func (s *CPSAT) Solve(ctx context.Context, p *Problem) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	builder, vars, assumptions, err := s.buildModel(p)
	if err != nil {
		return nil, err
	}

	m, err := builder.Model()
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate the model: %w", err)
	}

	limit := s.cfg.TimeLimit
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < limit {
			limit = left
		}
	}
	params := &sppb.SatParameters{
		MaxTimeInSeconds: proto.Float64(limit.Seconds()),
	}
	if s.cfg.Workers > 0 {
		params.NumWorkers = proto.Int32(int32(s.cfg.Workers))
	}
	if s.cfg.LogSearch {
		params.LogSearchProgress = proto.Bool(true)
	}

	start := time.Now()
	response, err := cpmodel.SolveCpModelWithParameters(m, params)
	if err != nil {
		return nil, fmt.Errorf("failed to solve the model: %w", err)
	}
	log.V(1).Infof("cpsat finished in %v with status %s", time.Since(start), response.GetStatus())

	switch response.GetStatus() {
	case cmpb.CpSolverStatus_OPTIMAL, cmpb.CpSolverStatus_FEASIBLE:
		res := &Result{
			Optimal:   response.GetStatus() == cmpb.CpSolverStatus_OPTIMAL,
			Objective: response.GetObjectiveValue(),
		}
		for i, v := range vars {
			val := cpmodel.SolutionIntegerValue(response, v)
			if val != 0 {
				res.Values = append(res.Values, Value{Name: p.Vars[i].Name, Value: float64(val)})
			}
		}
		return res, nil

	case cmpb.CpSolverStatus_INFEASIBLE:
		ie := &InfeasibleError{}
		for _, index := range response.GetSufficientAssumptionsForInfeasibility() {
			if label, ok := assumptions[index]; ok {
				ie.Conflicts = append(ie.Conflicts, label)
			}
		}
		return nil, ie

	default:
		return nil, fmt.Errorf("solver returned status %s", response.GetStatus())
	}
}

func (s *CPSAT) buildModel(p *Problem) (*cpmodel.Builder, []cpmodel.IntVar, map[int32]string, error) {
	builder := cpmodel.NewCpModelBuilder()

	vars := make([]cpmodel.IntVar, len(p.Vars))
	for i, v := range p.Vars {
		switch v.Kind {
		case Binary:
			vars[i] = builder.NewIntVar(0, 1).WithName(v.Name)
		case Integer:
			vars[i] = builder.NewIntVar(v.Lo, v.Hi).WithName(v.Name)
		default:
			return nil, nil, nil, fmt.Errorf("variable %q has unknown kind %d", v.Name, v.Kind)
		}
	}

	assumptions := make(map[int32]string)
	for _, c := range p.Constraints {
		expr := cpmodel.NewLinearExpr()
		for _, t := range c.Terms {
			if t.Var < 0 || int(t.Var) >= len(vars) {
				return nil, nil, nil, fmt.Errorf("constraint %q references unknown variable %d", c.Label, t.Var)
			}
			expr.AddTerm(vars[t.Var], t.Coeff)
		}
		rhs := cpmodel.NewConstant(c.RHS)

		var ct cpmodel.Constraint
		switch c.Rel {
		case Eq:
			ct = builder.AddEquality(expr, rhs)
		case Le:
			ct = builder.AddLessOrEqual(expr, rhs)
		case Ge:
			ct = builder.AddGreaterOrEqual(expr, rhs)
		default:
			return nil, nil, nil, fmt.Errorf("constraint %q has unknown relation %d", c.Label, c.Rel)
		}

		if s.cfg.Diagnose {
			lit := builder.NewBoolVar()
			ct.OnlyEnforceIf(lit)
			builder.AddAssumption(lit)
			assumptions[int32(lit.Index())] = c.Label
		}
	}

	obj := cpmodel.NewLinearExpr()
	for _, t := range p.Objective.Terms {
		obj.AddTerm(vars[t.Var], t.Coeff)
	}
	if p.Objective.Maximize {
		builder.Maximize(obj)
	} else {
		builder.Minimize(obj)
	}

	return builder, vars, assumptions, nil
}
