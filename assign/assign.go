package assign

import (
	"context"

	log "github.com/golang/glog"

	"classrooms/solver"
)

// Outcome is the decoded result of one term's solve.
type Outcome struct {
	Rows                []Row
	CapacityDiagnostics []string
	OverrunDiagnostics  []string

	// Report is the raw "{identity}#{value}" listing of every selected
	// variable, the format persisted and published alongside the rows.
	Report []string

	Objective float64
	Optimal   bool
}

// Solve runs the full pipeline: builds the model, hands it to the
// engine, and decodes the selected variables back into assignment rows.
// An unsatisfiable model comes back as *solver.InfeasibleError.
func Solve(ctx context.Context, classrooms map[string]*Classroom, sections map[string]*Section, overrides []Override, cfg Config, engine solver.Engine) (*Outcome, error) {
	m := NewModel(classrooms, sections, cfg)
	if err := m.BuildConstraints(overrides); err != nil {
		return nil, err
	}
	m.BuildObjective()

	log.Infof("solving assignment model: %d classrooms, %d sections, %d variables, %d constraints",
		len(m.Classrooms), len(m.Sections), len(m.Problem.Vars), len(m.Problem.Constraints))

	result, err := engine.Solve(ctx, m.Problem)
	if err != nil {
		return nil, err
	}

	report := make([]string, 0, len(result.Values))
	for _, v := range result.Values {
		report = append(report, EncodeValue(v.Name, v.Value))
	}

	decoded, err := DecodeSolution(report, m.Sections)
	if err != nil {
		return nil, err
	}

	log.Infof("solved: objective %.0f, %d assignments, optimal=%v", result.Objective, len(decoded.Rows), result.Optimal)
	return &Outcome{
		Rows:                decoded.Rows,
		CapacityDiagnostics: decoded.CapacityDiagnostics,
		OverrunDiagnostics:  decoded.OverrunDiagnostics,
		Report:              report,
		Objective:           result.Objective,
		Optimal:             result.Optimal,
	}, nil
}
