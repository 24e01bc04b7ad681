// Command assign runs the classroom assignment pipeline once, from CSV
// files or the planning spreadsheet, and writes the result files the
// allocation staff publish.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/golang/glog"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"classrooms/assign"
	"classrooms/csvio"
	"classrooms/sheets"
	"classrooms/solver"
)

var (
	classroomsPath = flag.String("classrooms", "", "classrooms CSV file")
	sectionsPath   = flag.String("sections", "", "sections CSV file")
	overridesPath  = flag.String("overrides", "", "manual placements CSV file (optional)")
	spreadsheetID  = flag.String("spreadsheet", "", "load input from this spreadsheet instead of CSV files")
	credentials    = flag.String("credentials", "", "Google service account credentials file")
	outDir         = flag.String("outdir", "results", "directory for result files")
	cohortRoom     = flag.String("cohort-room", "", "designated incoming-cohort classroom (overrides the default)")
	timeLimit      = flag.Duration("time-limit", 5*time.Minute, "solver time limit")
	workers        = flag.Int("workers", 0, "solver worker count (0 = solver default)")
	searchLog      = flag.Bool("search-log", false, "log solver search progress")
)

func main() {
	godotenv.Load()
	flag.Parse()
	defer log.Flush()

	ctx := context.Background()

	classrooms, sections, overrides, err := load(ctx)
	if err != nil {
		log.Exit(err)
	}
	log.Infof("loaded %d classrooms, %d sections, %d overrides", len(classrooms), len(sections), len(overrides))

	cfg := assign.DefaultConfig()
	if *cohortRoom != "" {
		cfg.DesignatedClassroom = *cohortRoom
	}
	engine := solver.NewCPSAT(solver.CPSATConfig{
		TimeLimit: *timeLimit,
		Workers:   *workers,
		LogSearch: *searchLog,
		Diagnose:  true,
	})

	outcome, err := assign.Solve(ctx, classrooms, sections, overrides, cfg, engine)
	if err != nil {
		var infeasible *solver.InfeasibleError
		if errors.As(err, &infeasible) {
			fmt.Fprintln(os.Stderr, "no feasible assignment exists")
			for _, c := range infeasible.Conflicts {
				fmt.Fprintln(os.Stderr, "  conflict:", c)
			}
			os.Exit(1)
		}
		log.Exit(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Exit(err)
	}
	if err := csvio.WriteAssignments(filepath.Join(*outDir, "assignment.csv"), outcome.Rows); err != nil {
		log.Exit(err)
	}
	if err := csvio.WriteDiagnostics(filepath.Join(*outDir, "cap_diff.csv"), outcome.CapacityDiagnostics); err != nil {
		log.Exit(err)
	}
	if err := csvio.WriteDiagnostics(filepath.Join(*outDir, "pnc.csv"), outcome.OverrunDiagnostics); err != nil {
		log.Exit(err)
	}

	fmt.Printf("objective: %.0f (optimal: %v)\n", outcome.Objective, outcome.Optimal)
	fmt.Printf("assignments: %d\n", len(outcome.Rows))
	if n := len(outcome.OverrunDiagnostics); n > 0 {
		fmt.Printf("classrooms over capacity: %d (see pnc.csv)\n", n)
	}
}

func load(ctx context.Context) (map[string]*assign.Classroom, map[string]*assign.Section, []assign.Override, error) {
	var (
		classrooms map[string]*assign.Classroom
		sections   map[string]*assign.Section
		err        error
	)

	switch {
	case *spreadsheetID != "":
		var opts []option.ClientOption
		if *credentials != "" {
			opts = append(opts, option.WithCredentialsFile(*credentials))
		}
		loader, lerr := sheets.NewLoader(ctx, opts...)
		if lerr != nil {
			return nil, nil, nil, lerr
		}
		if classrooms, err = loader.Classrooms(*spreadsheetID); err != nil {
			return nil, nil, nil, err
		}
		if sections, err = loader.Sections(*spreadsheetID); err != nil {
			return nil, nil, nil, err
		}

	case *classroomsPath != "" && *sectionsPath != "":
		if classrooms, err = csvio.LoadClassrooms(*classroomsPath); err != nil {
			return nil, nil, nil, err
		}
		if sections, err = csvio.LoadSections(*sectionsPath); err != nil {
			return nil, nil, nil, err
		}

	default:
		return nil, nil, nil, errors.New("either -spreadsheet or both -classrooms and -sections are required")
	}

	var overrides []assign.Override
	if *overridesPath != "" {
		if overrides, err = csvio.LoadOverrides(*overridesPath); err != nil {
			return nil, nil, nil, err
		}
	}
	return classrooms, sections, overrides, nil
}
