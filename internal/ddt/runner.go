package ddt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/guadaltel/etf-result-checker/internal/logging"
)

// AvailabilityProber is the endpoint liveness probe consumed around each
// test case. *etf.Client satisfies it.
type AvailabilityProber interface {
	Available(ctx context.Context) bool
}

// Runner walks a suites directory and drives every suite: preparation,
// run submission, one worker per test case, and report aggregation.
type Runner struct {
	executor RunExecutor
	catalog  RemoteCatalog
	prober   AvailabilityProber
	logger   zerolog.Logger
}

// NewRunner creates a runner over the given collaborators.
func NewRunner(executor RunExecutor, catalog RemoteCatalog, prober AvailabilityProber) *Runner {
	return &Runner{
		executor: executor,
		catalog:  catalog,
		prober:   prober,
		logger:   logging.Component("runner"),
	}
}

// RunAll executes every suite subdirectory of dir, one run per suite,
// and returns the aggregated report. Suite failures are isolated: one
// broken suite never stops its siblings.
func (r *Runner) RunAll(ctx context.Context, dir string) (*Report, error) {
	suiteDirs, err := listSuiteDirs(dir)
	if err != nil {
		return nil, err
	}
	if len(suiteDirs) == 0 {
		return nil, fmt.Errorf("no suite directories found in %s", dir)
	}

	report := &Report{}
	for _, suiteDir := range suiteDirs {
		report.Suites = append(report.Suites, r.runSuite(ctx, suiteDir))
	}
	return report, nil
}

// RunOne executes a single suite directory.
func (r *Runner) RunOne(ctx context.Context, dir string) (*Report, error) {
	return &Report{Suites: []SuiteReport{r.runSuite(ctx, dir)}}, nil
}

// listSuiteDirs returns every subdirectory of dir, sorted by name.
func listSuiteDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing suites directory: %w", err)
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// runSuite drives one suite from preparation to its final report.
// Preparation and resolution errors fail the suite fast with zero case
// results reported.
func (r *Runner) runSuite(ctx context.Context, dir string) SuiteReport {
	name := filepath.Base(dir)
	logger := logging.WithSuite(name)
	report := SuiteReport{Name: name}

	if !r.prober.Available(ctx) {
		report.Error = "endpoint down"
		return report
	}

	suite, err := PrepareSuite(dir)
	if err != nil {
		logger.Error().Err(err).Msg("failed to prepare test suite")
		report.Error = fmt.Sprintf("failed to prepare test suite: %v", err)
		return report
	}

	if err := suite.Start(ctx, r.executor, r.catalog); err != nil {
		logger.Error().Err(err).Msg("failed to start test suite")
		report.Error = fmt.Sprintf("failed to start test suite: %v", err)
		return report
	}

	if suite.GenerateMode() {
		report.Generated = true
		return report
	}

	report.Cases = r.runCases(ctx, suite)

	// A structural remote failure fails the whole suite rather than any
	// individual case.
	if err := suite.RunErr(); err != nil {
		report.Error = fmt.Sprintf("test run failed: %v", err)
	}

	if !r.prober.Available(ctx) && report.Error == "" {
		report.Error = "endpoint down"
	}
	return report
}

// runCases spawns one worker per test case, each issuing exactly one
// blocking wait-and-compare call, and collects the outcomes.
func (r *Runner) runCases(ctx context.Context, suite *Suite) []CaseResult {
	labels := suite.CaseLabels()
	results := make([]CaseResult, len(labels))

	g, _ := errgroup.WithContext(ctx)
	for i, label := range labels {
		g.Go(func() error {
			started := time.Now()
			err := suite.WaitAndCompare(label)
			elapsed := time.Since(started)

			result := CaseResult{
				Suite:   suite.Name(),
				Label:   label,
				Passed:  err == nil,
				Elapsed: elapsed,
			}
			caseLogger := logging.WithTestCase(label)
			if err != nil {
				result.Failure = err.Error()
				caseLogger.Error().Err(err).Str("suite", suite.Name()).Msg("test case failed")
			} else {
				caseLogger.Debug().Str("suite", suite.Name()).Msg("test case passed")
			}

			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	return results
}
