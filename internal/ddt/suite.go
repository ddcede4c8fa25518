package ddt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/guadaltel/etf-result-checker/internal/etf"
	"github.com/guadaltel/etf-result-checker/internal/logging"
)

// Run specification and expectation file names inside a suite directory.
const (
	RunFileName      = "run.json"
	ExpectedFileName = "expected.json"
)

// RunExecutor submits remote runs. *etf.Client satisfies it; tests
// substitute fakes.
type RunExecutor interface {
	Execute(ctx context.Context, exec etf.Executable, obj etf.TestObject, args map[string]string, observer etf.RunObserver) error
	ExecuteSync(ctx context.Context, exec etf.Executable, obj etf.TestObject, args map[string]string) (*etf.RunResult, error)
}

// Suite is one prepared suite directory: its run specification, its
// optional data archive, its expectation store, and - once started - the
// correlator owning all case bindings.
type Suite struct {
	dir          string
	name         string
	dataFile     string
	runFile      string
	expectedFile string

	spec         *RunSpec
	store        *ExpectationStore
	generateMode bool

	correlator *Correlator
	logger     zerolog.Logger
}

// PrepareSuite reads one suite directory. It fails before any remote
// call on a missing run specification, a malformed file, or multiple
// ambiguous data archives. A missing expectation file switches the suite
// into template-generation mode.
func PrepareSuite(dir string) (*Suite, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("suite directory not readable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("suite path %s is not a directory", dir)
	}

	s := &Suite{
		dir:          dir,
		name:         filepath.Base(dir),
		runFile:      filepath.Join(dir, RunFileName),
		expectedFile: filepath.Join(dir, ExpectedFileName),
	}
	s.logger = logging.WithSuite(s.name)

	archives, err := listArchives(dir)
	if err != nil {
		return nil, err
	}
	switch len(archives) {
	case 0:
	case 1:
		s.dataFile = archives[0]
	default:
		return nil, fmt.Errorf("only one ZIP file is supported, multiple ZIP files found in directory %s", dir)
	}

	s.spec, err = LoadRunSpec(s.runFile)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(s.expectedFile); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("expectation file not readable: %w", err)
		}
		s.generateMode = true
		s.store = &ExpectationStore{Cases: map[string]*ExpectedCase{}}
		s.logger.Info().Msg("the expected.json file does not exist, generating a template based on the results of this run")
	} else {
		s.store, err = LoadExpectations(s.expectedFile)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// listArchives finds the data archives in a suite directory.
func listArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing suite directory: %w", err)
	}
	var archives []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".zip") {
			archives = append(archives, filepath.Join(dir, entry.Name()))
		}
	}
	return archives, nil
}

// Name returns the suite directory's base name.
func (s *Suite) Name() string {
	return s.name
}

// GenerateMode reports whether the suite has no expectation file and
// will generate one instead of comparing.
func (s *Suite) GenerateMode() bool {
	return s.generateMode
}

// CaseLabels returns one label per test case the suite will report.
// Empty until Start has built the correlator; empty in generate mode.
func (s *Suite) CaseLabels() []string {
	if s.correlator == nil {
		return nil
	}
	return s.correlator.Labels()
}

// Start resolves the run specification and submits the remote run.
//
// In comparison mode the run is observed by the suite's correlator and
// Start returns as soon as the submission is accepted; callers then
// drive one WaitAndCompare per case label. In generate mode Start blocks
// for the whole run and writes a fresh expectation file instead.
func (s *Suite) Start(ctx context.Context, executor RunExecutor, cat RemoteCatalog) error {
	exec, err := ResolveExecutable(ctx, cat, s.spec)
	if err != nil {
		return err
	}

	obj, err := s.spec.DataSource(s.dataFile)
	if err != nil {
		return err
	}

	if s.generateMode {
		run, err := executor.ExecuteSync(ctx, exec, obj, s.spec.Arguments)
		if err != nil {
			s.logger.Error().Err(err).Msg("can not generate a template from a failed test run")
			return err
		}
		if err := WriteTemplate(s.expectedFile, run); err != nil {
			return err
		}
		s.logger.Info().Str("file", s.expectedFile).Msg("expectation template generated")
		return nil
	}

	s.correlator = NewCorrelator(s.store)
	return executor.Execute(ctx, exec, obj, s.spec.Arguments, s.correlator)
}

// WaitAndCompare blocks until the labeled case's result(s) arrive or the
// run's terminal signal fires, then compares. One call per case label,
// safe to issue concurrently across labels.
func (s *Suite) WaitAndCompare(label string) error {
	if s.correlator == nil {
		return fmt.Errorf("suite %s has not been started", s.name)
	}
	return s.correlator.WaitAndCompare(label)
}

// RunErr returns the structural remote failure of the suite's run, if
// any.
func (s *Suite) RunErr() error {
	if s.correlator == nil {
		return nil
	}
	return s.correlator.RunErr()
}
