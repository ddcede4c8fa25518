package ddt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/guadaltel/etf-result-checker/internal/etf"
	"github.com/guadaltel/etf-result-checker/internal/logging"
)

// RemoteCatalog exposes the remote lookup capabilities the resolver
// needs: by id, by label, and by tag, over run templates and executable
// test suites.
type RemoteCatalog interface {
	TemplateByID(ctx context.Context, id string) (etf.TestRunTemplate, error)
	TemplateByLabel(ctx context.Context, label string) (etf.TestRunTemplate, error)
	SuiteByID(ctx context.Context, id string) (etf.ExecutableTestSuite, error)
	SuiteByLabel(ctx context.Context, label string) (etf.ExecutableTestSuite, error)
	SuitesByID(ctx context.Context, ids []string) ([]etf.ExecutableTestSuite, error)
	SuitesByTag(ctx context.Context, tagLabel string) ([]etf.ExecutableTestSuite, error)

	Templates(ctx context.Context) ([]etf.TestRunTemplate, error)
	Suites(ctx context.Context) ([]etf.ExecutableTestSuite, error)
	Tags(ctx context.Context) ([]etf.Tag, error)
}

// ErrNoResolvableProperty is returned when a run specification names no
// resolution property at all.
var ErrNoResolvableProperty = errors.New("no resolvable property provided")

// ResolutionError reports a named target missing from the remote
// catalog.
type ResolutionError struct {
	Kind string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("at least one %s could not be found: %v", e.Kind, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// resolveStrategy maps one run specification property to a catalog
// lookup producing an executable target, with a diagnostic action that
// lists the catalog's available candidates.
type resolveStrategy struct {
	kind     string
	property string
	lookup   func(ctx context.Context, cat RemoteCatalog, values []string) (etf.Executable, error)
	list     func(ctx context.Context, cat RemoteCatalog, logger zerolog.Logger) error
}

// resolveStrategies is the static priority table. Every strategy whose
// property is present in the specification is evaluated in table order
// and each success overwrites the previous candidate: the LAST matching
// strategy wins, not the first. This is intentional - a specification
// can carry both fallback and override properties, and specification
// order decides which governs.
var resolveStrategies = []resolveStrategy{
	{
		kind:     "Test Run Template",
		property: PropTestRunTemplateID,
		lookup: func(ctx context.Context, cat RemoteCatalog, values []string) (etf.Executable, error) {
			t, err := cat.TemplateByID(ctx, values[0])
			if err != nil {
				return etf.Executable{}, err
			}
			return etf.ExecutableFromTemplate(t), nil
		},
		list: listTemplates,
	},
	{
		kind:     "Test Run Template",
		property: PropTestRunTemplateName,
		lookup: func(ctx context.Context, cat RemoteCatalog, values []string) (etf.Executable, error) {
			t, err := cat.TemplateByLabel(ctx, values[0])
			if err != nil {
				return etf.Executable{}, err
			}
			return etf.ExecutableFromTemplate(t), nil
		},
		list: listTemplates,
	},
	{
		kind:     "Executable Test Suite",
		property: PropExecutableTestSuiteName,
		lookup: func(ctx context.Context, cat RemoteCatalog, values []string) (etf.Executable, error) {
			s, err := cat.SuiteByLabel(ctx, values[0])
			if err != nil {
				return etf.Executable{}, err
			}
			return etf.ExecutableFromSuites(s), nil
		},
		list: listSuites,
	},
	{
		kind:     "Executable Test Suite",
		property: PropExecutableTestSuiteID,
		lookup: func(ctx context.Context, cat RemoteCatalog, values []string) (etf.Executable, error) {
			s, err := cat.SuiteByID(ctx, values[0])
			if err != nil {
				return etf.Executable{}, err
			}
			return etf.ExecutableFromSuites(s), nil
		},
		list: listSuites,
	},
	{
		kind:     "Executable Test Suite",
		property: PropExecutableTestSuiteIDs,
		lookup: func(ctx context.Context, cat RemoteCatalog, values []string) (etf.Executable, error) {
			suites, err := cat.SuitesByID(ctx, values)
			if err != nil {
				return etf.Executable{}, err
			}
			return etf.ExecutableFromSuites(suites...), nil
		},
		list: listSuites,
	},
	{
		kind:     "Executable Test Suite",
		property: PropTagName,
		lookup: func(ctx context.Context, cat RemoteCatalog, values []string) (etf.Executable, error) {
			suites, err := cat.SuitesByTag(ctx, values[0])
			if err != nil {
				return etf.Executable{}, err
			}
			return etf.ExecutableFromSuites(suites...), nil
		},
		list: listTags,
	},
}

// ResolveExecutable turns a run specification into exactly one
// executable target using the strategy table. A lookup miss logs the
// catalog's full available-candidates listing and fails naming the
// strategy's target kind.
func ResolveExecutable(ctx context.Context, cat RemoteCatalog, spec *RunSpec) (etf.Executable, error) {
	logger := logging.Component("resolver")

	var candidate etf.Executable
	resolved := false

	for _, strategy := range resolveStrategies {
		values := spec.propertyValues(strategy.property)
		if values == nil {
			continue
		}

		logger.Info().
			Str("property", strategy.property).
			Str("values", strings.Join(values, ",")).
			Msgf("using %s", strategy.kind)

		exec, err := strategy.lookup(ctx, cat, values)
		if err != nil {
			if errors.Is(err, etf.ErrNotFound) {
				logger.Error().Str("kind", strategy.kind).Msg("at least one lookup target could not be found")
				if listErr := strategy.list(ctx, cat, logger); listErr != nil {
					logger.Warn().Err(listErr).Msg("listing available candidates failed")
				}
				return etf.Executable{}, &ResolutionError{Kind: strategy.kind, Err: err}
			}
			return etf.Executable{}, err
		}

		candidate = exec
		resolved = true
	}

	if !resolved {
		return etf.Executable{}, fmt.Errorf("%w: one of %s, %s, %s, %s, %s or %s is required",
			ErrNoResolvableProperty,
			PropTestRunTemplateID, PropTestRunTemplateName,
			PropExecutableTestSuiteName, PropExecutableTestSuiteID,
			PropExecutableTestSuiteIDs, PropTagName)
	}
	return candidate, nil
}

func listTemplates(ctx context.Context, cat RemoteCatalog, logger zerolog.Logger) error {
	items, err := cat.Templates(ctx)
	if err != nil {
		return err
	}
	logger.Info().Msg("available Test Run Templates:")
	for _, item := range items {
		logger.Info().Msgf(" - %s", item)
	}
	return nil
}

func listSuites(ctx context.Context, cat RemoteCatalog, logger zerolog.Logger) error {
	items, err := cat.Suites(ctx)
	if err != nil {
		return err
	}
	logger.Info().Msg("available Executable Test Suites:")
	for _, item := range items {
		logger.Info().Msgf(" - %s", item)
	}
	return nil
}

func listTags(ctx context.Context, cat RemoteCatalog, logger zerolog.Logger) error {
	items, err := cat.Tags(ctx)
	if err != nil {
		return err
	}
	logger.Info().Msg("available Tags:")
	for _, item := range items {
		logger.Info().Msgf(" - %s", item)
	}
	return nil
}
