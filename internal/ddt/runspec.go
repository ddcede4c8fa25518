package ddt

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/guadaltel/etf-result-checker/internal/etf"
)

// Run specification property keys recognized by the resolver, in
// strategy order.
const (
	PropTestRunTemplateID       = "testRunTemplateId"
	PropTestRunTemplateName     = "testRunTemplateName"
	PropExecutableTestSuiteName = "executableTestSuiteName"
	PropExecutableTestSuiteID   = "executableTestSuiteId"
	PropExecutableTestSuiteIDs  = "executableTestSuiteIds"
	PropTagName                 = "tagName"
)

// RunSpec is the declarative description of one remote run: exactly one
// resolution target, optional run arguments, and a data source used when
// the suite directory supplies no data archive.
type RunSpec struct {
	TestRunTemplateID       string   `json:"testRunTemplateId"`
	TestRunTemplateName     string   `json:"testRunTemplateName"`
	ExecutableTestSuiteName string   `json:"executableTestSuiteName"`
	ExecutableTestSuiteID   string   `json:"executableTestSuiteId"`
	ExecutableTestSuiteIDs  []string `json:"executableTestSuiteIds"`
	TagName                 string   `json:"tagName"`

	// Arguments are forwarded as run parameters. Non-string values in
	// the file are stringified.
	Arguments map[string]string `json:"-"`

	// Endpoint is the service URL data source.
	Endpoint string `json:"endpoint"`

	// URL is the dataset URL data source.
	URL string `json:"url"`
}

// runSpecWire captures the raw arguments mapping, whose values may be
// any JSON scalar.
type runSpecWire struct {
	Arguments map[string]any `json:"arguments"`
}

// LoadRunSpec parses a run specification file.
func LoadRunSpec(path string) (*RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run specification: %w", err)
	}

	var spec RunSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("malformed run specification %s: %w", path, err)
	}

	var wire runSpecWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("malformed run specification %s: %w", path, err)
	}
	if wire.Arguments != nil {
		spec.Arguments = make(map[string]string, len(wire.Arguments))
		for k, v := range wire.Arguments {
			spec.Arguments[k] = fmt.Sprintf("%v", v)
		}
	}

	return &spec, nil
}

// propertyValues returns the values the given resolution property holds
// in this specification, or nil when the property is absent.
func (s *RunSpec) propertyValues(property string) []string {
	switch property {
	case PropTestRunTemplateID:
		if s.TestRunTemplateID != "" {
			return []string{s.TestRunTemplateID}
		}
	case PropTestRunTemplateName:
		if s.TestRunTemplateName != "" {
			return []string{s.TestRunTemplateName}
		}
	case PropExecutableTestSuiteName:
		if s.ExecutableTestSuiteName != "" {
			return []string{s.ExecutableTestSuiteName}
		}
	case PropExecutableTestSuiteID:
		if s.ExecutableTestSuiteID != "" {
			return []string{s.ExecutableTestSuiteID}
		}
	case PropExecutableTestSuiteIDs:
		if len(s.ExecutableTestSuiteIDs) > 0 {
			return s.ExecutableTestSuiteIDs
		}
	case PropTagName:
		if s.TagName != "" {
			return []string{s.TagName}
		}
	}
	return nil
}

// DataSource builds the test object for the run. A data archive in the
// suite directory takes precedence; otherwise the specification must
// name a service endpoint or a dataset URL.
func (s *RunSpec) DataSource(archivePath string) (etf.TestObject, error) {
	switch {
	case archivePath != "":
		return etf.TestObjectFromArchive(archivePath), nil
	case s.Endpoint != "":
		return etf.TestObjectFromService(s.Endpoint), nil
	case s.URL != "":
		return etf.TestObjectFromDataSetURL(s.URL), nil
	default:
		return etf.TestObject{}, fmt.Errorf("no data source: the suite directory has no data archive and the run specification sets neither %q nor %q", "endpoint", "url")
	}
}
