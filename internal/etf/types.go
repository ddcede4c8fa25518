// Package etf implements a client for the remote ETF validation service.
// It covers catalog lookups, ad hoc test object creation, test run
// submission, and asynchronous delivery of assertion results to an
// observer.
package etf

import (
	"encoding/json"
	"fmt"
	"time"
)

// ResultStatus is the enumerated outcome of a test assertion or run.
type ResultStatus string

// Result statuses reported by the validation service.
const (
	StatusPassed        ResultStatus = "PASSED"
	StatusFailed        ResultStatus = "FAILED"
	StatusWarning       ResultStatus = "WARNING"
	StatusSkipped       ResultStatus = "SKIPPED"
	StatusNotApplicable ResultStatus = "NOT_APPLICABLE"
	StatusInfo          ResultStatus = "INFO"
	StatusPassedManual  ResultStatus = "PASSED_MANUAL"
	StatusUndefined     ResultStatus = "UNDEFINED"
	StatusInternalError ResultStatus = "INTERNAL_ERROR"
)

var knownStatuses = map[ResultStatus]struct{}{
	StatusPassed:        {},
	StatusFailed:        {},
	StatusWarning:       {},
	StatusSkipped:       {},
	StatusNotApplicable: {},
	StatusInfo:          {},
	StatusPassedManual:  {},
	StatusUndefined:     {},
	StatusInternalError: {},
}

// ParseResultStatus validates a status string from the service or from an
// expectation file. The match is case-sensitive.
func ParseResultStatus(s string) (ResultStatus, error) {
	status := ResultStatus(s)
	if _, ok := knownStatuses[status]; !ok {
		return StatusUndefined, fmt.Errorf("unknown result status %q", s)
	}
	return status, nil
}

// AssertionResult is one outcome produced by a remote run for a single
// named check.
type AssertionResult struct {
	Label    string
	Status   ResultStatus
	Duration time.Duration
	Messages []string
}

// assertionResultWire is the JSON representation; durations travel as
// integer milliseconds.
type assertionResultWire struct {
	Label      string       `json:"label"`
	Status     ResultStatus `json:"status"`
	DurationMS int64        `json:"duration"`
	Messages   []string     `json:"messages"`
}

// UnmarshalJSON decodes an assertion result from the wire format.
func (a *AssertionResult) UnmarshalJSON(data []byte) error {
	var w assertionResultWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	a.Label = w.Label
	a.Status = w.Status
	a.Duration = time.Duration(w.DurationMS) * time.Millisecond
	a.Messages = w.Messages
	return nil
}

// MarshalJSON encodes an assertion result in the wire format.
func (a AssertionResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(assertionResultWire{
		Label:      a.Label,
		Status:     a.Status,
		DurationMS: a.Duration.Milliseconds(),
		Messages:   a.Messages,
	})
}

// RunResult is the completed outcome of one remote test run.
type RunResult struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Status     ResultStatus      `json:"status"`
	Assertions []AssertionResult `json:"testResults"`
}

// TestRunTemplate is a run template catalog entry.
type TestRunTemplate struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

func (t TestRunTemplate) String() string {
	return fmt.Sprintf("%s (%s)", t.Label, t.ID)
}

// ExecutableTestSuite is an executable test suite catalog entry.
type ExecutableTestSuite struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	TagIDs      []string `json:"tagIds"`
}

func (s ExecutableTestSuite) String() string {
	return fmt.Sprintf("%s (%s)", s.Label, s.ID)
}

// Tag groups executable test suites in the remote catalog.
type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (t Tag) String() string {
	return fmt.Sprintf("%s (%s)", t.Label, t.ID)
}

// RunObserver receives the result stream of one remote run.
//
// ResultDelivered is invoked once per assertion result, in arrival order.
// RunFinished is invoked exactly once, after every result the run will
// ever produce has been delivered. ExceptionOccurred replaces RunFinished
// when the remote execution fails structurally; no further callbacks
// follow it.
type RunObserver interface {
	ResultDelivered(result AssertionResult)
	RunFinished(run *RunResult)
	ExceptionOccurred(err error)
}
