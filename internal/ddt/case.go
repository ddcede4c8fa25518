// Package ddt drives data-driven conformance checks against a remote
// validation service. It prepares test suites from declarative suite
// directories, resolves run specifications into executable targets,
// correlates asynchronously delivered assertion results with waiting
// test cases, and compares them against declared expectations.
package ddt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/guadaltel/etf-result-checker/internal/etf"
)

// WildcardLabel is the reserved expectation label matching every
// assertion that has no named expected case.
const WildcardLabel = "*"

// ExpectedCase is the declarative expectation for one assertion label,
// or for the wildcard fallback. Immutable after suite preparation.
type ExpectedCase struct {
	// Label is the assertion label, or WildcardLabel.
	Label string

	// ExpectedStatus is the required result status.
	ExpectedStatus etf.ResultStatus

	// Description is free text carried from the expectation file.
	Description string

	// MaxDuration is the optional upper bound on assertion execution
	// time. Nil means unchecked.
	MaxDuration *time.Duration

	// ExpectedMessages is the optional set of expected messages,
	// compared after normalization. Nil means unchecked.
	ExpectedMessages []string

	// ExpectedMessageCount is the optional exact message count. Nil
	// means unchecked.
	ExpectedMessageCount *int
}

// expectedCaseWire is the expectation file representation of one case.
type expectedCaseWire struct {
	ExpectedResult       string   `json:"expectedResult"`
	Description          string   `json:"description,omitempty"`
	MaxDurationMS        *int64   `json:"maxDurationMs,omitempty"`
	ExpectedMessages     []string `json:"expectedMessages,omitempty"`
	ExpectedMessageCount *int     `json:"expectedMessageCount,omitempty"`
}

// UnmarshalJSON decodes an expected case, validating the status.
func (c *ExpectedCase) UnmarshalJSON(data []byte) error {
	var w expectedCaseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ExpectedResult == "" {
		return fmt.Errorf("expectedResult is required")
	}
	status, err := etf.ParseResultStatus(w.ExpectedResult)
	if err != nil {
		return fmt.Errorf("invalid expectedResult: %w", err)
	}
	c.ExpectedStatus = status
	c.Description = w.Description
	if w.MaxDurationMS != nil {
		d := time.Duration(*w.MaxDurationMS) * time.Millisecond
		c.MaxDuration = &d
	}
	c.ExpectedMessages = w.ExpectedMessages
	c.ExpectedMessageCount = w.ExpectedMessageCount
	return nil
}
