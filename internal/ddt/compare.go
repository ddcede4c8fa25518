package ddt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/guadaltel/etf-result-checker/internal/etf"
	"github.com/guadaltel/etf-result-checker/internal/logging"
)

var (
	spaceRuns  = regexp.MustCompile(" +")
	lineBreaks = regexp.MustCompile(`\r\n?`)
)

// Normalize canonicalizes a message for comparison: surrounding
// whitespace is trimmed, runs of interior spaces collapse to one space,
// and all line-break variants become "\n". Normalizing an already
// normalized message is a no-op.
func Normalize(message string) string {
	normalized := strings.TrimSpace(message)
	normalized = spaceRuns.ReplaceAllString(normalized, " ")
	return lineBreaks.ReplaceAllString(normalized, "\n")
}

// ComparisonError reports every condition a delivered result violated.
type ComparisonError struct {
	Label      string
	Violations []string
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("assertion %q: %s", e.Label, strings.Join(e.Violations, "; "))
}

// Compare checks one delivered result against one expected case. It is
// pure except for diagnostic logging of message mismatches. Conditions
// are evaluated in fixed order: status, maximum duration, message count,
// message set. A status or duration mismatch fails immediately; the
// message count and message set checks both run when both are declared,
// and every violation is reported.
func Compare(result etf.AssertionResult, expected *ExpectedCase) error {
	logger := logging.WithTestCase(expected.Label)

	if result.Status != expected.ExpectedStatus {
		return &ComparisonError{Label: expected.Label, Violations: []string{
			fmt.Sprintf("result status does not match expected status: expected %s, got %s",
				expected.ExpectedStatus, result.Status),
		}}
	}

	if expected.MaxDuration != nil && result.Duration > *expected.MaxDuration {
		return &ComparisonError{Label: expected.Label, Violations: []string{
			fmt.Sprintf("execution time exceeds the maximum expected duration: expected at most %dms, got %dms",
				expected.MaxDuration.Milliseconds(), result.Duration.Milliseconds()),
		}}
	}

	var violations []string

	if expected.ExpectedMessageCount != nil && len(result.Messages) != *expected.ExpectedMessageCount {
		violations = append(violations,
			fmt.Sprintf("message count does not match the expected count: expected %d, got %d",
				*expected.ExpectedMessageCount, len(result.Messages)))
	}

	if expected.ExpectedMessages != nil {
		violations = append(violations, compareMessages(logger, result.Messages, expected.ExpectedMessages)...)
	}

	if len(violations) > 0 {
		return &ComparisonError{Label: expected.Label, Violations: violations}
	}
	return nil
}

// compareMessages computes the two-way set difference between delivered
// and expected messages after normalization. Missing and unexpected
// messages are independent failure classes; all of them are logged
// before the violations are returned.
func compareMessages(logger zerolog.Logger, delivered, expected []string) []string {
	remaining := make(map[string]int, len(expected))
	for _, m := range expected {
		remaining[Normalize(m)]++
	}

	var unexpected []string
	for _, m := range delivered {
		normalized := Normalize(m)
		if remaining[normalized] > 0 {
			remaining[normalized]--
			if remaining[normalized] == 0 {
				delete(remaining, normalized)
			}
		} else {
			unexpected = append(unexpected, normalized)
		}
	}

	var violations []string
	if len(remaining) > 0 {
		missing := 0
		for m, n := range remaining {
			for i := 0; i < n; i++ {
				logger.Error().Str("message", m).Msg("expected message not found")
				missing++
			}
		}
		violations = append(violations, fmt.Sprintf("%d expected message(s) were not found", missing))
	}
	if len(unexpected) > 0 {
		for _, m := range unexpected {
			logger.Error().Str("message", m).Msg("message not expected")
		}
		violations = append(violations, fmt.Sprintf("%d message(s) were not expected", len(unexpected)))
	}
	return violations
}
