package ddt

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/guadaltel/etf-result-checker/internal/etf"
)

// GeneratedDescription marks every case in a generated expectation file.
const GeneratedDescription = "Generated from Test Run"

// templateEntry is one generated expected case. Field order fixes the
// key order in the generated file.
type templateEntry struct {
	ExpectedResult       etf.ResultStatus `json:"expectedResult"`
	Description          string           `json:"description"`
	ExpectedMessageCount *int             `json:"expectedMessageCount,omitempty"`
	ExpectedMessages     []string         `json:"expectedMessages,omitempty"`
}

// WriteTemplate serializes a completed run into a new expectation file.
// The object literal is framed manually and written one assertion
// fragment at a time, so memory stays bounded for large runs. Per label:
// the actual status, the generated-from-run description, and either a
// zero message count or the full message list. maxDurationMs is never
// generated.
func WriteTemplate(path string, run *etf.RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating expectation file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString("{"); err != nil {
		return fmt.Errorf("writing expectation file: %w", err)
	}

	oneWritten := false
	for _, assertion := range run.Assertions {
		if oneWritten {
			if _, err := w.WriteString(","); err != nil {
				return fmt.Errorf("writing expectation file: %w", err)
			}
		}
		oneWritten = true

		if err := writeTemplateEntry(w, assertion); err != nil {
			return fmt.Errorf("writing expectation file: %w", err)
		}
	}

	if _, err := w.WriteString("\n}\n"); err != nil {
		return fmt.Errorf("writing expectation file: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing expectation file: %w", err)
	}
	return nil
}

// writeTemplateEntry writes one "label": {...} fragment.
func writeTemplateEntry(w *bufio.Writer, assertion etf.AssertionResult) error {
	entry := templateEntry{
		ExpectedResult: assertion.Status,
		Description:    GeneratedDescription,
	}
	if len(assertion.Messages) == 0 {
		zero := 0
		entry.ExpectedMessageCount = &zero
	} else {
		entry.ExpectedMessages = assertion.Messages
	}

	key, err := json.Marshal(assertion.Label)
	if err != nil {
		return err
	}
	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if _, err := w.WriteString("\n  "); err != nil {
		return err
	}
	if _, err := w.Write(key); err != nil {
		return err
	}
	if _, err := w.WriteString(": "); err != nil {
		return err
	}
	_, err = w.Write(value)
	return err
}
