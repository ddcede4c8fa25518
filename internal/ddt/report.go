package ddt

import "time"

// CaseResult is one reportable test outcome.
type CaseResult struct {
	Suite   string        `json:"suite"`
	Label   string        `json:"label"`
	Passed  bool          `json:"passed"`
	Failure string        `json:"failure,omitempty"`
	Elapsed time.Duration `json:"elapsed_ms"`
}

// SuiteReport aggregates one suite's outcome. A suite that failed
// preparation or resolution reports its error and zero cases.
type SuiteReport struct {
	Name      string       `json:"name"`
	Generated bool         `json:"generated,omitempty"`
	Error     string       `json:"error,omitempty"`
	Cases     []CaseResult `json:"cases,omitempty"`
}

// Failed reports whether the suite failed structurally or has a failing
// case.
func (r *SuiteReport) Failed() bool {
	if r.Error != "" {
		return true
	}
	for _, c := range r.Cases {
		if !c.Passed {
			return true
		}
	}
	return false
}

// Report is the outcome of one runner invocation.
type Report struct {
	Suites []SuiteReport `json:"suites"`
}

// Failed reports whether any suite failed.
func (r *Report) Failed() bool {
	for i := range r.Suites {
		if r.Suites[i].Failed() {
			return true
		}
	}
	return false
}

// Counts returns the total and failed case counts.
func (r *Report) Counts() (total, failed int) {
	for _, s := range r.Suites {
		for _, c := range s.Cases {
			total++
			if !c.Passed {
				failed++
			}
		}
	}
	return total, failed
}
