package ddt

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/guadaltel/etf-result-checker/internal/etf"
	"github.com/guadaltel/etf-result-checker/internal/logging"
)

// ErrNoResult is reported by a test case that never received a delivered
// result before the terminal signal.
var ErrNoResult = errors.New("no result found for test")

// Correlator bridges one remote run's asynchronous result stream and the
// concurrently waiting test cases. It implements etf.RunObserver: the
// remote run's delivery goroutine feeds results in, one consumer per
// test case blocks on WaitAndCompare.
//
// The label to binding mapping is built before the run starts and never
// mutated afterwards, so lookups need no lock.
type Correlator struct {
	bindings map[string]*binding
	wildcard *binding
	logger   zerolog.Logger

	finishOnce sync.Once

	mu     sync.Mutex
	runErr error
}

// NewCorrelator builds one binding per expected case in the store.
func NewCorrelator(store *ExpectationStore) *Correlator {
	c := &Correlator{
		bindings: make(map[string]*binding, len(store.Cases)),
		logger:   logging.Component("correlator"),
	}
	for label, expected := range store.Cases {
		c.bindings[label] = newSingleBinding(expected)
	}
	if store.Wildcard != nil {
		c.wildcard = newWildcardBinding(store.Wildcard)
	}
	return c
}

// Labels returns every named case label plus the wildcard label when a
// wildcard case exists. One consumer is expected per returned label.
func (c *Correlator) Labels() []string {
	labels := make([]string, 0, len(c.bindings)+1)
	for label := range c.bindings {
		labels = append(labels, label)
	}
	if c.wildcard != nil {
		labels = append(labels, WildcardLabel)
	}
	return labels
}

// ResultDelivered routes one result to the matching binding: the named
// binding when one exists, else the wildcard binding, else the result is
// discarded. An unlisted, non-wildcarded result is intentionally
// ignored.
func (c *Correlator) ResultDelivered(result etf.AssertionResult) {
	if b, ok := c.bindings[result.Label]; ok {
		b.deliver(result)
		return
	}
	if c.wildcard != nil {
		c.wildcard.deliver(result)
		return
	}
	c.logger.Debug().Str("label", result.Label).Msg("discarding result without expected case")
}

// RunFinished delivers the terminal signal: every binding's waiters are
// woken unconditionally so consumers that received nothing can observe
// absence instead of hanging.
func (c *Correlator) RunFinished(*etf.RunResult) {
	c.finishAll()
}

// ExceptionOccurred records a structural remote failure. It bypasses the
// bindings - the whole suite fails, not any individual case - but still
// fires the terminal signal so no consumer deadlocks.
func (c *Correlator) ExceptionOccurred(err error) {
	c.mu.Lock()
	if c.runErr == nil {
		c.runErr = err
	}
	c.mu.Unlock()

	c.logger.Error().Err(err).Msg("remote run failed")
	c.finishAll()
}

// RunErr returns the structural run failure, if any.
func (c *Correlator) RunErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runErr
}

func (c *Correlator) finishAll() {
	c.finishOnce.Do(func() {
		for _, b := range c.bindings {
			b.finish()
		}
		if c.wildcard != nil {
			c.wildcard.finish()
		}
	})
}

// WaitAndCompare blocks until the labeled case can be decided and
// compares its delivered result(s) against the expected case. It is the
// single blocking call each test case worker issues.
func (c *Correlator) WaitAndCompare(label string) error {
	if label == WildcardLabel && c.wildcard != nil {
		return c.waitWildcardAndCompare()
	}

	b, ok := c.bindings[label]
	if !ok {
		return fmt.Errorf("no expected case for label %q", label)
	}

	result, delivered := b.waitSingle()
	if err := c.RunErr(); err != nil {
		return err
	}
	if !delivered {
		return fmt.Errorf("%w: %s", ErrNoResult, label)
	}
	return Compare(result, b.expected)
}

// waitWildcardAndCompare incrementally validates the wildcard
// accumulation. Every wake re-checks all accumulated results; a wake
// with an unchanged count re-blocks. Success is reported only once the
// terminal signal has fired - data alone never terminates the wait.
func (c *Correlator) waitWildcardAndCompare() error {
	known := 0
	for {
		results, finished := c.wildcard.waitWildcard(known)
		if err := c.RunErr(); err != nil {
			return err
		}

		for _, result := range results {
			if err := Compare(result, c.wildcard.expected); err != nil {
				return err
			}
		}
		known = len(results)

		// Zero accumulated results at the terminal signal is not a
		// failure: the wildcard case is a fallback, not a guarantee
		// that fallback results exist.
		if finished {
			return nil
		}
	}
}
