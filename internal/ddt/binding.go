package ddt

import (
	"sync"

	"github.com/guadaltel/etf-result-checker/internal/etf"
)

// bindingKind discriminates the two case binding variants.
type bindingKind int

const (
	// singleBinding expects exactly one delivered result.
	singleBinding bindingKind = iota

	// wildcardBinding accumulates every result with no named binding.
	wildcardBinding
)

// binding pairs one expected case with its delivered results and a wait
// mechanism. A single-result binding is a one-slot future: the consumer
// blocks on a channel receive and the terminal signal closes done so the
// receive unblocks with an explicit no-value outcome. A wildcard binding
// is a growable buffer with a condition broadcast: consumers are woken
// on every appended batch and on the terminal signal.
//
// The delivery goroutine is the only writer; each consumer only reads
// after its own wake.
type binding struct {
	kind     bindingKind
	expected *ExpectedCase

	// single-result variant
	result chan etf.AssertionResult
	done   chan struct{}

	// wildcard variant
	mu       sync.Mutex
	cond     *sync.Cond
	results  []etf.AssertionResult
	finished bool
}

// newSingleBinding creates a binding for one named expected case.
func newSingleBinding(expected *ExpectedCase) *binding {
	return &binding{
		kind:     singleBinding,
		expected: expected,
		result:   make(chan etf.AssertionResult, 1),
		done:     make(chan struct{}),
	}
}

// newWildcardBinding creates the fallback binding.
func newWildcardBinding(expected *ExpectedCase) *binding {
	b := &binding{
		kind:     wildcardBinding,
		expected: expected,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// deliver routes one result into the binding and wakes its waiters. A
// named case receives at most one result; anything beyond the first is
// dropped.
func (b *binding) deliver(result etf.AssertionResult) {
	switch b.kind {
	case singleBinding:
		select {
		case b.result <- result:
		default:
		}
	case wildcardBinding:
		b.mu.Lock()
		b.results = append(b.results, result)
		b.mu.Unlock()
		b.cond.Broadcast()
	}
}

// finish delivers the terminal signal, waking every waiter
// unconditionally, including waiters that never received a result.
// Idempotence is the correlator's responsibility.
func (b *binding) finish() {
	switch b.kind {
	case singleBinding:
		close(b.done)
	case wildcardBinding:
		b.mu.Lock()
		b.finished = true
		b.mu.Unlock()
		b.cond.Broadcast()
	}
}

// waitSingle blocks until the result arrives or the terminal signal
// fires. The boolean reports whether a result was delivered.
func (b *binding) waitSingle() (etf.AssertionResult, bool) {
	select {
	case result := <-b.result:
		return result, true
	case <-b.done:
		// A result attached just before the terminal signal still counts.
		select {
		case result := <-b.result:
			return result, true
		default:
			return etf.AssertionResult{}, false
		}
	}
}

// waitWildcard blocks until the accumulation has grown past known
// results or the terminal signal has fired. A wake that finds the count
// unchanged before the terminal signal is treated as spurious and
// re-blocks. It returns a snapshot of all accumulated results and
// whether the terminal signal has fired.
func (b *binding) waitWildcard(known int) ([]etf.AssertionResult, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.results) == known && !b.finished {
		b.cond.Wait()
	}

	snapshot := make([]etf.AssertionResult, len(b.results))
	copy(snapshot, b.results)
	return snapshot, b.finished
}
