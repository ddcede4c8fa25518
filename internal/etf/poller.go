package etf

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/guadaltel/etf-result-checker/internal/logging"
)

// runProgress is the wire representation of a run's progress.
type runProgress struct {
	Val    int    `json:"val"`
	Max    int    `json:"max"`
	Status string `json:"status"`
}

// completed reports whether the run has produced all of its results.
func (p runProgress) completed() bool {
	if p.Status == "COMPLETED" {
		return true
	}
	return p.Max > 0 && p.Val >= p.Max
}

// runPoller drives one run's result delivery: it polls the run's
// progress, and once the run completes it fetches the full result and
// delivers each assertion to the observer followed by exactly one
// RunFinished. Poll failures are surfaced via ExceptionOccurred and stop
// the poller. The poller is the single callback-delivery goroutine for
// its run.
type runPoller struct {
	client   *Client
	runID    string
	interval time.Duration
	observer RunObserver
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// newRunPoller creates a poller for a started run.
func newRunPoller(c *Client, runID string, observer RunObserver) *runPoller {
	return &runPoller{
		client:   c,
		runID:    runID,
		interval: c.pollInterval,
		observer: observer,
		logger:   logging.WithRun(runID),
	}
}

// Start begins the polling loop in a background goroutine.
func (p *runPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	p.wg.Add(1)
	go p.runLoop(ctx)
}

// Stop halts the polling loop and waits for it to exit.
func (p *runPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
}

// runLoop polls until the run completes, then delivers the results.
func (p *runPoller) runLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.observer.ExceptionOccurred(fmt.Errorf("%w: run %s: %v", ErrRemoteInvocation, p.runID, ctx.Err()))
			return
		case <-ticker.C:
			done, err := p.pollOnce(ctx)
			if err != nil {
				p.logger.Error().Err(err).Msg("run polling failed")
				p.observer.ExceptionOccurred(err)
				return
			}
			if done {
				p.deliver(ctx)
				return
			}
		}
	}
}

// pollOnce checks the run's progress. A 404 before completion means the
// run vanished on the remote side, which is a structural failure.
func (p *runPoller) pollOnce(ctx context.Context) (bool, error) {
	var progress runProgress
	err := p.client.getJSON(ctx, "v2/TestRuns/"+p.runID+"/progress", &progress)
	if err != nil {
		return false, err
	}

	p.logger.Debug().
		Int("val", progress.Val).
		Int("max", progress.Max).
		Str("status", progress.Status).
		Msg("run progress")

	return progress.completed(), nil
}

// deliver fetches the finished run and invokes the observer callbacks.
func (p *runPoller) deliver(ctx context.Context) {
	run, err := p.client.runResult(ctx, p.runID)
	if err != nil {
		p.logger.Error().Err(err).Msg("fetching run result failed")
		p.observer.ExceptionOccurred(err)
		return
	}

	p.logger.Info().
		Int("assertions", len(run.Assertions)).
		Str("status", string(run.Status)).
		Msg("run finished")

	for _, assertion := range run.Assertions {
		p.observer.ResultDelivered(assertion)
	}
	p.observer.RunFinished(run)
}
