package etf

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Executable is a concrete run target produced by resolution: either one
// run template or a set of executable test suites.
type Executable struct {
	// TemplateID is set when the run executes a run template.
	TemplateID string

	// SuiteIDs is set when the run executes test suites directly.
	SuiteIDs []string
}

// ExecutableFromTemplate creates an executable target for one template.
func ExecutableFromTemplate(t TestRunTemplate) Executable {
	return Executable{TemplateID: t.ID}
}

// ExecutableFromSuites creates an executable target for one or more
// suites.
func ExecutableFromSuites(suites ...ExecutableTestSuite) Executable {
	ids := make([]string, len(suites))
	for i, s := range suites {
		ids[i] = s.ID
	}
	return Executable{SuiteIDs: ids}
}

// IsZero reports whether no target is set.
func (e Executable) IsZero() bool {
	return e.TemplateID == "" && len(e.SuiteIDs) == 0
}

// runRequest is the run submission body.
type runRequest struct {
	Label                  string            `json:"label"`
	TestRunTemplateID      string            `json:"testRunTemplateId,omitempty"`
	ExecutableTestSuiteIDs []string          `json:"executableTestSuiteIds,omitempty"`
	Arguments              map[string]string `json:"arguments,omitempty"`
	TestObject             map[string]string `json:"testObject"`
}

// startRun submits a run and returns its id.
func (c *Client) startRun(ctx context.Context, exec Executable, obj TestObject, args map[string]string) (string, error) {
	if exec.IsZero() {
		return "", fmt.Errorf("executable target is empty")
	}
	objRef, err := obj.resolve(ctx, c)
	if err != nil {
		return "", err
	}

	req := runRequest{
		Label:                  "ddt-run-" + uuid.NewString(),
		TestRunTemplateID:      exec.TemplateID,
		ExecutableTestSuiteIDs: exec.SuiteIDs,
		Arguments:              args,
		TestObject:             objRef,
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, "v2/TestRuns", req, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: service returned no run id", ErrRemoteInvocation)
	}

	c.logger.Info().Str("run_id", created.ID).Str("label", req.Label).Msg("test run started")
	return created.ID, nil
}

// runResult fetches the full result of a finished run.
func (c *Client) runResult(ctx context.Context, runID string) (*RunResult, error) {
	var result RunResult
	if err := c.getJSON(ctx, "v2/TestRuns/"+runID+".json", &result); err != nil {
		return nil, err
	}
	if result.ID == "" {
		result.ID = runID
	}
	return &result, nil
}

// Execute submits a run and delivers its results to the observer from a
// background goroutine: each assertion result once, then exactly one
// RunFinished, or ExceptionOccurred on a polling failure. A submission
// failure is returned directly and the observer is never invoked.
func (c *Client) Execute(ctx context.Context, exec Executable, obj TestObject, args map[string]string, observer RunObserver) error {
	runID, err := c.startRun(ctx, exec, obj, args)
	if err != nil {
		return err
	}

	p := newRunPoller(c, runID, observer)
	p.Start(ctx)
	return nil
}

// ExecuteSync submits a run and blocks until the full result is
// available.
func (c *Client) ExecuteSync(ctx context.Context, exec Executable, obj TestObject, args map[string]string) (*RunResult, error) {
	runID, err := c.startRun(ctx, exec, obj, args)
	if err != nil {
		return nil, err
	}

	collector := newResultCollector()
	p := newRunPoller(c, runID, collector)
	p.Start(ctx)
	return collector.Wait(ctx)
}

// resultCollector is a RunObserver that gathers the whole run result for
// synchronous callers.
type resultCollector struct {
	done chan struct{}
	run  *RunResult
	err  error
}

func newResultCollector() *resultCollector {
	return &resultCollector{done: make(chan struct{})}
}

func (r *resultCollector) ResultDelivered(AssertionResult) {}

func (r *resultCollector) RunFinished(run *RunResult) {
	r.run = run
	close(r.done)
}

func (r *resultCollector) ExceptionOccurred(err error) {
	r.err = err
	close(r.done)
}

// Wait blocks until the run finishes or the context is cancelled.
func (r *resultCollector) Wait(ctx context.Context) (*RunResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.done:
		return r.run, r.err
	}
}
