package etf

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService is a minimal in-memory validation service.
type fakeService struct {
	mu             sync.Mutex
	templates      []TestRunTemplate
	suites         []ExecutableTestSuite
	tags           []Tag
	runs           map[string]*RunResult
	progress       map[string]runProgress
	uploads        int
	lastAuth       string
	lastRunRequest map[string]any
}

func newFakeService() *fakeService {
	return &fakeService{
		templates: []TestRunTemplate{{ID: "trt-1", Label: "Metadata template"}},
		suites: []ExecutableTestSuite{
			{ID: "ets-1", Label: "Metadata suite", TagIDs: []string{"tag-1"}},
			{ID: "ets-2", Label: "Dataset suite"},
		},
		tags:     []Tag{{ID: "tag-1", Label: "metadata"}},
		runs:     map[string]*RunResult{},
		progress: map[string]runProgress{},
	}
}

func (s *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /v2/TestRunTemplates.json", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, s.templates)
	})
	mux.HandleFunc("GET /v2/ExecutableTestSuites.json", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, s.suites)
	})
	mux.HandleFunc("GET /v2/Tags.json", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, s.tags)
	})
	mux.HandleFunc("POST /v2/TestObjects", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.uploads++
		s.mu.Unlock()
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.writeJSON(w, map[string]string{"id": "to-1"})
	})
	mux.HandleFunc("POST /v2/TestRuns", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.lastAuth = r.Header.Get("Authorization")
		s.lastRunRequest = body
		s.mu.Unlock()
		s.writeJSON(w, map[string]string{"id": "run-1"})
	})
	mux.HandleFunc("GET /v2/TestRuns/run-1/progress", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		progress := s.progress["run-1"]
		s.mu.Unlock()
		s.writeJSON(w, progress)
	})
	mux.HandleFunc("GET /v2/TestRuns/run-1.json", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		run := s.runs["run-1"]
		s.mu.Unlock()
		s.writeJSON(w, run)
	})
	return mux
}

func (s *fakeService) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *fakeService) completeRun(run *RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	s.progress[run.ID] = runProgress{Val: len(run.Assertions), Max: len(run.Assertions), Status: "COMPLETED"}
}

func newTestClient(t *testing.T, svc *fakeService, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(svc.handler())
	t.Cleanup(server.Close)

	opts = append([]Option{WithPollInterval(10 * time.Millisecond)}, opts...)
	client, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return client
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.org")
	require.Error(t, err)
}

func TestClient_Available(t *testing.T) {
	client := newTestClient(t, newFakeService())
	assert.True(t, client.Available(context.Background()))
}

func TestClient_Available_Down(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)
	assert.False(t, client.Available(context.Background()))
}

func TestClient_SessionID(t *testing.T) {
	client := newTestClient(t, newFakeService())
	assert.NotEmpty(t, client.SessionID())
}

func TestTemplateCatalog(t *testing.T) {
	client := newTestClient(t, newFakeService())
	ctx := context.Background()

	all, err := client.TestRunTemplates().All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	byID, err := client.TestRunTemplates().ItemByID(ctx, "trt-1")
	require.NoError(t, err)
	assert.Equal(t, "Metadata template", byID.Label)

	byLabel, err := client.TestRunTemplates().ItemByLabel(ctx, "Metadata template")
	require.NoError(t, err)
	assert.Equal(t, "trt-1", byLabel.ID)

	_, err = client.TestRunTemplates().ItemByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSuiteCatalog(t *testing.T) {
	client := newTestClient(t, newFakeService())
	ctx := context.Background()

	byLabel, err := client.ExecutableTestSuites().ItemByLabel(ctx, "Dataset suite")
	require.NoError(t, err)
	assert.Equal(t, "ets-2", byLabel.ID)

	suites, err := client.ExecutableTestSuites().ItemsByID(ctx, []string{"ets-1", "ets-2"})
	require.NoError(t, err)
	assert.Len(t, suites, 2)

	_, err = client.ExecutableTestSuites().ItemsByID(ctx, []string{"ets-1", "missing"})
	require.ErrorIs(t, err, ErrNotFound)

	tag, err := client.Tags().ItemByLabel(ctx, "metadata")
	require.NoError(t, err)

	tagged, err := client.ExecutableTestSuites().ItemsByTag(ctx, *tag)
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "ets-1", tagged[0].ID)
}

// recordingObserver captures observer callbacks.
type recordingObserver struct {
	mu       sync.Mutex
	results  []AssertionResult
	finished chan *RunResult
	failed   chan error
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		finished: make(chan *RunResult, 1),
		failed:   make(chan error, 1),
	}
}

func (o *recordingObserver) ResultDelivered(result AssertionResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, result)
}

func (o *recordingObserver) RunFinished(run *RunResult) {
	o.finished <- run
}

func (o *recordingObserver) ExceptionOccurred(err error) {
	o.failed <- err
}

func TestClient_Execute(t *testing.T) {
	svc := newFakeService()
	svc.completeRun(&RunResult{
		ID:     "run-1",
		Status: StatusPassed,
		Assertions: []AssertionResult{
			{Label: "check.a", Status: StatusPassed, Duration: 20 * time.Millisecond},
			{Label: "check.b", Status: StatusFailed, Messages: []string{"boom"}},
		},
	})

	client := newTestClient(t, svc)
	observer := newRecordingObserver()

	err := client.Execute(context.Background(),
		ExecutableFromSuites(ExecutableTestSuite{ID: "ets-1"}),
		TestObjectFromService("https://example.org/wfs"),
		map[string]string{"tests": "all"},
		observer)
	require.NoError(t, err)

	select {
	case run := <-observer.finished:
		require.NotNil(t, run)
		assert.Equal(t, StatusPassed, run.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("run never finished")
	}

	observer.mu.Lock()
	defer observer.mu.Unlock()
	require.Len(t, observer.results, 2)
	assert.Equal(t, "check.a", observer.results[0].Label)
	assert.Equal(t, 20*time.Millisecond, observer.results[0].Duration)
	assert.Equal(t, []string{"boom"}, observer.results[1].Messages)
}

func TestClient_ExecuteSync(t *testing.T) {
	svc := newFakeService()
	svc.completeRun(&RunResult{
		ID:         "run-1",
		Status:     StatusPassed,
		Assertions: []AssertionResult{{Label: "check.a", Status: StatusPassed}},
	})

	client := newTestClient(t, svc)
	run, err := client.ExecuteSync(context.Background(),
		ExecutableFromTemplate(TestRunTemplate{ID: "trt-1"}),
		TestObjectFromDataSetURL("https://example.org/data.xml"),
		nil)
	require.NoError(t, err)
	require.Len(t, run.Assertions, 1)

	// The template target travels in the submission body.
	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Equal(t, "trt-1", svc.lastRunRequest["testRunTemplateId"])
}

func TestClient_Execute_SubmissionFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)

	err = client.Execute(context.Background(),
		ExecutableFromSuites(ExecutableTestSuite{ID: "ets-1"}),
		TestObjectFromService("https://example.org/wfs"),
		nil, newRecordingObserver())
	require.ErrorIs(t, err, ErrRemoteInvocation)
}

func TestClient_Execute_PollFailureReachesObserver(t *testing.T) {
	svc := newFakeService()
	// Run submission succeeds but no progress endpoint data exists for
	// the run, so polling 404s.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/v2/TestRuns" {
			svc.writeJSON(w, map[string]string{"id": "run-vanished"})
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)

	observer := newRecordingObserver()
	err = client.Execute(context.Background(),
		ExecutableFromSuites(ExecutableTestSuite{ID: "ets-1"}),
		TestObjectFromService("https://example.org/wfs"),
		nil, observer)
	require.NoError(t, err)

	select {
	case obsErr := <-observer.failed:
		require.ErrorIs(t, obsErr, ErrRemoteInvocation)
	case <-time.After(5 * time.Second):
		t.Fatal("poll failure never reached the observer")
	}
}

func TestClient_ArchiveUpload(t *testing.T) {
	svc := newFakeService()
	svc.completeRun(&RunResult{ID: "run-1", Status: StatusPassed})

	archive := filepath.Join(t.TempDir(), "data.zip")
	require.NoError(t, os.WriteFile(archive, []byte("zip bytes"), 0o644))

	client := newTestClient(t, svc)
	_, err := client.ExecuteSync(context.Background(),
		ExecutableFromSuites(ExecutableTestSuite{ID: "ets-1"}),
		TestObjectFromArchive(archive),
		nil)
	require.NoError(t, err)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Equal(t, 1, svc.uploads)
	testObject, ok := svc.lastRunRequest["testObject"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "to-1", testObject["id"])
}

func TestClient_BasicAuth(t *testing.T) {
	svc := newFakeService()
	svc.completeRun(&RunResult{ID: "run-1", Status: StatusPassed})

	client := newTestClient(t, svc, WithBasicAuth("tester", "secret"))
	_, err := client.ExecuteSync(context.Background(),
		ExecutableFromSuites(ExecutableTestSuite{ID: "ets-1"}),
		TestObjectFromService("https://example.org/wfs"),
		nil)
	require.NoError(t, err)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Contains(t, svc.lastAuth, "Basic ")
}
