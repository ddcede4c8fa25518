package ddt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guadaltel/etf-result-checker/internal/etf"
)

func generatedRun() *etf.RunResult {
	return &etf.RunResult{
		ID:     "run-1",
		Status: etf.StatusFailed,
		Assertions: []etf.AssertionResult{
			{Label: "check.alpha", Status: etf.StatusPassed},
			{Label: "check.beta", Status: etf.StatusFailed, Messages: []string{"value mismatch", "missing element"}},
		},
	}
}

func TestWriteTemplate_Golden(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expected.json")
	require.NoError(t, WriteTemplate(path, generatedRun()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "generated_template", content)
}

func TestWriteTemplate_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expected.json")
	require.NoError(t, WriteTemplate(path, generatedRun()))

	// The generated file must load as a regular expectation file.
	store, err := LoadExpectations(path)
	require.NoError(t, err)
	require.Len(t, store.Cases, 2)
	require.Nil(t, store.Wildcard)

	alpha := store.Cases["check.alpha"]
	require.NotNil(t, alpha)
	assert.Equal(t, etf.StatusPassed, alpha.ExpectedStatus)
	assert.Equal(t, GeneratedDescription, alpha.Description)
	require.NotNil(t, alpha.ExpectedMessageCount, "assertions without messages carry a zero count")
	assert.Equal(t, 0, *alpha.ExpectedMessageCount)
	assert.Nil(t, alpha.ExpectedMessages)
	assert.Nil(t, alpha.MaxDuration, "maxDurationMs is never generated")

	beta := store.Cases["check.beta"]
	require.NotNil(t, beta)
	assert.Equal(t, etf.StatusFailed, beta.ExpectedStatus)
	assert.Equal(t, []string{"value mismatch", "missing element"}, beta.ExpectedMessages)
	assert.Nil(t, beta.ExpectedMessageCount)
}

func TestWriteTemplate_EmptyRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expected.json")
	require.NoError(t, WriteTemplate(path, &etf.RunResult{}))

	store, err := LoadExpectations(path)
	require.NoError(t, err)
	assert.True(t, store.Empty())
}
