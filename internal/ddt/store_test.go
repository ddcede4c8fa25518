package ddt

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guadaltel/etf-result-checker/internal/etf"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExpectations(t *testing.T) {
	path := writeFile(t, t.TempDir(), "expected.json", `{
  "check.one": {
    "expectedResult": "PASSED",
    "maxDurationMs": 1500
  },
  "check.two": {
    "expectedResult": "FAILED",
    "expectedMessages": ["value mismatch"],
    "description": "known failure"
  },
  "*": {
    "expectedResult": "PASSED",
    "expectedMessageCount": 0
  }
}`)

	store, err := LoadExpectations(path)
	require.NoError(t, err)

	require.Len(t, store.Cases, 2)
	assert.False(t, store.Empty())

	one := store.Cases["check.one"]
	require.NotNil(t, one)
	assert.Equal(t, "check.one", one.Label)
	assert.Equal(t, etf.StatusPassed, one.ExpectedStatus)
	require.NotNil(t, one.MaxDuration)
	assert.Equal(t, 1500*time.Millisecond, *one.MaxDuration)
	assert.Nil(t, one.ExpectedMessageCount)

	two := store.Cases["check.two"]
	require.NotNil(t, two)
	assert.Equal(t, etf.StatusFailed, two.ExpectedStatus)
	assert.Equal(t, []string{"value mismatch"}, two.ExpectedMessages)
	assert.Equal(t, "known failure", two.Description)

	// The wildcard case is split out of the named mapping.
	require.NotNil(t, store.Wildcard)
	assert.Equal(t, WildcardLabel, store.Wildcard.Label)
	require.NotNil(t, store.Wildcard.ExpectedMessageCount)
	assert.Equal(t, 0, *store.Wildcard.ExpectedMessageCount)
	assert.NotContains(t, store.Cases, WildcardLabel)
}

func TestLoadExpectations_UnknownStatusRejected(t *testing.T) {
	path := writeFile(t, t.TempDir(), "expected.json",
		`{"check.one": {"expectedResult": "passed"}}`)

	_, err := LoadExpectations(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown result status")
}

func TestLoadExpectations_MissingExpectedResultRejected(t *testing.T) {
	path := writeFile(t, t.TempDir(), "expected.json",
		`{"check.one": {"description": "no status"}}`)

	_, err := LoadExpectations(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expectedResult is required")
}

func TestLoadExpectations_MalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "expected.json", `{not json`)

	_, err := LoadExpectations(path)
	require.Error(t, err)
}

func TestLoadExpectations_MissingFile(t *testing.T) {
	_, err := LoadExpectations(filepath.Join(t.TempDir(), "expected.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
