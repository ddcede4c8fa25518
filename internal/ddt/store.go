package ddt

import (
	"encoding/json"
	"fmt"
	"os"
)

// ExpectationStore maps assertion labels to their expected cases, with
// the reserved wildcard case split into its own slot. Built once at
// suite preparation, immutable thereafter.
type ExpectationStore struct {
	// Cases holds every named expected case, keyed by assertion label.
	Cases map[string]*ExpectedCase

	// Wildcard is the optional fallback case for assertions with no
	// named case.
	Wildcard *ExpectedCase
}

// Empty reports whether the store holds no cases at all.
func (s *ExpectationStore) Empty() bool {
	return len(s.Cases) == 0 && s.Wildcard == nil
}

// LoadExpectations parses an expectation file into a store. The JSON
// object's unique keys guarantee no two cases share a label.
func LoadExpectations(path string) (*ExpectationStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading expectation file: %w", err)
	}

	var raw map[string]*ExpectedCase
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed expectation file %s: %w", path, err)
	}

	store := &ExpectationStore{
		Cases: make(map[string]*ExpectedCase, len(raw)),
	}
	for label, expected := range raw {
		expected.Label = label
		if label == WildcardLabel {
			store.Wildcard = expected
			continue
		}
		store.Cases[label] = expected
	}
	return store, nil
}
