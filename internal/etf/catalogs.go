package etf

import (
	"context"
	"fmt"
)

// TemplateCatalog looks up test run templates in the remote catalog.
type TemplateCatalog struct {
	c *Client
}

// TestRunTemplates returns the run template catalog.
func (c *Client) TestRunTemplates() *TemplateCatalog {
	return &TemplateCatalog{c: c}
}

// All lists every run template known to the service.
func (t *TemplateCatalog) All(ctx context.Context) ([]TestRunTemplate, error) {
	var items []TestRunTemplate
	if err := t.c.getJSON(ctx, "v2/TestRunTemplates.json", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ItemByID returns the run template with the given id.
func (t *TemplateCatalog) ItemByID(ctx context.Context, id string) (*TestRunTemplate, error) {
	items, err := t.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("test run template %q: %w", id, ErrNotFound)
}

// ItemByLabel returns the run template with the given label.
func (t *TemplateCatalog) ItemByLabel(ctx context.Context, label string) (*TestRunTemplate, error) {
	items, err := t.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Label == label {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("test run template %q: %w", label, ErrNotFound)
}

// SuiteCatalog looks up executable test suites in the remote catalog.
type SuiteCatalog struct {
	c *Client
}

// ExecutableTestSuites returns the executable test suite catalog.
func (c *Client) ExecutableTestSuites() *SuiteCatalog {
	return &SuiteCatalog{c: c}
}

// All lists every executable test suite known to the service.
func (s *SuiteCatalog) All(ctx context.Context) ([]ExecutableTestSuite, error) {
	var items []ExecutableTestSuite
	if err := s.c.getJSON(ctx, "v2/ExecutableTestSuites.json", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ItemByID returns the suite with the given id.
func (s *SuiteCatalog) ItemByID(ctx context.Context, id string) (*ExecutableTestSuite, error) {
	items, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("executable test suite %q: %w", id, ErrNotFound)
}

// ItemByLabel returns the suite with the given label.
func (s *SuiteCatalog) ItemByLabel(ctx context.Context, label string) (*ExecutableTestSuite, error) {
	items, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Label == label {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("executable test suite %q: %w", label, ErrNotFound)
}

// ItemsByID returns the suites with the given ids. Every id must match.
func (s *SuiteCatalog) ItemsByID(ctx context.Context, ids []string) ([]ExecutableTestSuite, error) {
	items, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]ExecutableTestSuite, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	found := make([]ExecutableTestSuite, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("executable test suite %q: %w", id, ErrNotFound)
		}
		found = append(found, item)
	}
	return found, nil
}

// ItemsByTag returns every suite carrying the given tag.
func (s *SuiteCatalog) ItemsByTag(ctx context.Context, tag Tag) ([]ExecutableTestSuite, error) {
	items, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	var found []ExecutableTestSuite
	for _, item := range items {
		for _, tagID := range item.TagIDs {
			if tagID == tag.ID {
				found = append(found, item)
				break
			}
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("executable test suites tagged %q: %w", tag.Label, ErrNotFound)
	}
	return found, nil
}

// TagCatalog looks up tags in the remote catalog.
type TagCatalog struct {
	c *Client
}

// Tags returns the tag catalog.
func (c *Client) Tags() *TagCatalog {
	return &TagCatalog{c: c}
}

// All lists every tag known to the service.
func (t *TagCatalog) All(ctx context.Context) ([]Tag, error) {
	var items []Tag
	if err := t.c.getJSON(ctx, "v2/Tags.json", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ItemByLabel returns the tag with the given label.
func (t *TagCatalog) ItemByLabel(ctx context.Context, label string) (*Tag, error) {
	items, err := t.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Label == label {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("tag %q: %w", label, ErrNotFound)
}
