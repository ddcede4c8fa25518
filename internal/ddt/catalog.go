package ddt

import (
	"context"

	"github.com/guadaltel/etf-result-checker/internal/etf"
)

// clientCatalog adapts an etf.Client to the RemoteCatalog interface.
type clientCatalog struct {
	c *etf.Client
}

// NewClientCatalog wraps a client for use by the resolver.
func NewClientCatalog(c *etf.Client) RemoteCatalog {
	return &clientCatalog{c: c}
}

func (a *clientCatalog) TemplateByID(ctx context.Context, id string) (etf.TestRunTemplate, error) {
	t, err := a.c.TestRunTemplates().ItemByID(ctx, id)
	if err != nil {
		return etf.TestRunTemplate{}, err
	}
	return *t, nil
}

func (a *clientCatalog) TemplateByLabel(ctx context.Context, label string) (etf.TestRunTemplate, error) {
	t, err := a.c.TestRunTemplates().ItemByLabel(ctx, label)
	if err != nil {
		return etf.TestRunTemplate{}, err
	}
	return *t, nil
}

func (a *clientCatalog) SuiteByID(ctx context.Context, id string) (etf.ExecutableTestSuite, error) {
	s, err := a.c.ExecutableTestSuites().ItemByID(ctx, id)
	if err != nil {
		return etf.ExecutableTestSuite{}, err
	}
	return *s, nil
}

func (a *clientCatalog) SuiteByLabel(ctx context.Context, label string) (etf.ExecutableTestSuite, error) {
	s, err := a.c.ExecutableTestSuites().ItemByLabel(ctx, label)
	if err != nil {
		return etf.ExecutableTestSuite{}, err
	}
	return *s, nil
}

func (a *clientCatalog) SuitesByID(ctx context.Context, ids []string) ([]etf.ExecutableTestSuite, error) {
	return a.c.ExecutableTestSuites().ItemsByID(ctx, ids)
}

func (a *clientCatalog) SuitesByTag(ctx context.Context, tagLabel string) ([]etf.ExecutableTestSuite, error) {
	tag, err := a.c.Tags().ItemByLabel(ctx, tagLabel)
	if err != nil {
		return nil, err
	}
	return a.c.ExecutableTestSuites().ItemsByTag(ctx, *tag)
}

func (a *clientCatalog) Templates(ctx context.Context) ([]etf.TestRunTemplate, error) {
	return a.c.TestRunTemplates().All(ctx)
}

func (a *clientCatalog) Suites(ctx context.Context) ([]etf.ExecutableTestSuite, error) {
	return a.c.ExecutableTestSuites().All(ctx)
}

func (a *clientCatalog) Tags(ctx context.Context) ([]etf.Tag, error) {
	return a.c.Tags().All(ctx)
}
