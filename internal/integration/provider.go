// Package integration reports which data-provider integrations are active
// for a project. Completeness scoring compares this against the sources a
// metric is expected to have.
package integration

import (
	"context"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

// StatusProvider answers which sources currently deliver data for a project.
type StatusProvider interface {
	ActiveSources(ctx context.Context, projectID string) ([]model.DataSource, error)
}

// StaticProvider serves active-source sets from configuration. Projects not
// listed fall back to the default set.
type StaticProvider struct {
	projects map[string][]model.DataSource
	defaults []model.DataSource
}

// NewStaticProvider builds a StaticProvider from per-project source lists
// and a default list for unlisted projects.
func NewStaticProvider(projects map[string][]model.DataSource, defaults []model.DataSource) *StaticProvider {
	if projects == nil {
		projects = map[string][]model.DataSource{}
	}
	return &StaticProvider{projects: projects, defaults: defaults}
}

// NewStaticProviderFromNames builds a StaticProvider from plain string source
// names, as they appear in configuration files. Unknown names are kept as-is;
// reliability scoring already treats them as unrecognized sources.
func NewStaticProviderFromNames(projects map[string][]string, defaults []string) *StaticProvider {
	converted := make(map[string][]model.DataSource, len(projects))
	for projectID, names := range projects {
		converted[projectID] = toSources(names)
	}
	return NewStaticProvider(converted, toSources(defaults))
}

func toSources(names []string) []model.DataSource {
	sources := make([]model.DataSource, len(names))
	for i, name := range names {
		sources[i] = model.DataSource(name)
	}
	return sources
}

// ActiveSources returns the configured sources for the project, or the
// default set when the project has no entry. Never fails.
func (p *StaticProvider) ActiveSources(_ context.Context, projectID string) ([]model.DataSource, error) {
	if sources, ok := p.projects[projectID]; ok {
		return sources, nil
	}
	return p.defaults, nil
}
