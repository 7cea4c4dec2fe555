// Package input loads observation and ranking files for the CLI and HTTP API.
// Files may be JSON or YAML, chosen by extension.
package input

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

// Observation pairs a primary data point with the comparison points it is
// scored against.
type Observation struct {
	ProjectID string            `json:"project_id" yaml:"project_id"`
	Metric    string            `json:"metric" yaml:"metric"`
	Primary   model.DataPoint   `json:"primary" yaml:"primary"`
	Compare   []model.DataPoint `json:"compare,omitempty" yaml:"compare,omitempty"`
}

// Validate checks the file-level fields, naming the offending field in the
// returned error.
func (o Observation) Validate() error {
	if o.ProjectID == "" {
		return eris.Wrap(model.ErrValidation, "input: observation.project_id is required")
	}
	if o.Metric == "" {
		return eris.Wrap(model.ErrValidation, "input: observation.metric is required")
	}
	if err := o.Primary.Validate(); err != nil {
		return eris.Wrap(err, "input: primary")
	}
	for i, c := range o.Compare {
		if err := c.Validate(); err != nil {
			return eris.Wrapf(err, "input: compare[%d]", i)
		}
	}
	return nil
}

// LoadObservations reads one or more observations from a JSON or YAML file.
// The file may hold a single observation document or a list of them.
func LoadObservations(path string) ([]Observation, error) {
	observations, err := loadDocs[Observation](path)
	if err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return nil, eris.Errorf("input: %s contains no observations", path)
	}

	for i := range observations {
		if err := observations[i].Validate(); err != nil {
			return nil, eris.Wrapf(err, "input: observation %d", i)
		}
	}
	return observations, nil
}

// LoadMLInput reads a single rankings document from a JSON or YAML file.
// Record validation is left to the scorer.
func LoadMLInput(path string) (*model.MLInput, error) {
	inputs, err := loadDocs[model.MLInput](path)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, eris.Errorf("input: %s contains no ranking documents", path)
	}
	if len(inputs) > 1 {
		return nil, eris.Errorf("input: %s holds %d ranking documents, expected one", path, len(inputs))
	}
	return &inputs[0], nil
}

// LoadMLBatch reads one or more rankings documents from a JSON or YAML file.
// A file holding a single document yields a one-element batch.
func LoadMLBatch(path string) ([]model.MLInput, error) {
	inputs, err := loadDocs[model.MLInput](path)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, eris.Errorf("input: %s contains no ranking documents", path)
	}
	return inputs, nil
}

// loadDocs reads a file that may hold either a single document or a list of
// them, and always returns a list.
func loadDocs[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "input: read %s", path)
	}

	var docs []T
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		docs, err = decodeDocsJSON[T](data)
	case ".yaml", ".yml":
		docs, err = decodeDocsYAML[T](data)
	default:
		return nil, eris.Errorf("input: unsupported file extension %q (want .json, .yaml, or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return nil, eris.Wrapf(err, "input: parse %s", path)
	}
	return docs, nil
}

func decodeDocsJSON[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var single T
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []T{single}, nil
}

func decodeDocsYAML[T any](data []byte) ([]T, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var list []T
		if err := root.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var single T
	if err := root.Decode(&single); err != nil {
		return nil, err
	}
	return []T{single}, nil
}
