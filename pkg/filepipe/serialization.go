package filepipe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/filepipe/pkg/filepipe/operations"
)

// Definition is the serializable form of a pipeline: an ordered list of
// (registry identifier, configuration document) pairs. Loading resolves
// each identifier through a registry and configures the created
// operation, so a saved definition rebuilds an operationally equivalent
// pipeline.
type Definition struct {
	Version string           `yaml:"version,omitempty" toml:"version,omitempty"`
	Steps   []StepDefinition `yaml:"steps" toml:"steps"`
}

// StepDefinition names one operation and its configuration. Name is a
// display label only; it is captured on save and ignored on build.
type StepDefinition struct {
	ID     string         `yaml:"id" toml:"id"`
	Name   string         `yaml:"name,omitempty" toml:"name,omitempty"`
	Config map[string]any `yaml:"config,omitempty" toml:"config,omitempty"`
}

// definitionVersion is written into saved definitions.
const definitionVersion = "1"

// ParseDefinition decodes a definition from YAML or TOML.
func ParseDefinition(data []byte, format string) (*Definition, error) {
	var def Definition
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parse yaml definition: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parse toml definition: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported definition format: %q", format)
	}
	return &def, nil
}

// LoadDefinition reads a definition file, picking the format from the
// file extension (.yaml, .yml or .toml).
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition file: %w", err)
	}
	return ParseDefinition(data, filepath.Ext(path))
}

// EncodeDefinition renders a definition in the given format.
func EncodeDefinition(def *Definition, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		return yaml.Marshal(def)
	case "toml":
		return toml.Marshal(def)
	default:
		return nil, fmt.Errorf("unsupported definition format: %q", format)
	}
}

// SaveDefinition writes a definition file, picking the format from the
// file extension.
func SaveDefinition(def *Definition, path string) error {
	data, err := EncodeDefinition(def, filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write definition file: %w", err)
	}
	return nil
}

// Build appends the definition's operations to a pipeline, resolving
// identifiers through the registry.
func (d *Definition) Build(reg *operations.Registry, p *Pipeline) error {
	for i, step := range d.Steps {
		op, err := reg.Create(step.ID)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if len(step.Config) > 0 {
			if err := op.Configure(step.Config); err != nil {
				return fmt.Errorf("step %d (%s): %w", i+1, step.ID, err)
			}
		}
		p.Add(op)
	}
	return nil
}

// DefinitionFromPipeline captures a pipeline's operations as a
// serializable definition.
func DefinitionFromPipeline(p *Pipeline) *Definition {
	def := &Definition{Version: definitionVersion}
	for _, op := range p.Operations() {
		def.Steps = append(def.Steps, StepDefinition{ID: op.ID(), Name: op.Name(), Config: op.Config()})
	}
	return def
}
