package workflow

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root of a workflow definition document. Gates are plain data;
// see the package example files for the YAML shape.
type Config struct {
	Workflows []*Gate `yaml:"workflows"`
}

// LoadConfig parses gate definitions from YAML. Unknown fields are rejected
// so typos in definitions fail loudly instead of silently disabling a step.
func LoadConfig(data []byte) ([]*Gate, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse workflow config: %w", err)
	}

	for i, g := range cfg.Workflows {
		if err := validateGate(g); err != nil {
			return nil, fmt.Errorf("workflow %d: %w", i, err)
		}

		if g.StatePrefix == "" {
			g.StatePrefix = strings.TrimSuffix(g.Role, "_agent")
		}
	}

	return cfg.Workflows, nil
}

// LoadConfigFile reads and parses gate definitions from a YAML file.
func LoadConfigFile(path string) ([]*Gate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow config: %w", err)
	}

	return LoadConfig(data)
}

func validateGate(g *Gate) error {
	if g == nil {
		return fmt.Errorf("empty workflow entry")
	}

	if g.Role == "" {
		return fmt.Errorf("role is required")
	}

	if len(g.Steps) == 0 {
		return fmt.Errorf("role %s: at least one step is required", g.Role)
	}

	seen := make(map[string]bool, len(g.Steps))

	for i, s := range g.Steps {
		if s.Name == "" {
			return fmt.Errorf("role %s: step %d has no name", g.Role, i)
		}

		if seen[s.Name] {
			return fmt.Errorf("role %s: duplicate step %s", g.Role, s.Name)
		}
		seen[s.Name] = true

		if s.Extract != nil {
			if s.Extract.From == "" {
				return fmt.Errorf("role %s: step %s: extract.from is required", g.Role, s.Name)
			}
			if s.Extract.Field == "" {
				return fmt.Errorf("role %s: step %s: extract.field is required", g.Role, s.Name)
			}
		}
	}

	if g.Terminal != "" && !seen[g.Terminal] {
		return fmt.Errorf("role %s: terminal %s is not a step", g.Role, g.Terminal)
	}

	if !g.Ordered && g.Terminal != "" {
		return fmt.Errorf("role %s: terminal requires an ordered workflow", g.Role)
	}

	return nil
}
