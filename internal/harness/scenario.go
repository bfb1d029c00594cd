package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one conversion under test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dump is a path to a dump file, relative to the scenario file.
	Dump string `yaml:"dump,omitempty"`

	// Input is an inline dump.
	Input string `yaml:"input,omitempty"`

	// Assertions validate the conversion outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the output or the error of a conversion.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Lines are whole output lines (output_contains, output_order).
	// Leading and trailing whitespace is ignored when matching.
	Lines []string `yaml:"lines,omitempty"`

	// Buckets is the expected emission order (bucket_order).
	Buckets []string `yaml:"buckets,omitempty"`

	// Kind is the expected error kind (error_kind).
	Kind string `yaml:"kind,omitempty"`
}

// Assertion type constants.
const (
	AssertOutputContains    = "output_contains"
	AssertOutputOrder       = "output_order"
	AssertBucketOrder       = "bucket_order"
	AssertForwardReferences = "forward_references"
	AssertErrorKind         = "error_kind"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Dump != "" && !filepath.IsAbs(scenario.Dump) {
		scenario.Dump = filepath.Join(filepath.Dir(path), scenario.Dump)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Dump == "" && s.Input == "":
		return fmt.Errorf("one of dump or input is required")
	case s.Dump != "" && s.Input != "":
		return fmt.Errorf("dump and input are mutually exclusive")
	}

	if s.Dump != "" {
		if _, err := os.Stat(s.Dump); os.IsNotExist(err) {
			return fmt.Errorf("dump file not found: %s", s.Dump)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	expectsError := false
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
		if s.Assertions[i].Type == AssertErrorKind {
			expectsError = true
		}
	}
	if expectsError && len(s.Assertions) > 1 {
		return fmt.Errorf("error_kind cannot be combined with output assertions")
	}

	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOutputContains, AssertOutputOrder:
		if len(a.Lines) == 0 {
			return fmt.Errorf("assertions[%d]: lines list is required for %s", index, a.Type)
		}
	case AssertBucketOrder:
		if len(a.Buckets) == 0 {
			return fmt.Errorf("assertions[%d]: buckets list is required for bucket_order", index)
		}
	case AssertForwardReferences:
	case AssertErrorKind:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for error_kind", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
