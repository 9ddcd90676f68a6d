package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dbfilter/internal/query"
	"github.com/roach88/dbfilter/internal/where"
)

// Scenario defines a translation test scenario.
// A scenario translates one filter against a column mapping, optionally
// runs it as a search over seed rows, and asserts on both outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Mapping is the path to a CUE or YAML column mapping.
	// Relative paths are resolved against the scenario file location.
	Mapping string `yaml:"mapping"`

	// Class is the object class to search.
	Class query.ObjectClass `yaml:"class"`

	// Dialect selects placeholder style and quoting for the translated
	// fragment. Empty leaves column names unquoted with "?" placeholders.
	Dialect where.Dialect `yaml:"dialect,omitempty"`

	// Options are passed to the resolver and the search.
	Options query.Options `yaml:"options,omitempty"`

	// Filter is the filter document, decoded with filter.DecodeNode.
	Filter yaml.Node `yaml:"filter"`

	// Rows seed an in-memory SQLite table for result_keys and
	// post_filtered assertions.
	Rows []map[string]any `yaml:"rows,omitempty"`

	// Assertions validate the translation and search result.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a scenario result.
type Assertion struct {
	// Type specifies the assertion type:
	// - "where": the fragment text equals Where
	// - "args": the bind values equal Args
	// - "supported": the filter was (not) pushed down, per Value
	// - "exact": the fragment is (not) exact, per Value
	// - "result_keys": the search returned rows with Keys, in order
	// - "post_filtered": the search did (not) filter in memory, per Value
	Type string `yaml:"type"`

	Where string   `yaml:"where,omitempty"`
	Args  []any    `yaml:"args,omitempty"`
	Keys  []string `yaml:"keys,omitempty"`
	Value *bool    `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertWhere        = "where"
	AssertArgs         = "args"
	AssertSupported    = "supported"
	AssertExact        = "exact"
	AssertResultKeys   = "result_keys"
	AssertPostFiltered = "post_filtered"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The mapping path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Mapping != "" && !filepath.IsAbs(scenario.Mapping) {
		scenario.Mapping = filepath.Join(filepath.Dir(path), scenario.Mapping)
	}
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// LoadScenarioWithMapping reads a scenario and replaces its mapping
// reference with mappingPath before validating it. The scenario file may
// then omit mapping entirely.
func LoadScenarioWithMapping(path, mappingPath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	scenario.Mapping = mappingPath
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML without resolving paths or
// checking that the mapping file exists.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, in name order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
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

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Mapping == "" {
		return fmt.Errorf("mapping is required")
	}
	if _, err := os.Stat(s.Mapping); os.IsNotExist(err) {
		return fmt.Errorf("mapping file not found: %s", s.Mapping)
	}
	if s.Class == "" {
		return fmt.Errorf("class is required")
	}
	if s.Dialect != "" {
		if _, err := where.ParseDialect(string(s.Dialect)); err != nil {
			return err
		}
	}
	if s.Filter.Kind == 0 {
		return fmt.Errorf("filter is required")
	}
	if err := s.Options.Validate(); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, len(s.Rows) > 0); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, hasRows bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertWhere:
		if a.Where == "" {
			return fmt.Errorf("assertions[%d]: where is required for where", index)
		}
	case AssertArgs:
		// An empty args list is a valid expectation.
	case AssertSupported, AssertExact:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertResultKeys, AssertPostFiltered:
		if !hasRows {
			return fmt.Errorf("assertions[%d]: %s requires rows", index, a.Type)
		}
		if a.Type == AssertPostFiltered && a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for post_filtered", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
