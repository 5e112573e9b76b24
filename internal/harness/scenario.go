package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/socialgraph/internal/engine"
)

// Scenario defines a conformance test scenario: a sequence of operations run
// against a fresh engine, with expectations on results, events and the final
// state.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Clock configures post, like and tip timestamps.
	// Defaults to start 0, step 1.
	Clock *ClockSpec `yaml:"clock,omitempty"`

	// Setup contains operations run before the flow. Each must succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the operations under test.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the emitted events and final state.
	Assertions []Assertion `yaml:"assertions"`
}

// ClockSpec pins the engine clock. A step of 0 gives every timestamp the
// same value.
type ClockSpec struct {
	Start int64 `yaml:"start"`
	Step  int64 `yaml:"step"`
}

// Step is a single operation invocation.
type Step struct {
	// Op is the operation name, e.g. "create_user".
	Op string `yaml:"op"`

	// Args holds the operation arguments.
	Args map[string]any `yaml:"args"`
}

// FlowStep invokes an operation and optionally checks its outcome.
// A step without expect must succeed.
type FlowStep struct {
	Invoke string         `yaml:"invoke"`
	Args   map[string]any `yaml:"args"`
	Expect *ExpectClause  `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a flow step.
type ExpectClause struct {
	// Error is the expected error code (NOT_FOUND, CONFLICT, ...).
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Result is matched against the operation result. Objects match as a
	// subset; everything else must be equal. Nil skips the check.
	Result any `yaml:"result,omitempty"`
}

// Assertion validates the event stream or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "event_emitted": an event of Kind with a payload containing Payload
	// - "event_order": Kinds appear in order (gaps allowed)
	// - "event_count": Kind appears exactly Count times
	// - "final_state": state entry Entity/Key matches Expect
	Type string `yaml:"type"`

	Kind    string         `yaml:"kind,omitempty"`
	Payload map[string]any `yaml:"payload,omitempty"`
	Kinds   []string       `yaml:"kinds,omitempty"`
	Count   int            `yaml:"count,omitempty"`

	// Entity is a snapshot section: users, posts, public_keys, followers,
	// following or counters.
	Entity string `yaml:"entity,omitempty"`
	// Key is an entity id (users, posts) or map key (other sections).
	Key string `yaml:"key,omitempty"`
	// Expect is matched like ExpectClause.Result. Absent instead requires
	// that no entry exists under Key.
	Expect any  `yaml:"expect,omitempty"`
	Absent bool `yaml:"absent,omitempty"`
}

// Assertion type constants.
const (
	AssertEventEmitted = "event_emitted"
	AssertEventOrder   = "event_order"
	AssertEventCount   = "event_count"
	AssertFinalState   = "final_state"
)

var entities = map[string]bool{
	"users":       true,
	"posts":       true,
	"public_keys": true,
	"followers":   true,
	"following":   true,
	"counters":    true,
}

var errorCodes = map[string]bool{
	string(engine.CodeNotFound):        true,
	string(engine.CodeConflict):        true,
	string(engine.CodeUnauthorized):    true,
	string(engine.CodeInvalidArgument): true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if s.Clock != nil && s.Clock.Step < 0 {
		return fmt.Errorf("clock.step must be non-negative")
	}

	for i, step := range s.Setup {
		if err := validateOp(step.Op); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}

	for i, step := range s.Flow {
		if err := validateOp(step.Invoke); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
		if step.Expect != nil && step.Expect.Error != "" && !errorCodes[step.Expect.Error] {
			return fmt.Errorf("flow[%d].expect: unknown error code %q", i, step.Expect.Error)
		}
		if step.Expect != nil && step.Expect.Error != "" && step.Expect.Result != nil {
			return fmt.Errorf("flow[%d].expect: error and result are mutually exclusive", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateOp(op string) error {
	if op == "" {
		return fmt.Errorf("operation is required")
	}
	if slices.Contains(engine.Operations(), op) {
		return nil
	}
	return fmt.Errorf("unknown operation %q", op)
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEventEmitted:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for event_emitted", index)
		}
	case AssertEventOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for event_order", index)
		}
	case AssertEventCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for event_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertFinalState:
		if !entities[a.Entity] {
			return fmt.Errorf("assertions[%d]: unknown entity %q for final_state", index, a.Entity)
		}
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for final_state", index)
		}
		if a.Expect == nil && !a.Absent {
			return fmt.Errorf("assertions[%d]: expect or absent is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
