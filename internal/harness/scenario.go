package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cutroom/internal/ir"
)

// DefaultSession is used when a scenario or script names none.
const DefaultSession = "scenario"

// Scenario is a scripted edit session plus expectations about the result.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is the session token commands run in.
	Session string `yaml:"session,omitempty"`

	// Setup steps establish initial state. Any failure aborts the run.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow is the behaviour under test.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final timeline and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Step invokes one op.
type Step struct {
	// Invoke is the op name, e.g. "moveClip".
	Invoke string `yaml:"invoke"`

	// Args are native values; times are seconds and "$name" strings are
	// bound ids.
	Args map[string]any `yaml:"args"`

	// Bind names the outcome's created ids, in order.
	Bind []string `yaml:"bind,omitempty"`

	// Expect checks the outcome. Without it the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Case is the expected outcome case, e.g. "Ok" or "Conflict".
	Case string `yaml:"case"`

	// Created, when set, is the number of ids the outcome must create.
	Created *int `yaml:"created,omitempty"`
}

// Assertion validates the final timeline or the trace.
type Assertion struct {
	Type string `yaml:"type"`

	// ID is a clip or track id, or a "$name" binding (clip, clip_missing,
	// track).
	ID string `yaml:"id,omitempty"`

	// Expect holds expected field values, subset matched (clip, track).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Value is the expected total duration in seconds (total_duration).
	Value *float64 `yaml:"value,omitempty"`

	// Op is the op name (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Args are expected command args, subset matched (trace_contains).
	Args map[string]any `yaml:"args,omitempty"`

	// Case is the expected outcome case (trace_contains, optional).
	Case string `yaml:"case,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Ops is the expected op order (trace_order).
	Ops []string `yaml:"ops,omitempty"`
}

// Assertion type constants.
const (
	AssertClip          = "clip"
	AssertClipMissing   = "clip_missing"
	AssertTrack         = "track"
	AssertTotalDuration = "total_duration"
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertValid         = "valid"
	AssertReplay        = "replay"
)

// Script is a plain list of steps, run by `cutroom exec` against a
// persistent journal.
type Script struct {
	Session string `yaml:"session,omitempty"`
	Steps   []Step `yaml:"steps"`
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := decodeStrict(data, &s); err != nil {
		return nil, err
	}
	if s.Session == "" {
		s.Session = DefaultSession
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// LoadScript reads and validates an exec script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var s Script
	if err := decodeStrict(data, &s); err != nil {
		return nil, err
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("invalid script: steps list is required and must be non-empty")
	}
	if err := validateSteps("steps", s.Steps); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &s, nil
}

func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	return nil
}

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
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if err := validateSteps("setup", s.Setup); err != nil {
		return err
	}
	if err := validateSteps("flow", s.Flow); err != nil {
		return err
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateSteps(section string, steps []Step) error {
	for i, step := range steps {
		if step.Invoke == "" {
			return fmt.Errorf("%s[%d]: invoke is required", section, i)
		}
		if step.Expect != nil {
			if step.Expect.Case == "" {
				return fmt.Errorf("%s[%d].expect: case is required", section, i)
			}
			if step.Expect.Created != nil && *step.Expect.Created < 0 {
				return fmt.Errorf("%s[%d].expect: created must be non-negative", section, i)
			}
		}
		if len(step.Bind) > 0 && step.Expect != nil && step.Expect.Case != ir.CaseOk {
			return fmt.Errorf("%s[%d]: bind requires an Ok outcome", section, i)
		}
		for _, name := range step.Bind {
			if name == "" {
				return fmt.Errorf("%s[%d]: empty bind name", section, i)
			}
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertClip, AssertTrack:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertClipMissing:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for clip_missing", index)
		}
	case AssertTotalDuration:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for total_duration", index)
		}
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertValid, AssertReplay:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
