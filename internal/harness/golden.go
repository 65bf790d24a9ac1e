package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/cutroom/internal/ir"
)

// TraceSnapshot is the golden form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Session      string       `json:"session,omitempty"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonical converts the snapshot to IR so it serializes as canonical
// JSON: sorted keys, no insignificant whitespace.
func (s *TraceSnapshot) toCanonical() ir.IRObject {
	trace := make(ir.IRArray, len(s.Trace))
	for i, event := range s.Trace {
		trace[i] = ir.IRObject{
			"seq":    ir.IRInt(event.Seq),
			"op":     ir.IRString(event.Op),
			"args":   orEmpty(event.Args),
			"case":   ir.IRString(event.Case),
			"result": orEmpty(event.Result),
		}
	}
	obj := ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"trace":         trace,
	}
	if s.Session != "" {
		obj["session"] = ir.IRString(s.Session)
	}
	return obj
}

func orEmpty(obj ir.IRObject) ir.IRObject {
	if obj == nil {
		return ir.IRObject{}
	}
	return obj
}

// RunWithGolden runs a scenario, fails the test if any expectation failed,
// and compares its trace with testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Pass {
		t.Errorf("scenario %s failed: %v", scenario.Name, result.Errors)
	}
	return AssertGolden(t, scenario, result)
}

// AssertGolden compares the trace of an existing run of scenario with its
// golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{ScenarioName: scenario.Name, Session: scenario.Session, Trace: result.Trace}
	data, err := ir.MarshalCanonical(snapshot.toCanonical())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
