// Package harness runs timeline scenarios against a real engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: split_and_merge
//	description: "A split clip merges back into one"
//	session: demo
//	setup:
//	  - invoke: addTrack
//	    args: { type: video }
//	    bind: [v1]
//	flow:
//	  - invoke: addClip
//	    args: { trackId: $v1, start: 0, duration: 4, content: a.mp4 }
//	    bind: [a]
//	  - invoke: splitClip
//	    args: { clipId: $a, at: 1.5 }
//	    bind: [left, right]
//	    expect:
//	      case: Ok
//	      created: 2
//	assertions:
//	  - type: clip
//	    id: $right
//	    expect: { start: 1.5, duration: 2.5, offset: 1.5 }
//	  - type: trace_order
//	    ops: [addClip, splitClip]
//
// Times and scales in args and expectations are seconds; the harness
// converts them to the IR's microseconds. A string arg of the form $name
// is replaced by the id bound to name. bind names the ids an outcome
// created, in order.
//
// # Assertion Types
//
//   - clip: a clip exists and its fields match expect (subset)
//   - clip_missing: no clip has the id
//   - track: a track exists and its fields match expect (subset)
//   - total_duration: the timeline's total duration equals value
//   - trace_contains: a journaled command matches op, args and case
//   - trace_order: ops appear in the trace in this order
//   - trace_count: op appears exactly count times
//   - valid: every timeline invariant holds
//   - replay: replaying the journal reproduces every outcome
//
// # Deterministic Testing
//
// Every scenario runs on a fresh engine with sequential ids ("id-1",
// "id-2", ...) and a fresh logical clock, so the same scenario always
// produces a byte-identical trace. RunWithGolden compares that trace to
// testdata/golden/<name>.golden.
package harness
