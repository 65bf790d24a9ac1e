// Package engine is the command surface of a cutroom timeline.
//
// Every interaction (pointer gesture, editor panel, HTTP call, scripted
// scenario) reaches the timeline as a named op with IR args. The engine
// decodes the args against the op catalog, runs the op, and answers with an
// ir.Outcome whose Case is "Ok" or an error kind. Failures are values, not
// Go errors; a Go error from Execute means the journal could not be
// written.
//
// ARCHITECTURE:
//
// Single writer:
// All ops run under one mutex, in arrival order. Execute is the direct
// path. Submit/Run is a FIFO queue drained by one goroutine, used by
// network clients so that concurrent requests are serialized the same way.
//
// Logical clock:
// Mutating ops take the next seq from Clock; queries read the current seq
// without advancing it. Seq, not wall time, orders the journal.
//
// Journal and replay:
// Mutating commands are appended to the journal with their outcomes. Each
// Ok outcome lists the ids it minted under "created". Replay re-runs a
// journal on a fresh engine, feeding those ids back through a
// ReplayGenerator, and reports any outcome that differs as a Divergence.
// Since outcome ids are content hashes, a clean replay proves the rebuilt
// timeline went through identical states.
package engine
