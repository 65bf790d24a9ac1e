package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/cutroom/internal/ir"
)

// Divergence records a journaled command whose re-execution produced a
// different outcome.
type Divergence struct {
	Seq       int64      `json:"seq"`
	CommandID string     `json:"command_id"`
	Op        ir.OpName  `json:"op"`
	Want      ir.Outcome `json:"want"`
	Got       ir.Outcome `json:"got"`
}

func (d Divergence) String() string {
	if d.Want.Case != d.Got.Case {
		return fmt.Sprintf("seq %d %s: case %s, journal has %s", d.Seq, d.Op, d.Got.Case, d.Want.Case)
	}
	return fmt.Sprintf("seq %d %s: outcome %.12s, journal has %.12s", d.Seq, d.Op, d.Got.ID, d.Want.ID)
}

// Replay rebuilds an engine by re-executing entries in order. Each command
// runs at its recorded seq with the ids it originally minted, so a faithful
// journal reproduces every outcome id exactly. Mismatches are returned as
// divergences rather than errors.
//
// Nothing is journaled or published during replay. A journal passed via
// WithJournal receives only commands executed after Replay returns, and the
// clock resumes after the last replayed seq.
func Replay(ctx context.Context, entries []ir.Entry, opts ...Option) (*Engine, []Divergence, error) {
	e := New(opts...)

	e.mu.Lock()
	defer e.mu.Unlock()

	gen := NewReplayGenerator(e.baseIDs)
	e.ids.base = gen
	e.replaying = true
	defer func() {
		e.ids.base = e.baseIDs
		e.replaying = false
	}()

	var divergences []Divergence
	var last int64
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		cmd := entry.Command
		if cmd.Seq < last {
			return nil, nil, fmt.Errorf("replay: entry %d has seq %d after seq %d", i, cmd.Seq, last)
		}
		last = cmd.Seq

		gen.Load(entry.Outcome.Created())
		e.clock.reset(cmd.Seq - 1)

		got, err := e.execute(ctx, cmd.Session, cmd.Op, cmd.Args)
		if err != nil {
			return nil, nil, fmt.Errorf("replay seq %d: %w", cmd.Seq, err)
		}
		if got.ID != entry.Outcome.ID || got.CommandID != cmd.ID {
			d := Divergence{Seq: cmd.Seq, CommandID: cmd.ID, Op: cmd.Op, Want: entry.Outcome, Got: got}
			e.logger.Warn("replay diverged", "seq", cmd.Seq, "op", cmd.Op, "detail", d.String())
			divergences = append(divergences, d)
		}
	}
	e.clock.reset(last)

	if n := gen.Misses(); n > 0 {
		e.logger.Warn("replay minted ids missing from the journal", "count", n)
	}
	e.logger.Info("replay complete", "entries", len(entries), "divergences", len(divergences))
	return e, divergences, nil
}

// MemoryJournal keeps entries in memory. Safe for concurrent use.
type MemoryJournal struct {
	mu      sync.Mutex
	entries []ir.Entry
}

// Append records cmd and out.
func (j *MemoryJournal) Append(_ context.Context, cmd ir.Command, out ir.Outcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, ir.Entry{Command: cmd, Outcome: out})
	return nil
}

// Entries returns a copy of the recorded entries.
func (j *MemoryJournal) Entries() []ir.Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]ir.Entry(nil), j.entries...)
}
