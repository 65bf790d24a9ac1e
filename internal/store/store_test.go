package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cutroom/internal/ir"
)

// createTestStore opens a journal in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testEntry builds a command/outcome pair with real content-addressed ids.
func testEntry(t *testing.T, session string, op ir.OpName, args, result ir.IRObject, seq int64) (ir.Command, ir.Outcome) {
	t.Helper()
	cmdID, err := ir.CommandID(session, op, args, seq)
	require.NoError(t, err)
	outID, err := ir.OutcomeID(cmdID, ir.CaseOk, result, seq)
	require.NoError(t, err)
	return ir.Command{
			ID: cmdID, Session: session, Op: op, Args: args, Seq: seq, EngineVersion: ir.EngineVersion,
		}, ir.Outcome{
			ID: outID, CommandID: cmdID, Case: ir.CaseOk, Result: result, Seq: seq,
		}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	cmd, out := testEntry(t, "s1", "addTrack", ir.IRObject{"type": ir.IRString("video")}, ir.IRObject{}, 1)
	require.NoError(t, s1.Append(ctx, cmd, out))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	entries, err := s2.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAppend_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	args := ir.IRObject{
		"trackId": ir.IRString("t1"),
		"start":   ir.Micros(1.5),
		"big":     ir.IRInt(1 << 60),
	}
	result := ir.IRObject{
		"created": ir.IRArray{ir.IRString("c1")},
		"clip":    ir.IRObject{"id": ir.IRString("c1"), "locked": ir.IRBool(false)},
	}
	cmd, out := testEntry(t, "s1", "addClip", args, result, 7)
	require.NoError(t, s.Append(ctx, cmd, out))

	got, err := s.ReadEntry(ctx, cmd.ID)
	require.NoError(t, err)
	assert.Equal(t, cmd, got.Command)
	assert.Equal(t, out, got.Outcome)
	assert.Equal(t, []string{"c1"}, got.Outcome.Created())
}

func TestAppend_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	cmd, out := testEntry(t, "s1", "play", ir.IRObject{}, ir.IRObject{}, 1)
	require.NoError(t, s.Append(ctx, cmd, out))
	require.NoError(t, s.Append(ctx, cmd, out))

	entries, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAppend_RejectsMismatchedOutcome(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	cmd, out := testEntry(t, "s1", "play", ir.IRObject{}, ir.IRObject{}, 1)
	out.CommandID = "other"
	assert.Error(t, s.Append(ctx, cmd, out))

	entries, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing written")
}

func TestReadEntry_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadEntry(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReadSession_Ordering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Written out of order; reads come back by seq.
	for _, seq := range []int64{3, 1, 2} {
		cmd, out := testEntry(t, "edit", "seek", ir.IRObject{"time": ir.IRInt(seq)}, ir.IRObject{}, seq)
		require.NoError(t, s.Append(ctx, cmd, out))
	}
	cmd, out := testEntry(t, "other", "play", ir.IRObject{}, ir.IRObject{}, 4)
	require.NoError(t, s.Append(ctx, cmd, out))

	entries, err := s.ReadSession(ctx, "edit")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, int64(i+1), e.Command.Seq)
		assert.Equal(t, "edit", e.Command.Session)
	}

	entries, err = s.ReadSession(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestListSessionsAndLastSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	last, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Zero(t, last)

	appendAt := func(session string, seq int64) {
		cmd, out := testEntry(t, session, "play", ir.IRObject{}, ir.IRObject{}, seq)
		require.NoError(t, s.Append(ctx, cmd, out))
	}
	appendAt("b", 1)
	appendAt("a", 2)
	appendAt("b", 3)

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []SessionInfo{
		{Session: "b", Commands: 2, FirstSeq: 1, LastSeq: 3},
		{Session: "a", Commands: 1, FirstSeq: 2, LastSeq: 2},
	}, sessions)

	last, err = s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), last)

	last, err = s.LastSeqForSession(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), last)
}
