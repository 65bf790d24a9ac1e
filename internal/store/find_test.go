package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/queryir"
)

func seedFind(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	ctx := context.Background()

	appendOk := func(session string, op ir.OpName, seq int64) {
		cmd, out := testEntry(t, session, op, ir.IRObject{"n": ir.IRInt(seq)}, ir.IRObject{}, seq)
		require.NoError(t, s.Append(ctx, cmd, out))
	}
	appendOk("edit", "addTrack", 1)
	appendOk("edit", "addClip", 2)
	appendOk("other", "addClip", 3)

	args := ir.IRObject{"clipId": ir.IRString("gone")}
	cmdID, err := ir.CommandID("edit", "deleteClip", args, 4)
	require.NoError(t, err)
	result := ir.IRObject{"message": ir.IRString("unknown clip")}
	outID, err := ir.OutcomeID(cmdID, "InvalidReference", result, 4)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx,
		ir.Command{ID: cmdID, Session: "edit", Op: "deleteClip", Args: args, Seq: 4, EngineVersion: ir.EngineVersion},
		ir.Outcome{ID: outID, CommandID: cmdID, Case: "InvalidReference", Result: result, Seq: 4}))

	appendOk("edit", "addClip", 5)
	return s
}

func seqs(entries []ir.Entry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.Command.Seq
	}
	return out
}

func TestFind(t *testing.T) {
	s := seedFind(t)
	ctx := context.Background()
	from := int64(2)

	tests := []struct {
		name string
		q    queryir.Query
		want []int64
	}{
		{"everything", queryir.Select{}, []int64{1, 2, 3, 4, 5}},
		{
			"session",
			queryir.Select{Filter: queryir.Equals{Field: queryir.FieldSession, Value: ir.IRString("edit")}},
			[]int64{1, 2, 4, 5},
		},
		{
			"session and op",
			queryir.Select{Filter: queryir.Conj(
				queryir.Equals{Field: queryir.FieldSession, Value: ir.IRString("edit")},
				queryir.Equals{Field: queryir.FieldOp, Value: ir.IRString("addClip")},
			)},
			[]int64{2, 5},
		},
		{
			"failed",
			queryir.Select{Filter: queryir.NotEquals{Field: queryir.FieldCase, Value: ir.IRString(ir.CaseOk)}},
			[]int64{4},
		},
		{
			"ops in",
			queryir.Select{Filter: queryir.In{Field: queryir.FieldOp, Values: []ir.IRValue{
				ir.IRString("addTrack"), ir.IRString("deleteClip"),
			}}},
			[]int64{1, 4},
		},
		{
			"seq from with limit",
			queryir.Select{Filter: queryir.Range{Field: queryir.FieldSeq, From: &from}, Limit: 2},
			[]int64{2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := s.Find(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, seqs(entries))
		})
	}
}

func TestFind_RoundTripsEntries(t *testing.T) {
	s := seedFind(t)
	entries, err := s.Find(context.Background(), queryir.Select{
		Filter: queryir.Equals{Field: queryir.FieldSeq, Value: ir.IRInt(4)},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "InvalidReference", entries[0].Outcome.Case)
	assert.Equal(t, ir.IRString("gone"), entries[0].Command.Args["clipId"])
}

func TestFind_InvalidQuery(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Find(context.Background(), queryir.Select{
		Filter: queryir.Equals{Field: queryir.FieldSeq, Value: ir.IRString("four")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid query")
}
