package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cutroom/internal/ir"
)

func seq(n int64) *int64 { return &n }

func TestValidate_Valid(t *testing.T) {
	queries := map[string]Query{
		"empty":   Select{},
		"pointer": &Select{Filter: &Equals{Field: FieldOp, Value: ir.IRString("moveClip")}},
		"failed in session": Select{
			Filter: And{Predicates: []Predicate{
				Equals{Field: FieldSession, Value: ir.IRString("rough-cut")},
				NotEquals{Field: FieldCase, Value: ir.IRString(ir.CaseOk)},
			}},
			Limit: 10,
		},
		"ops":       Select{Filter: In{Field: FieldOp, Values: []ir.IRValue{ir.IRString("splitClip"), ir.IRString("mergeClip")}}},
		"seq range": Select{Filter: Range{Field: FieldSeq, From: seq(3), To: seq(3)}},
		"open range": Select{Filter: Range{Field: FieldSeq, From: seq(10)}},
		"seq equals": Select{Filter: Equals{Field: FieldSeq, Value: ir.IRInt(4)}},
	}

	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, Validate(q))
		})
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"nil query", nil, []string{"nil query"}},
		{"negative limit", Select{Limit: -1}, []string{"limit must not be negative"}},
		{"unknown field", Select{Filter: Equals{Field: "track", Value: ir.IRString("t1")}}, []string{`unknown field "track"`}},
		{"string for seq", Select{Filter: Equals{Field: FieldSeq, Value: ir.IRString("4")}}, []string{"want integer, got string"}},
		{"int for op", Select{Filter: NotEquals{Field: FieldOp, Value: ir.IRInt(1)}}, []string{"want string, got integer"}},
		{"bool value", Select{Filter: Equals{Field: FieldCase, Value: ir.IRBool(true)}}, []string{"unsupported value type"}},
		{"missing value", Select{Filter: Equals{Field: FieldCase}}, []string{"missing value"}},
		{"range on string", Select{Filter: Range{Field: FieldOp, From: seq(1)}}, []string{"field is not numeric"}},
		{"inverted range", Select{Filter: Range{Field: FieldSeq, From: seq(5), To: seq(2)}}, []string{"from 5 exceeds to 2"}},
		{
			"collects all",
			Select{Filter: And{Predicates: []Predicate{
				Equals{Field: "clip", Value: ir.IRString("c")},
				In{Field: FieldSeq, Values: []ir.IRValue{ir.IRInt(1), ir.IRString("2")}},
				nil,
			}}},
			[]string{`unknown field "clip"`, "in seq: want integer, got string", "nil predicate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.query)
			require.Error(t, err)
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}

func TestConj(t *testing.T) {
	op := Equals{Field: FieldOp, Value: ir.IRString("seek")}
	failed := NotEquals{Field: FieldCase, Value: ir.IRString(ir.CaseOk)}

	assert.Nil(t, Conj())
	assert.Nil(t, Conj(nil, nil))
	assert.Equal(t, op, Conj(nil, op))
	assert.Equal(t, And{Predicates: []Predicate{op, failed}}, Conj(op, nil, failed))
}

func TestFieldKnown(t *testing.T) {
	for _, f := range Fields {
		assert.True(t, f.Known(), f)
	}
	assert.False(t, Field("clipId").Known())
	assert.True(t, FieldSeq.Numeric())
	assert.False(t, FieldOp.Numeric())
}
