package queryir

import "github.com/roach88/cutroom/internal/ir"

// Field is a filterable journal column.
type Field string

const (
	FieldSession   Field = "session"
	FieldOp        Field = "op"
	FieldCase      Field = "case"
	FieldCommandID Field = "command_id"
	FieldSeq       Field = "seq"
)

// Fields lists every filterable field.
var Fields = []Field{FieldSession, FieldOp, FieldCase, FieldCommandID, FieldSeq}

// Known reports whether f is a journal field.
func (f Field) Known() bool {
	for _, k := range Fields {
		if f == k {
			return true
		}
	}
	return false
}

// Numeric reports whether f holds integers rather than strings.
func (f Field) Numeric() bool {
	return f == FieldSeq
}

// Query selects journal entries. Sealed; see the package doc.
type Query interface {
	queryNode()
}

// Predicate filters journal entries. Sealed; see the package doc.
type Predicate interface {
	predicateNode()
}

// Select returns the entries matching Filter in seq order. A nil Filter
// matches everything. Limit caps the result; zero means no cap.
//
//	Select{
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Field: FieldSession, Value: ir.IRString("rough-cut")},
//	    NotEquals{Field: FieldCase, Value: ir.IRString("Ok")},
//	  }},
//	  Limit: 20,
//	}
type Select struct {
	Filter Predicate
	Limit  int
}

func (Select) queryNode() {}

// Equals matches entries whose field equals Value.
type Equals struct {
	Field Field
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// NotEquals matches entries whose field differs from Value.
type NotEquals struct {
	Field Field
	Value ir.IRValue
}

func (NotEquals) predicateNode() {}

// In matches entries whose field equals any of Values. An empty In
// matches nothing.
type In struct {
	Field  Field
	Values []ir.IRValue
}

func (In) predicateNode() {}

// Range matches numeric fields within [From, To]. A nil bound is open.
type Range struct {
	Field Field
	From  *int64
	To    *int64
}

func (Range) predicateNode() {}

// And matches entries satisfying every predicate. An empty And matches
// everything.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Conj builds an And from the non-nil predicates, collapsing the trivial
// cases: no predicates yields nil, one yields itself.
func Conj(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return And{Predicates: kept}
}
