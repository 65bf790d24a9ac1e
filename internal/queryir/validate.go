package queryir

import (
	"errors"
	"fmt"

	"github.com/roach88/cutroom/internal/ir"
)

// Validate checks that a query only uses known fields with values of the
// right type. All problems are reported, joined.
func Validate(q Query) error {
	v := &validator{}
	v.query(q)
	return errors.Join(v.errs...)
}

type validator struct {
	errs []error
}

func (v *validator) addf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) query(q Query) {
	switch q := q.(type) {
	case nil:
		v.addf("nil query")
	case Select:
		v.selectQuery(q)
	case *Select:
		v.selectQuery(*q)
	default:
		v.addf("unsupported query type %T", q)
	}
}

func (v *validator) selectQuery(s Select) {
	if s.Limit < 0 {
		v.addf("limit must not be negative, got %d", s.Limit)
	}
	if s.Filter != nil {
		v.predicate(s.Filter)
	}
}

func (v *validator) predicate(p Predicate) {
	switch p := p.(type) {
	case nil:
		v.addf("nil predicate")
	case Equals:
		v.literal("equals", p.Field, p.Value)
	case *Equals:
		v.literal("equals", p.Field, p.Value)
	case NotEquals:
		v.literal("not equals", p.Field, p.Value)
	case *NotEquals:
		v.literal("not equals", p.Field, p.Value)
	case In:
		v.in(p)
	case *In:
		v.in(*p)
	case Range:
		v.rangePred(p)
	case *Range:
		v.rangePred(*p)
	case And:
		v.and(p)
	case *And:
		v.and(*p)
	default:
		v.addf("unsupported predicate type %T", p)
	}
}

func (v *validator) field(what string, f Field) bool {
	if !f.Known() {
		v.addf("%s: unknown field %q", what, f)
		return false
	}
	return true
}

func (v *validator) literal(what string, f Field, val ir.IRValue) {
	if !v.field(what, f) {
		return
	}
	switch val.(type) {
	case ir.IRInt:
		if !f.Numeric() {
			v.addf("%s %s: want string, got integer", what, f)
		}
	case ir.IRString:
		if f.Numeric() {
			v.addf("%s %s: want integer, got string", what, f)
		}
	case nil:
		v.addf("%s %s: missing value", what, f)
	default:
		v.addf("%s %s: unsupported value type %T", what, f, val)
	}
}

func (v *validator) in(p In) {
	for _, val := range p.Values {
		v.literal("in", p.Field, val)
	}
	if len(p.Values) == 0 {
		v.field("in", p.Field)
	}
}

func (v *validator) rangePred(p Range) {
	if !v.field("range", p.Field) {
		return
	}
	if !p.Field.Numeric() {
		v.addf("range %s: field is not numeric", p.Field)
	}
	if p.From != nil && p.To != nil && *p.From > *p.To {
		v.addf("range %s: from %d exceeds to %d", p.Field, *p.From, *p.To)
	}
}

func (v *validator) and(p And) {
	for _, sub := range p.Predicates {
		v.predicate(sub)
	}
}
