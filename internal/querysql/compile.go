// Package querysql compiles journal queries to parameterized SQLite.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/queryir"
)

// columns maps query fields to journal columns. Commands are aliased c,
// outcomes o.
var columns = map[queryir.Field]string{
	queryir.FieldSession:   "c.session",
	queryir.FieldOp:        "c.op",
	queryir.FieldCase:      "o.output_case",
	queryir.FieldCommandID: "c.id",
	queryir.FieldSeq:       "c.seq",
}

// Compiler turns a queryir.Query into SQL selecting Columns from the
// journal. Every statement is ordered by seq with a binary id tiebreak,
// and every literal is a ? parameter.
type Compiler struct {
	Columns string
}

// NewCompiler returns a compiler selecting cols.
func NewCompiler(cols string) *Compiler {
	return &Compiler{Columns: cols}
}

// Compile validates q and returns the statement and its parameters.
func (c *Compiler) Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, fmt.Errorf("invalid query: %w", err)
	}

	var sel queryir.Select
	switch q := q.(type) {
	case queryir.Select:
		sel = q
	case *queryir.Select:
		sel = *q
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}

	cols := strings.TrimSpace(c.Columns)
	if cols == "" {
		cols = "c.id"
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(cols)
	b.WriteString(" FROM commands c JOIN outcomes o ON o.command_id = c.id")

	var params []any
	if sel.Filter != nil {
		where, p, err := c.predicate(sel.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = p
	}

	b.WriteString(" ORDER BY c.seq ASC, c.id COLLATE BINARY ASC")
	if sel.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, sel.Limit)
	}
	return b.String(), params, nil
}

func (c *Compiler) predicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return compare(pred.Field, "=", pred.Value)
	case *queryir.Equals:
		return compare(pred.Field, "=", pred.Value)
	case queryir.NotEquals:
		return compare(pred.Field, "<>", pred.Value)
	case *queryir.NotEquals:
		return compare(pred.Field, "<>", pred.Value)
	case queryir.In:
		return in(pred)
	case *queryir.In:
		return in(*pred)
	case queryir.Range:
		return rangeSQL(pred)
	case *queryir.Range:
		return rangeSQL(*pred)
	case queryir.And:
		return c.and(pred)
	case *queryir.And:
		return c.and(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compare(f queryir.Field, op string, v ir.IRValue) (string, []any, error) {
	param, err := irValueToParam(v)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", f, err)
	}
	return fmt.Sprintf("%s %s ?", columns[f], op), []any{param}, nil
}

func in(p queryir.In) (string, []any, error) {
	if len(p.Values) == 0 {
		return "1 = 0", nil, nil
	}
	params := make([]any, len(p.Values))
	for i, v := range p.Values {
		param, err := irValueToParam(v)
		if err != nil {
			return "", nil, fmt.Errorf("%s[%d]: %w", p.Field, i, err)
		}
		params[i] = param
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")
	return fmt.Sprintf("%s IN (%s)", columns[p.Field], marks), params, nil
}

func rangeSQL(p queryir.Range) (string, []any, error) {
	col := columns[p.Field]
	switch {
	case p.From != nil && p.To != nil:
		return col + " BETWEEN ? AND ?", []any{*p.From, *p.To}, nil
	case p.From != nil:
		return col + " >= ?", []any{*p.From}, nil
	case p.To != nil:
		return col + " <= ?", []any{*p.To}, nil
	}
	return "1 = 1", nil, nil
}

func (c *Compiler) and(p queryir.And) (string, []any, error) {
	if len(p.Predicates) == 0 {
		return "1 = 1", nil, nil
	}
	parts := make([]string, 0, len(p.Predicates))
	var params []any
	for _, sub := range p.Predicates {
		sql, subParams, err := c.predicate(sub)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "("+sql+")")
		params = append(params, subParams...)
	}
	return strings.Join(parts, " AND "), params, nil
}

// irValueToParam converts an ir.IRValue to a SQL parameter.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
