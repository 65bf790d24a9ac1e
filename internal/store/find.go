package store

import (
	"context"
	"fmt"

	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/queryir"
	"github.com/roach88/cutroom/internal/querysql"
)

// Find returns the entries matching q in seq order.
func (s *Store) Find(ctx context.Context, q queryir.Query) ([]ir.Entry, error) {
	query, params, err := querysql.NewCompiler(entryColumns).Compile(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("find entries: %w", err)
	}
	return collectEntries(rows)
}
