package store

import (
	"context"
	"fmt"

	"github.com/roach88/cutroom/internal/ir"
)

// Append journals a command and its outcome in one transaction. Either
// both rows persist or neither does. Re-appending the same command id is a
// no-op, which keeps a crashed-and-retried write idempotent.
func (s *Store) Append(ctx context.Context, cmd ir.Command, out ir.Outcome) error {
	if out.CommandID != cmd.ID {
		return fmt.Errorf("append: outcome %s answers %s, not %s", out.ID, out.CommandID, cmd.ID)
	}
	argsJSON, err := marshalObject("args", cmd.Args)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}
	resultJSON, err := marshalObject("result", out.Result)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO commands
		(id, session, op, args, seq, engine_version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		cmd.ID,
		cmd.Session,
		string(cmd.Op),
		argsJSON,
		cmd.Seq,
		cmd.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("append: write command: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO outcomes
		(id, command_id, output_case, result, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		out.ID,
		out.CommandID,
		out.Case,
		resultJSON,
		out.Seq,
	)
	if err != nil {
		return fmt.Errorf("append: write outcome: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append: commit: %w", err)
	}
	return nil
}
