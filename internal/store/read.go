package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/cutroom/internal/ir"
)

const entryColumns = `
	c.id, c.session, c.op, c.args, c.seq, c.engine_version,
	o.id, o.command_id, o.output_case, o.result, o.seq`

// ReadSession returns the journal of one session in seq order.
// Returns an empty slice (not nil) for an unknown session.
func (s *Store) ReadSession(ctx context.Context, session string) ([]ir.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+entryColumns+`
		FROM commands c
		JOIN outcomes o ON o.command_id = c.id
		WHERE c.session = ?
		ORDER BY c.seq ASC, c.id COLLATE BINARY ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query session %s: %w", session, err)
	}
	return collectEntries(rows)
}

// ReadAll returns every journaled entry in seq order.
func (s *Store) ReadAll(ctx context.Context) ([]ir.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+entryColumns+`
		FROM commands c
		JOIN outcomes o ON o.command_id = c.id
		ORDER BY c.seq ASC, c.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query all entries: %w", err)
	}
	return collectEntries(rows)
}

// ReadEntry retrieves one entry by command id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadEntry(ctx context.Context, commandID string) (ir.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+entryColumns+`
		FROM commands c
		JOIN outcomes o ON o.command_id = c.id
		WHERE c.id = ?
	`, commandID)
	return scanEntry(row)
}

func collectEntries(rows *sql.Rows) ([]ir.Entry, error) {
	defer rows.Close()

	entries := []ir.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (ir.Entry, error) {
	var e ir.Entry
	var op, argsJSON, resultJSON string

	if err := row.Scan(
		&e.Command.ID, &e.Command.Session, &op, &argsJSON, &e.Command.Seq, &e.Command.EngineVersion,
		&e.Outcome.ID, &e.Outcome.CommandID, &e.Outcome.Case, &resultJSON, &e.Outcome.Seq,
	); err != nil {
		return ir.Entry{}, err
	}
	e.Command.Op = ir.OpName(op)

	args, err := unmarshalObject("args", argsJSON)
	if err != nil {
		return ir.Entry{}, err
	}
	e.Command.Args = args

	result, err := unmarshalObject("result", resultJSON)
	if err != nil {
		return ir.Entry{}, err
	}
	e.Outcome.Result = result

	return e, nil
}

// SessionInfo summarizes one journaled session.
type SessionInfo struct {
	Session  string `json:"session"`
	Commands int    `json:"commands"`
	FirstSeq int64  `json:"first_seq"`
	LastSeq  int64  `json:"last_seq"`
}

// ListSessions returns every session in order of first appearance.
func (s *Store) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session, COUNT(*), MIN(seq), MAX(seq)
		FROM commands
		GROUP BY session
		ORDER BY MIN(seq) ASC, session COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionInfo{}
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.Session, &info.Commands, &info.FirstSeq, &info.LastSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// LastSeq returns the highest seq in the journal, or 0 when empty. The
// engine resumes its clock from here.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var maxSeq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM outcomes
	`).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return maxSeq, nil
}

// LastSeqForSession returns the highest seq of one session, or 0.
func (s *Store) LastSeqForSession(ctx context.Context, session string) (int64, error) {
	var maxSeq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(o.seq), 0)
		FROM outcomes o
		JOIN commands c ON o.command_id = c.id
		WHERE c.session = ?
	`, session).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("get last seq for session %s: %w", session, err)
	}
	return maxSeq, nil
}
