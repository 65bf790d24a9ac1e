package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/cutroom/internal/engine"
	"github.com/roach88/cutroom/internal/store"
	"github.com/roach88/cutroom/internal/templates"
)

// workspace is an engine rebuilt from one journaled session, appending
// new commands back to the same journal.
type workspace struct {
	engine  *engine.Engine
	store   *store.Store
	session string
	entries int
}

func (w *workspace) Close() error {
	return w.store.Close()
}

// openWorkspace replays session from the journal. A journal that no longer
// reproduces its own outcomes is refused.
func (o *RootOptions) openWorkspace(ctx context.Context, session string) (*workspace, error) {
	reg, err := o.templateRegistry()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(o.databasePath())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	entries, err := st.ReadSession(ctx, session)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	e, divergences, err := engine.Replay(ctx, entries,
		engine.WithJournal(st),
		engine.WithSession(session),
		engine.WithLogger(o.logger()),
		engine.WithTemplates(reg),
		engine.WithTimelineOptions(o.Config.TimelineOptions()),
		engine.WithMapperOptions(o.Config.MapperOptions()...),
	)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to replay journal", err)
	}
	if len(divergences) > 0 {
		st.Close()
		lines := make([]string, len(divergences))
		for i, d := range divergences {
			lines[i] = d.String()
		}
		return nil, NewExitError(ExitFailure, fmt.Sprintf("session %s diverges from its journal:\n  %s", session, strings.Join(lines, "\n  ")))
	}

	o.logger().Debug("workspace opened", "session", session, "entries", len(entries), "seq", e.Clock().Current())
	return &workspace{engine: e, store: st, session: session, entries: len(entries)}, nil
}

// templateRegistry returns the builtin templates plus the configured
// template directory, if it exists.
func (o *RootOptions) templateRegistry() (*templates.Registry, error) {
	reg := templates.Builtin()
	dir := o.Config.Templates
	if dir == "" {
		return reg, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		o.logger().Warn("template directory not found", "dir", dir)
		return reg, nil
	}
	if err := reg.LoadDir(dir); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load templates", err)
	}
	return reg, nil
}

// sessionOr returns --session, else fallback, else DefaultSession.
func (o *RootOptions) sessionOr(fallback string) string {
	switch {
	case o.Session != "":
		return o.Session
	case fallback != "":
		return fallback
	}
	return DefaultSession
}
