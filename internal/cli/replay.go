package cli

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/roach88/cutroom/internal/engine"
	"github.com/roach88/cutroom/internal/geometry"
	"github.com/roach88/cutroom/internal/store"
	"github.com/roach88/cutroom/internal/timeline"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session       string   `json:"session"`
	Entries       int      `json:"entries"`
	Tracks        int      `json:"tracks"`
	Clips         int      `json:"clips"`
	TotalDuration float64  `json:"total_duration"`
	Divergences   []string `json:"divergences,omitempty"`
	Deterministic bool     `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the journal and verify determinism",
		Long: `Replay the journal and verify that it reproduces itself.

Each session is rebuilt twice from an empty timeline. A session is
deterministic when every re-executed command yields the outcome id that
was journaled and both rebuilds end in the same timeline.

Exit codes:
  0 - All sessions are deterministic
  1 - A session diverged from its journal
  2 - Command error (journal not found, etc.)

Examples:
  cutroom replay --db project.db
  cutroom replay --db project.db --session rough-cut
  cutroom replay --db project.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd)
		},
	}

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.databasePath())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	sessions, err := sessionsToReplay(ctx, st, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	f := opts.formatter(cmd)
	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}
	for _, session := range sessions {
		sr, err := replaySession(ctx, opts.RootOptions, st, session)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", session), err)
		}
		f.VerboseLog("replayed %s: %d entries", session, sr.Entries)
		result.Sessions = append(result.Sessions, sr)
		if !sr.Deterministic {
			result.AllDeterministic = false
		}
	}

	if result.AllDeterministic {
		return f.Success(result, func(w io.Writer) { writeReplayText(w, result, opts.Verbose) })
	}
	if f.Format == "json" {
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: "E_REPLAY", Message: "determinism verification failed"},
		}); err != nil {
			return err
		}
	} else {
		writeReplayText(cmd.OutOrStdout(), result, opts.Verbose)
	}
	return NewExitError(ExitFailure, "determinism verification failed")
}

func sessionsToReplay(ctx context.Context, st *store.Store, only string) ([]string, error) {
	if only != "" {
		return []string{only}, nil
	}
	infos, err := st.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	sessions := make([]string, len(infos))
	for i, info := range infos {
		sessions[i] = info.Session
	}
	return sessions, nil
}

// replaySession rebuilds one session twice and compares the results.
func replaySession(ctx context.Context, opts *RootOptions, st *store.Store, session string) (ReplaySessionResult, error) {
	entries, err := st.ReadSession(ctx, session)
	if err != nil {
		return ReplaySessionResult{}, err
	}
	reg, err := opts.templateRegistry()
	if err != nil {
		return ReplaySessionResult{}, err
	}
	engineOpts := []engine.Option{
		engine.WithSession(session),
		engine.WithLogger(opts.logger()),
		engine.WithTemplates(reg),
		engine.WithTimelineOptions(opts.Config.TimelineOptions()),
		engine.WithMapperOptions(opts.Config.MapperOptions()...),
	}

	first, divergences, err := engine.Replay(ctx, entries, engineOpts...)
	if err != nil {
		return ReplaySessionResult{}, fmt.Errorf("first replay failed: %w", err)
	}
	second, _, err := engine.Replay(ctx, entries, engineOpts...)
	if err != nil {
		return ReplaySessionResult{}, fmt.Errorf("second replay failed: %w", err)
	}

	snap := first.Snapshot()
	sr := ReplaySessionResult{
		Session:       session,
		Entries:       len(entries),
		Tracks:        len(snap.Tracks),
		Clips:         len(snap.Clips),
		Deterministic: len(divergences) == 0,
	}
	first.View(func(tl *timeline.Timeline, _ *geometry.Mapper) {
		sr.TotalDuration = tl.TotalDuration()
	})
	for _, d := range divergences {
		sr.Divergences = append(sr.Divergences, d.String())
	}
	if !reflect.DeepEqual(snap, second.Snapshot()) {
		sr.Deterministic = false
		sr.Divergences = append(sr.Divergences, "rebuilds of the session produced different timelines")
	}
	return sr, nil
}

// writeReplayText outputs the replay result as text.
func writeReplayText(w io.Writer, result ReplayResult, verbose bool) {
	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return
	}
	fmt.Fprintf(w, "Replay Summary: %d session(s)\n", result.TotalSessions)
	fmt.Fprintln(w)

	for _, s := range result.Sessions {
		status := "✓"
		if !s.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Session: %s\n", status, s.Session)
		fmt.Fprintf(w, "  Commands: %d\n", s.Entries)
		if verbose {
			fmt.Fprintf(w, "  Tracks: %d\n", s.Tracks)
			fmt.Fprintf(w, "  Clips: %d\n", s.Clips)
			fmt.Fprintf(w, "  Duration: %.3fs\n", s.TotalDuration)
		}
		for _, d := range s.Divergences {
			fmt.Fprintf(w, "  Diverged: %s\n", d)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All sessions verified deterministic")
		return
	}
	fmt.Fprintln(w, "✗ Determinism verification failed")
}
