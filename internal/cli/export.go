package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/cutroom/internal/export"
	"github.com/roach88/cutroom/internal/timeline"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Track     string
	Title     string
	FrameRate float64
	Assets    string
	Output    string
}

// ExportResult is the JSON form of an export.
type ExportResult struct {
	Track      string         `json:"track"`
	Events     []export.Event `json:"events"`
	Unresolved []string       `json:"unresolved_clips"`
	EDL        string         `json:"edl,omitempty"`
	Output     string         `json:"output,omitempty"`
}

// assetEntry is one row of an --assets file.
type assetEntry struct {
	MediaURL     string  `yaml:"media_url"`
	ThumbnailURL string  `yaml:"thumbnail_url"`
	DurationHint float64 `yaml:"duration_hint"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a track as a CMX3600 EDL",
		Long: `Export one track of a journaled session as a CMX3600 edit decision list.

The track is named by id or by its display name. Clip content references
are used as media paths unless --assets maps them:

  intro.mp4:
    media_url: s3://media/intro-master.mov

Clips whose reference is not in the map are reported as unresolved and
left out of the EDL.

Examples:
  cutroom export --track "Video 1" --fps 25
  cutroom export --track <id> --assets assets.yaml -o cut.edl`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Track, "track", "", "track id or name (required)")
	_ = cmd.MarkFlagRequired("track")
	cmd.Flags().StringVar(&opts.Title, "title", "CUTROOM", "EDL title")
	cmd.Flags().Float64Var(&opts.FrameRate, "fps", 30, "frame rate for timecodes")
	cmd.Flags().StringVar(&opts.Assets, "assets", "", "YAML file mapping content refs to media")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the EDL to a file instead of stdout")

	return cmd
}

func runExport(ctx context.Context, opts *ExportOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var resolver export.Resolver = export.PassthroughResolver{}
	if opts.Assets != "" {
		m, err := loadAssets(opts.Assets)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load assets", err)
		}
		resolver = m
	}

	ws, err := opts.openWorkspace(ctx, opts.sessionOr(""))
	if err != nil {
		return err
	}
	defer ws.Close()

	snap := ws.engine.Snapshot()
	trackID, ok := findTrack(snap, opts.Track)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("no track %q in session %s", opts.Track, ws.session))
	}
	res, err := export.EventsForTrack(snap, trackID, resolver)
	if err != nil {
		return WrapExitError(ExitFailure, "export failed", err)
	}
	edl := export.GenerateEDL(opts.Title, opts.FrameRate, res.Events)

	out := ExportResult{Track: trackID, Events: res.Events, Unresolved: res.Unresolved}
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(edl), 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write EDL", err)
		}
		out.Output = opts.Output
	} else {
		out.EDL = edl
	}

	f := opts.formatter(cmd)
	for _, id := range res.Unresolved {
		f.VerboseLog("unresolved clip %s", id)
	}
	return f.Success(out, func(w io.Writer) {
		if opts.Output == "" {
			fmt.Fprint(w, edl)
		} else {
			fmt.Fprintf(w, "Wrote %d event(s) to %s\n", len(res.Events), opts.Output)
		}
		if len(res.Unresolved) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d clip(s) unresolved: %v\n", len(res.Unresolved), res.Unresolved)
		}
	})
}

// findTrack resolves a track id, falling back to the first track whose
// name matches.
func findTrack(snap timeline.Snapshot, ref string) (string, bool) {
	if _, ok := snap.Track(ref); ok {
		return ref, true
	}
	for _, t := range snap.Tracks {
		if t.Name == ref {
			return t.ID, true
		}
	}
	return "", false
}

func loadAssets(path string) (export.MapResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]assetEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	m := make(export.MapResolver, len(raw))
	for ref, a := range raw {
		if a.MediaURL == "" {
			return nil, fmt.Errorf("%s: asset %q has no media_url", path, ref)
		}
		m[ref] = export.Asset{MediaURL: a.MediaURL, ThumbnailURL: a.ThumbnailURL, DurationHint: a.DurationHint}
	}
	return m, nil
}
