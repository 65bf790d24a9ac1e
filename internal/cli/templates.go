package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/cutroom/internal/templates"
	"github.com/roach88/cutroom/internal/timeline"
)

// TemplateInfo describes one registered track template.
type TemplateInfo struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Type   string `json:"type"`
	Height int    `json:"height,omitempty"`
	Volume int    `json:"volume"`
	Source string `json:"source,omitempty"`
}

// NewTemplatesCommand creates the templates command group.
func NewTemplatesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List and validate track templates",
		Long: `Track templates are CUE definitions that addTrack{template} expands
into a track type, name, height and volume. The builtin set is always
available; the directory named by "templates" in config.toml adds to it.`,
	}
	cmd.AddCommand(newTemplatesListCommand(rootOpts))
	cmd.AddCommand(newTemplatesValidateCommand(rootOpts))
	return cmd
}

func newTemplatesListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List available templates",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.templateRegistry()
			if err != nil {
				return err
			}
			infos := make([]TemplateInfo, 0)
			for _, name := range reg.Names() {
				tmpl, _ := reg.Template(name)
				info := TemplateInfo{
					Name:   name,
					Label:  tmpl.Name,
					Type:   string(tmpl.Type),
					Height: tmpl.Height,
					Volume: timeline.DefaultVolume,
				}
				if tmpl.Volume != nil {
					info.Volume = *tmpl.Volume
				}
				if opts.Verbose {
					info.Source = reg.Source(name)
				}
				infos = append(infos, info)
			}
			return opts.formatter(cmd).Success(infos, func(w io.Writer) {
				for _, info := range infos {
					fmt.Fprintf(w, "%-14s %-8s %-14q volume %d", info.Name, info.Type, info.Label, info.Volume)
					if info.Height > 0 {
						fmt.Fprintf(w, " height %d", info.Height)
					}
					fmt.Fprintln(w)
					if info.Source != "" {
						fmt.Fprintf(w, "  from %s\n", info.Source)
					}
				}
			})
		},
	}
}

func newTemplatesValidateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.cue|dir>...",
		Short: "Check template files without loading them",
		Long: `Compile template files against the template schema and report every
error with its position. Directories are searched for *.cue files.

Exit codes:
  0 - All files are valid
  1 - One or more files have errors
  2 - Command error (unreadable path)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandCUEPaths(args)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read templates", err)
			}
			f := opts.formatter(cmd)
			errs := templates.Validate(paths...)
			if len(errs) == 0 {
				return f.Success(map[string]any{"files": paths}, func(w io.Writer) {
					fmt.Fprintf(w, "✓ %d template file(s) valid\n", len(paths))
				})
			}

			messages := make([]string, len(errs))
			for i, e := range errs {
				messages[i] = e.Error()
			}
			if f.Format == "json" {
				if err := f.Error("E_TEMPLATE", fmt.Sprintf("%d template error(s)", len(errs)), messages); err != nil {
					return err
				}
			} else {
				w := cmd.OutOrStdout()
				for _, m := range messages {
					fmt.Fprintf(w, "✗ %s\n", m)
				}
			}
			return NewExitError(ExitFailure, fmt.Sprintf("%d template error(s)", len(errs)))
		},
	}
}

// expandCUEPaths replaces directories with the *.cue files they contain.
func expandCUEPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		matches, err := filepath.Glob(filepath.Join(arg, "*.cue"))
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			paths = append(paths, matches...)
			continue
		}
		paths = append(paths, arg)
	}
	return paths, nil
}
