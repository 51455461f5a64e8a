// Package cli implements the diskreport command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/diskreport/internal/diskreport"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"text", "table", "json"}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	var options diskreport.Options

	cmd := &cobra.Command{
		Use:   "diskreport [flags] [path]",
		Short: "Report the largest files and layered directory sizes of a volume",
		Long: heredoc.Doc(`
			diskreport scans a directory tree and reports:

			  - the largest individual files, and
			  - the size of every top-level directory followed by the sizes of its
			    immediate subdirectories.

			Directories that cannot be read are skipped and logged to stderr;
			they never abort the scan.

			Positional Arguments:
			  path    Directory to analyze. Defaults to the root of the current volume.
		`),
		Args:          cobra.MaximumNArgs(1),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				options.Path = defaultRoot()
			} else {
				options.Path = args[0]
			}

			if err := validate(options); err != nil {
				return err
			}

			return logic(cmd.Context(), options, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	addFlags(cmd.Flags(), &options)

	cmd.SetVersionTemplate("{{.Version}}\n")

	return cmd
}

func addFlags(flags *pflag.FlagSet, options *diskreport.Options) {
	flags.SortFlags = false
	flags.IntVarP(&options.TopN, "top", "t", diskreport.DefaultTopN, "Number of largest files to report")
	flags.StringVarP(&options.Output, "output", "o", "text", "Output format: text, table or json")
	flags.IntVarP(&options.Workers, "workers", "w", 1, "Parallel workers for directory sizing (1=sequential)")
	flags.BoolVar(&options.Memoize, "memoize", false, "Compute layered sizes in a single pass")
	flags.BoolVar(&options.Volume, "volume", false, "Include filesystem usage of the scanned path")
	flags.StringVar(&options.PromFile, "prom-file", "", "Also write results as a Prometheus textfile")
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute(ctx context.Context) error {
	return c.Command().ExecuteContext(ctx)
}

func validate(options diskreport.Options) error {
	if !slices.Contains(allowedOutputs, options.Output) {
		return fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
	}

	if options.Workers < 1 {
		return errors.New("workers must be at least 1")
	}

	return nil
}

// defaultRoot returns the root of the volume holding the working directory.
func defaultRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return string(filepath.Separator)
	}

	return filepath.VolumeName(cwd) + string(filepath.Separator)
}
