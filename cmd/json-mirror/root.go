package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stackvity/json-mirror/internal/cli"
	"github.com/stackvity/json-mirror/internal/cli/config"
	"github.com/stackvity/json-mirror/pkg/converter"
)

var (
	// These are set during build time using -ldflags
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = newRootCmd()

// newRootCmd builds the json-mirror command with all of its flags.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "json-mirror --input_dir <dir> (--output_dir <dir> | --relative_dir <subdir>)",
		Short: "Mirrors text files under a directory tree into JSON string files.",
		Long: `json-mirror recursively finds files with the configured extensions under
an input directory, reads each one as text and writes <name>.json holding the
content as a single JSON string.

Outputs go either into one shared directory (--output_dir) or into a
subdirectory next to each source file (--relative_dir). Files are converted in
parallel; a file that cannot be converted is logged and the run continues.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:    cobra.NoArgs,
		RunE:    runRoot,
	}
	cmd.SetVersionTemplate(`{{.Name}} version {{.Version}}` + "\n")

	// Persistent flags
	cmd.PersistentFlags().String("config", "", "Configuration file path (default searches ., $XDG_CONFIG_HOME/json-mirror, ~/.json-mirror)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose (debug) logging output (disables TUI)")

	// Paths
	cmd.Flags().String("input_dir", "", "Required. Directory to scan recursively.")
	cmd.Flags().String("output_dir", "", "Write every output into this directory (exclusive with --relative_dir)")
	cmd.Flags().String("relative_dir", "", "Write each output into this subdirectory of the source file's directory (exclusive with --output_dir)")

	// Conversion
	cmd.Flags().Int("num_workers", 0, "Number of parallel workers (default 80% of CPU cores, at least 1)")
	cmd.Flags().StringSlice("extensions", converter.DefaultExtensions, "File suffixes to convert (comma separated or repeated)")
	cmd.Flags().String("encoding", converter.DefaultEncoding, `Input encoding: "utf-8", "auto" or a charset label such as "windows-1252"`)
	cmd.Flags().Bool("ensure_ascii", converter.DefaultEnsureASCII, `Escape non-ASCII characters as \uXXXX in the output`)

	// Behavior & output
	cmd.Flags().Bool("fail_on_error", converter.DefaultFailOnError, "Exit non-zero when any file fails to convert")
	cmd.Flags().String("output_format", string(converter.DefaultOutputFormat), `Final report format ("text", "json", "yaml", "none")`)
	cmd.Flags().Bool("no_tui", false, "Disable interactive Terminal UI even if in a TTY")

	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfgFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	opts, logger, err := config.LoadAndValidate(cfgFile, version, verbose, cmd.Flags())
	if err != nil {
		return err
	}

	// Flags parsed fine; later failures are not usage errors.
	cmd.SilenceUsage = true
	return cli.Run(ctx, opts, logger, cmd.OutOrStdout())
}

// Execute runs the root command and exits non-zero on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
