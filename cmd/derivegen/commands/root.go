// Package commands implements the derivegen command line.
package commands

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/derivegen/config"
	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/logger"
)

// Exit codes shared by every command.
const (
	ExitOK    = 0
	ExitStale = 1 // generation failed or output is out of date
	ExitError = 2 // bad input, config, or I/O
)

// NewRootCmd builds the derivegen command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "derivegen",
		Short: "Generate Rust builders and Debug impls from record schemas",
		Long: `derivegen - schema-driven derive generator.

Reads record descriptions from YAML, TOML, JSON or annotated Go sources and
writes Rust source with a builder companion type and a Debug implementation
for each record.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (DERIVEGEN_* prefix)
3. Project config (derivegen.toml, searched upwards from the working directory)
4. Default values

Examples:
  derivegen generate schemas/command.yaml            # Print generated Rust
  derivegen generate schemas/*.yaml --out src/gen    # Write one .rs per schema
  derivegen check schemas/*.yaml --out src/gen       # Fail if src/gen is stale
  derivegen config init                              # Write derivegen.toml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbosity, _ := cmd.Flags().GetCount("verbose")
			jsonLogs, _ := cmd.Flags().GetBool("json-logs")
			if err := logger.Initialize(jsonLogs, verbosity); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			if jsonLogs || !pterm.PrintColor {
				pterm.DisableStyling()
			}
			return nil
		},
	}

	root.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	root.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")
	root.PersistentFlags().StringP("config", "c", "", "Config file (default: nearest "+config.FileName+")")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// loadConfig reads the configuration named by --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		logger.Infow("Using config", logger.FieldFile, cfg.Source)
	}
	return cfg, nil
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errors.ErrOutOfDate), errors.IsGenerationError(err):
		return ExitStale
	default:
		return ExitError
	}
}

// PrintError reports a command error with its hints.
func PrintError(w io.Writer, err error) {
	pterm.Error.WithWriter(w).Println(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "  hint: %s\n", hint)
	}
}
