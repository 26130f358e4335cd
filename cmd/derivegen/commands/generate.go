package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/derivegen/diag"
	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/generate"
	"github.com/teranos/derivegen/logger"
	"github.com/teranos/derivegen/watch"
)

func newGenerateCmd() *cobra.Command {
	var (
		derives  []string
		outDir   string
		watching bool
	)

	cmd := &cobra.Command{
		Use:   "generate <schema>...",
		Short: "Generate Rust code from schemas",
		Long: `Generate Rust builders and Debug impls for every record in the given schemas.

Each schema produces one <name>.rs file. Without --out the files are printed
to stdout. A record whose generation fails is replaced by a compile_error!
so the Rust build stops at the problem; the other records are still written.

Exit codes:
  0 - All records generated
  1 - At least one record failed to generate
  2 - Error reading schemas or config

Examples:
  derivegen generate schemas/command.yaml
  derivegen generate schemas/*.yaml --out src/generated
  derivegen generate models/ --derive Builder --out src/generated --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("out") {
				outDir = cfg.Generate.OutDir
			}
			if watching && outDir == "" {
				return errors.WithHint(errors.New("--watch needs an output directory"), "pass --out or set generate.out_dir")
			}

			verbosity, _ := cmd.Flags().GetCount("verbose")
			p, err := newPipeline(cfg, derives, verbosity)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			genErr := generateOnce(ctx, cmd, p, args, outDir)
			if !watching {
				return genErr
			}
			if genErr != nil && !errors.IsGenerationError(genErr) {
				return genErr
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			paths := args
			if cfg.Source != "" {
				paths = append(append([]string(nil), args...), cfg.Source)
			}
			source := filepath.Clean(cfg.Source)
			w, err := watch.New(paths, cfg.Debounce(), func(ctx context.Context, changed []string) error {
				if cfg.Source != "" && slices.Contains(changed, source) {
					if next, nextOut, err := reloadPipeline(cmd, derives, verbosity, outDir); err != nil {
						logger.Errorw("Config reload failed, keeping previous settings",
							logger.FieldFile, cfg.Source, logger.FieldError, err)
					} else {
						logger.Infow("Config reloaded", logger.FieldFile, cfg.Source)
						p, outDir = next, nextOut
					}
				}
				logger.Infow("Schemas changed", logger.FieldCount, len(changed))
				return generateOnce(ctx, cmd, p, args, outDir)
			})
			if err != nil {
				return err
			}
			pterm.Info.WithWriter(cmd.ErrOrStderr()).Printfln("Watching %d path(s), press Ctrl+C to stop", len(paths))
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringSliceVarP(&derives, "derive", "d", nil, "Derives for records that list none (e.g. Builder,CustomDebug)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: stdout)")
	cmd.Flags().BoolVarP(&watching, "watch", "w", false, "Regenerate when schemas or the config file change")
	return cmd
}

// reloadPipeline rebuilds the pipeline from the config file after it
// changed. An --out flag keeps precedence over generate.out_dir.
func reloadPipeline(cmd *cobra.Command, derives []string, verbosity int, outDir string) (*pipeline, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	p, err := newPipeline(cfg, derives, verbosity)
	if err != nil {
		return nil, "", err
	}
	if !cmd.Flags().Changed("out") && cfg.Generate.OutDir != "" {
		outDir = cfg.Generate.OutDir
	}
	return p, outDir, nil
}

// generateOnce runs the pipeline and writes or prints its files.
func generateOnce(ctx context.Context, cmd *cobra.Command, p *pipeline, paths []string, outDir string) error {
	files, err := p.run(ctx, paths)
	if files == nil {
		return err
	}

	if outDir == "" {
		for _, f := range files {
			fmt.Fprint(cmd.OutOrStdout(), f.Content)
		}
	} else {
		if werr := write(outDir, files); werr != nil {
			return werr
		}
		pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("Generated %d file(s) in %s", len(files), outDir)
	}

	var failures generate.Failures
	if errors.As(err, &failures) {
		reportFailures(cmd.ErrOrStderr(), failures)
	}
	return err
}

func reportFailures(w io.Writer, failures generate.Failures) {
	for _, f := range failures {
		fmt.Fprintln(w, diag.Format(f.Err, diag.ContextTerminal))
	}
}
