package commands

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/derivegen/check"
	"github.com/teranos/derivegen/errors"
)

func newCheckCmd() *cobra.Command {
	var (
		derives []string
		outDir  string
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "check <schema>...",
		Short: "Check that generated files are up to date",
		Long: `Regenerate in memory and compare with the files in the output directory.

The "// Source:" line is ignored, so checks from a different working
directory do not report changes. Generated files that no schema produces
any more are reported as orphaned. Pass the same --derive list that was
given to generate, otherwise generate.derives applies.

Exit codes:
  0 - Generated files are up to date
  1 - Files are out of date (diff shown) or a record failed to generate
  2 - Error during check

Examples:
  derivegen check schemas/*.yaml --out src/generated
  derivegen check models/ --derive Builder --out src/generated`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("out") {
				outDir = cfg.Generate.OutDir
			}
			if outDir == "" {
				return errors.WithHint(errors.New("check needs an output directory"), "pass --out or set generate.out_dir")
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
			files, genErr := p.run(ctx, args)
			if files == nil {
				return genErr
			}

			res, err := check.Compare(outDir, files)
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			if res.UpToDate() {
				pterm.Success.WithWriter(stderr).Printfln("%d generated file(s) up to date", len(files))
				return genErr
			}

			pterm.Error.WithWriter(stderr).Printfln("%d generated file(s) out of date", len(res.Differences))
			for _, d := range res.Differences {
				fmt.Fprintf(stderr, "  - %s (%s)\n", d.File, d.Status)
				if !quiet {
					fmt.Fprint(cmd.OutOrStdout(), d.Diff)
				}
			}
			return res.Err(outDir)
		},
	}

	cmd.Flags().StringSliceVarP(&derives, "derive", "d", nil, "Derives for records that list none, as passed to generate")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory holding the generated files")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "List stale files without printing diffs")
	return cmd
}
