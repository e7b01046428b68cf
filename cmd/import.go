package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/logger"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/source"
)

var (
	flagImportDryRun    bool
	flagImportMaxErrors int
)

var importCmd = &cobra.Command{
	Use:   "import [path...]",
	Short: "Import CSV statements into the transaction database",
	Long: `Import CSV statements from files or directories. Directories are walked
recursively. A file is imported only when every row parses; otherwise the
whole file is rejected and its row errors are listed. Unchanged files are
skipped on later runs.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVarP(&flagImportDryRun, "dry-run", "n", false, "Parse and report without writing")
	importCmd.Flags().IntVar(&flagImportMaxErrors, "max-errors", 20, "Max row errors to print")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		dir := s.statementsDir()
		if dir == "" {
			return errors.New("no path given and general.statements_dir is not configured")
		}
		paths = []string{dir}
	}

	log := logger.FromContext(cmd.Context())
	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		if current == total {
			fmt.Fprintln(os.Stderr)
		}
	}

	var rowErrs []source.RowError
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		log.Debug().Str("path", abs).Bool("dry_run", flagImportDryRun).Msg("importing")

		if flagImportDryRun {
			res, err := pipeline.Load(abs, progressFn)
			if err != nil {
				return err
			}
			fmt.Printf("  %s: %d files, %s transactions parsed, %d row errors (dry run)\n",
				p, res.TotalFiles, cli.FormatNumber(int64(len(res.Transactions))), len(res.RowErrors))
			rowErrs = append(rowErrs, res.RowErrors...)
			continue
		}

		rows, err := importPath(abs, p, progressFn)
		if err != nil {
			return err
		}
		rowErrs = append(rowErrs, rows...)
	}

	printRowErrors(rowErrs, flagImportMaxErrors)
	return nil
}

func importPath(abs, display string, progressFn pipeline.ProgressFunc) ([]source.RowError, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()

	res, err := pipeline.LoadWithCache(abs, st, progressFn)
	if err != nil {
		return nil, err
	}

	if res.TotalFiles == 0 {
		fmt.Printf("  %s: no CSV statements found\n", display)
		return nil, nil
	}
	fmt.Printf("  %s: %d files (%d unchanged, %d parsed), %s transactions imported across %d accounts\n",
		display, res.TotalFiles, res.CacheHits, res.Reparsed,
		cli.FormatNumber(int64(res.Imported)), res.AccountCount)
	if res.FileErrors > 0 {
		fmt.Println(cli.RenderWarning(fmt.Sprintf("%d files could not be read", res.FileErrors)))
	}
	for _, f := range res.RejectedFiles {
		fmt.Println(cli.RenderWarning("rejected " + f))
	}
	return res.RowErrors, nil
}

func printRowErrors(errs []source.RowError, limit int) {
	if len(errs) == 0 {
		return
	}
	fmt.Println()
	for i, e := range errs {
		if limit > 0 && i == limit {
			fmt.Println(cli.RenderMuted(fmt.Sprintf("  ... and %d more", len(errs)-limit)))
			break
		}
		fmt.Printf("  %s\n", e.Error())
	}
}
