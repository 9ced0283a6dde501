package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/bookdash/internal/dataset"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	clOutput string
	clDryRun bool
	clMaxAge int
	clQuiet  bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [files...]",
	Short: "Replace implausible ages (> max age) and zero ratings with the missing marker",
	Long: `clean rewrites each ratings CSV in place: ages above --max-age and ratings
equal to zero become the missing marker (N/A by default). The header row and
every other cell value are kept in the configured encoding; CSV quoting is
rewritten as needed and line endings, including CRLF inside quoted cells,
become LF. Without arguments the configured dataset_path is cleaned. Arguments
may be glob patterns.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		if len(args) == 0 {
			args = []string{c.DatasetPath}
		}
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		if clOutput != "" && len(files) > 1 {
			return fmt.Errorf("--output requires a single input file, got %d", len(files))
		}

		opt := dataset.CleanOptions{Codec: codecFor(c), MaxAge: float64(c.MaxAge)}
		if cmd.Flags().Changed("max-age") {
			if clMaxAge <= 0 {
				return fmt.Errorf("invalid --max-age: %d", clMaxAge)
			}
			opt.MaxAge = float64(clMaxAge)
		}
		if _, err := dataset.LookupEncoding(opt.Codec.Encoding); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !clQuiet {
				fmt.Fprintf(out, "[%d/%d] Cleaning %s...\n", i+1, total, filepath.Base(path))
			}
			dst := path
			if clOutput != "" {
				dst = clOutput
			}
			if clDryRun {
				dst = ""
			}
			stats, err := dataset.CleanFile(path, dst, opt)
			if err != nil {
				return err
			}
			logger.Debug("cleaned dataset",
				zap.String("src", path),
				zap.String("dst", dst),
				zap.Int("rows", stats.Rows),
				zap.Int("ages_nulled", stats.AgesNulled),
				zap.Int("ratings_nulled", stats.RatingsNulled))
			if clQuiet {
				continue
			}
			switch {
			case clDryRun:
				fmt.Fprintf(out, "  %d rows: would null %d ages and %d ratings (dry run, nothing written)\n",
					stats.Rows, stats.AgesNulled, stats.RatingsNulled)
			case !stats.Changed():
				fmt.Fprintf(out, "✓ %s already clean (%d rows)\n", filepath.Base(dst), stats.Rows)
			default:
				fmt.Fprintf(out, "✓ Wrote %s: %d rows, %d ages and %d ratings set to missing\n",
					dst, stats.Rows, stats.AgesNulled, stats.RatingsNulled)
			}
		}
		return nil
	},
}

// expandInputs resolves glob patterns and literal paths, dropping duplicates.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err != nil {
				return nil, fmt.Errorf("open dataset: %w", err)
			}
			matches = []string{arg}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&clOutput, "output", "o", "", "write the cleaned table here instead of in place (single input only)")
	cleanCmd.Flags().BoolVar(&clDryRun, "dry-run", false, "report what would change without writing")
	cleanCmd.Flags().IntVar(&clMaxAge, "max-age", dataset.DefaultMaxAge, "ages strictly above this become missing (overrides config)")
	cleanCmd.Flags().BoolVar(&clQuiet, "quiet", false, "suppress progress and non-essential output")
}
