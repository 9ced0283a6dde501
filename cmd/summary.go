package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/KaramelBytes/bookdash/internal/analysis"
	"github.com/KaramelBytes/bookdash/internal/dataset"
	"github.com/KaramelBytes/bookdash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	sumLo     int
	sumHi     int
	sumOutput string
	sumJSON   bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard aggregates for one year range as Markdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		v, err := computeView(cmd, c.DatasetPath, sumLo, sumHi)
		if err != nil {
			return err
		}
		var out []byte
		if sumJSON {
			out, err = json.MarshalIndent(v, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal view: %w", err)
			}
		} else {
			out = []byte(v.Markdown())
		}
		if sumOutput != "" {
			if err := utils.SafeWriteFile(sumOutput, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", sumOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// computeView loads path and computes the view for [lo, hi]. Unset bounds
// default to the configured slider range; set ones are clamped into it. A
// range sharing no year with the slider is an error.
func computeView(cmd *cobra.Command, path string, lo, hi int) (*analysis.View, error) {
	c := currentConfig()
	ds, err := dataset.Load(path, codecFor(c))
	if err != nil {
		return nil, err
	}
	slider := sliderBounds(c)
	rng := slider
	if cmd.Flags().Changed("lo") {
		rng.Lo = lo
	}
	if cmd.Flags().Changed("hi") {
		rng.Hi = hi
	}
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if !rng.Overlaps(slider) {
		return nil, fmt.Errorf("year range %s lies outside %s", rng, slider)
	}
	clamped := rng.Clamp(slider)
	if clamped != rng {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: year range %s clamped to %s\n", rng, clamped)
	}
	return analysis.Compute(ds.Records, clamped, analysisOptions(c)), nil
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().IntVar(&sumLo, "lo", 0, "first year of publication (default year_min)")
	summaryCmd.Flags().IntVar(&sumHi, "hi", 0, "last year of publication (default year_max)")
	summaryCmd.Flags().StringVarP(&sumOutput, "output", "o", "", "optional path to write the summary")
	summaryCmd.Flags().BoolVar(&sumJSON, "json", false, "emit the full view as JSON instead of Markdown")
}
