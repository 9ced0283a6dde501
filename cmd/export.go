package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/bookdash/internal/charts"
	"github.com/KaramelBytes/bookdash/internal/utils"
	"github.com/spf13/cobra"
)

var (
	exLo     int
	exHi     int
	exOutDir string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every chart (SVG), the 3D points, an XLSX workbook and a Markdown summary for one year range",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		v, err := computeView(cmd, c.DatasetPath, exLo, exHi)
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(exOutDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		out := cmd.OutOrStdout()
		write := func(name string, data []byte) error {
			path := filepath.Join(exOutDir, name)
			if err := utils.SafeWriteFile(path, data); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
			fmt.Fprintf(out, "✓ Wrote %s\n", path)
			return nil
		}

		for _, name := range charts.SVGNames {
			var buf bytes.Buffer
			err := charts.Render(&buf, name, v)
			if errors.Is(err, charts.ErrNoData) {
				fmt.Fprintf(out, "⚠ Warning: %s has no data in %s\n", name, v.Range)
				buf.Reset()
				err = charts.Placeholder(&buf, "No data in the selected range")
			}
			if err != nil {
				return fmt.Errorf("render %s: %w", name, err)
			}
			if err := write(name+".svg", buf.Bytes()); err != nil {
				return err
			}
		}

		pts, err := json.MarshalIndent(v.Scatter3D, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal 3d points: %w", err)
		}
		if err := write(charts.Scatter3D+".json", pts); err != nil {
			return err
		}

		var book bytes.Buffer
		if err := v.WriteXLSX(&book); err != nil {
			return err
		}
		if err := write("bookdash.xlsx", book.Bytes()); err != nil {
			return err
		}
		return write("summary.md", []byte(v.Markdown()))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().IntVar(&exLo, "lo", 0, "first year of publication (default year_min)")
	exportCmd.Flags().IntVar(&exHi, "hi", 0, "last year of publication (default year_max)")
	exportCmd.Flags().StringVarP(&exOutDir, "out-dir", "d", "bookdash-export", "directory for the exported files")
}
