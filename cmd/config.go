package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/bookdash/internal/config"
	"github.com/KaramelBytes/bookdash/internal/dataset"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set bookdash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "dataset_path: %s\n", c.DatasetPath)
		fmt.Fprintf(out, "encoding: %s\n", c.Encoding)
		fmt.Fprintf(out, "missing_token: %s\n", c.MissingToken)
		fmt.Fprintf(out, "max_age: %d\n", c.MaxAge)
		fmt.Fprintf(out, "listen_addr: %s\n", c.ListenAddr)
		fmt.Fprintf(out, "year_min: %d\n", c.YearMin)
		fmt.Fprintf(out, "year_max: %d\n", c.YearMax)
		fmt.Fprintf(out, "top_n: %d\n", c.TopN)
		fmt.Fprintf(out, "age_bin_width: %d\n", c.AgeBinWidth)
		fmt.Fprintf(out, "rating_bin_width: %d\n", c.RatingBinWidth)
		fmt.Fprintf(out, "watch: %t\n", c.Watch)
		if c.AnimationURL != "" {
			fmt.Fprintf(out, "animation_url: %s\n", c.AnimationURL)
		}
		fmt.Fprintf(out, "animation_timeout_sec: %d\n", c.AnimationTimeoutSec)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `set edits the saved config file. Values from BOOKDASH_* environment
variables and the --dataset flag apply to the running command only and are
never written.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := cfgpkg.LoadFile(cfgFile)
		if err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
		intVal := func(min int) (int, error) {
			i, err := strconv.Atoi(val)
			if err != nil || i < min {
				return 0, fmt.Errorf("invalid int for %s: %v", key, val)
			}
			return i, nil
		}
		switch key {
		case "dataset_path":
			c.DatasetPath = val
		case "encoding":
			if _, err := dataset.LookupEncoding(val); err != nil {
				return err
			}
			c.Encoding = val
		case "missing_token":
			c.MissingToken = val
		case "max_age":
			c.MaxAge, err = intVal(1)
		case "listen_addr":
			c.ListenAddr = val
		case "year_min":
			c.YearMin, err = intVal(0)
		case "year_max":
			c.YearMax, err = intVal(0)
		case "top_n":
			c.TopN, err = intVal(1)
		case "age_bin_width":
			c.AgeBinWidth, err = intVal(1)
		case "rating_bin_width":
			c.RatingBinWidth, err = intVal(1)
		case "watch":
			c.Watch, err = strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for watch: %w", err)
			}
		case "animation_url":
			c.AnimationURL = val
		case "animation_timeout_sec":
			c.AnimationTimeoutSec, err = intVal(1)
		case "log_level":
			switch val {
			case "debug", "info", "warn", "error":
				c.LogLevel = val
			default:
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err != nil {
			return err
		}
		if c.YearMin > c.YearMax {
			return fmt.Errorf("invalid year bounds: year_min %d > year_max %d", c.YearMin, c.YearMax)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
