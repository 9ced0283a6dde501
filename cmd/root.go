package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/bookdash/internal/analysis"
	cfgpkg "github.com/KaramelBytes/bookdash/internal/config"
	"github.com/KaramelBytes/bookdash/internal/dataset"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	cfgFile     string
	debug       bool
	flagDataset string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Structured logger, built before every command runs
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "bookdash",
	Short: "Book rating dataset cleaner and dashboard",
	Long: `bookdash cleans a book-ratings CSV (users, books and ratings merged into one
table) and serves an interactive dashboard of its distributions, top lists and
correlations filtered by year of publication.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.bookdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDataset, "dataset", "", "dataset CSV path (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to the built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c
	if rootCmd.PersistentFlags().Changed("dataset") && flagDataset != "" {
		cfg.DatasetPath = flagDataset
	}
}

// newLogger builds a production zap logger on stderr; --debug or
// log_level=debug lowers the level.
func newLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = true
	level := "info"
	if cfg != nil && cfg.LogLevel != "" {
		level = cfg.LogLevel
	}
	if debug {
		level = "debug"
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

func codecFor(c *cfgpkg.Global) dataset.Codec {
	return dataset.Codec{Encoding: c.Encoding, MissingToken: c.MissingToken}
}

func analysisOptions(c *cfgpkg.Global) analysis.Options {
	opt := analysis.DefaultOptions()
	if c.TopN > 0 {
		opt.TopN = c.TopN
	}
	if c.AgeBinWidth > 0 {
		opt.AgeBinWidth = float64(c.AgeBinWidth)
	}
	if c.RatingBinWidth > 0 {
		opt.RatingBinWidth = float64(c.RatingBinWidth)
	}
	return opt
}

func sliderBounds(c *cfgpkg.Global) dataset.YearRange {
	return dataset.YearRange{Lo: c.YearMin, Hi: c.YearMax}
}
