package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultAnimationURL is the decorative header animation shown on the dashboard.
const DefaultAnimationURL = "https://assets4.lottiefiles.com/temp/lf20_aKAfIn.json"

// Global configuration structure.
type Global struct {
	// Dataset
	DatasetPath  string `mapstructure:"dataset_path" yaml:"dataset_path"`
	Encoding     string `mapstructure:"encoding" yaml:"encoding"`
	MissingToken string `mapstructure:"missing_token" yaml:"missing_token"`
	MaxAge       int    `mapstructure:"max_age" yaml:"max_age"`

	// Dashboard
	ListenAddr     string `mapstructure:"listen_addr" yaml:"listen_addr"`
	YearMin        int    `mapstructure:"year_min" yaml:"year_min"`
	YearMax        int    `mapstructure:"year_max" yaml:"year_max"`
	TopN           int    `mapstructure:"top_n" yaml:"top_n"`
	AgeBinWidth    int    `mapstructure:"age_bin_width" yaml:"age_bin_width"`
	RatingBinWidth int    `mapstructure:"rating_bin_width" yaml:"rating_bin_width"`
	Watch          bool   `mapstructure:"watch" yaml:"watch"`

	// Decorative animation fetch
	AnimationURL        string `mapstructure:"animation_url" yaml:"animation_url"`
	AnimationTimeoutSec int    `mapstructure:"animation_timeout_sec" yaml:"animation_timeout_sec"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.bookdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		DatasetPath:         "bookrec.csv",
		Encoding:            "latin1",
		MissingToken:        "N/A",
		MaxAge:              80,
		ListenAddr:          ":8501",
		YearMin:             1950,
		YearMax:             2020,
		TopN:                10,
		AgeBinWidth:         5,
		RatingBinWidth:      1,
		AnimationURL:        DefaultAnimationURL,
		AnimationTimeoutSec: 5,
		LogLevel:            "info",
	}
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	return load(cfgFile, true)
}

// LoadFile loads the config file over the defaults, ignoring BOOKDASH_*
// variables. It is the base for edits that get saved back.
func LoadFile(cfgFile string) (*Global, error) {
	return load(cfgFile, false)
}

func load(cfgFile string, env bool) (*Global, error) {
	v := viper.New()
	if env {
		v.SetEnvPrefix("BOOKDASH")
		v.AutomaticEnv()
	}

	d := Defaults()
	v.SetDefault("dataset_path", d.DatasetPath)
	v.SetDefault("encoding", d.Encoding)
	v.SetDefault("missing_token", d.MissingToken)
	v.SetDefault("max_age", d.MaxAge)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("year_min", d.YearMin)
	v.SetDefault("year_max", d.YearMax)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("age_bin_width", d.AgeBinWidth)
	v.SetDefault("rating_bin_width", d.RatingBinWidth)
	v.SetDefault("watch", d.Watch)
	v.SetDefault("animation_url", d.AnimationURL)
	v.SetDefault("animation_timeout_sec", d.AnimationTimeoutSec)
	v.SetDefault("log_level", d.LogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.YearMin > c.YearMax {
		return nil, fmt.Errorf("invalid year bounds: year_min %d > year_max %d", c.YearMin, c.YearMax)
	}
	return &c, nil
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".bookdash"), nil
}
