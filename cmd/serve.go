package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/bookdash/internal/animation"
	"github.com/KaramelBytes/bookdash/internal/dataset"
	"github.com/KaramelBytes/bookdash/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	srvAddr        string
	srvWatch       bool
	srvNoAnimation bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		addr := c.ListenAddr
		if cmd.Flags().Changed("addr") {
			addr = srvAddr
		}
		watch := c.Watch
		if cmd.Flags().Changed("watch") {
			watch = srvWatch
		}

		src, err := dataset.NewSource(c.DatasetPath, codecFor(c), logger)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		if b, ok := src.Current().Bounds(); ok {
			logger.Info("dataset ready",
				zap.String("path", src.Path()),
				zap.Int("records", len(src.Current().Records)),
				zap.Stringer("years", b))
		}

		opt := server.Options{
			Slider:   sliderBounds(c),
			Analysis: analysisOptions(c),
			Logger:   logger,
		}
		if !srvNoAnimation && c.AnimationURL != "" {
			opt.Animation = animation.New(c.AnimationURL, time.Duration(c.AnimationTimeoutSec)*time.Second, logger)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if watch {
			go func() {
				if err := src.Watch(ctx, 0); err != nil {
					logger.Error("dataset watcher stopped", zap.String("path", src.Path()), zap.Error(err))
				}
			}()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard on http://%s (Ctrl+C to stop)\n", displayAddr(addr))
		return server.New(src, opt).Run(ctx, addr)
	},
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", ":8501", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&srvWatch, "watch", false, "reload the dataset when the file changes")
	serveCmd.Flags().BoolVar(&srvNoAnimation, "no-animation", false, "skip fetching the decorative header animation")
}
