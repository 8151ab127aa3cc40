package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/lemmi/folio"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Write the page, articles and theme files as a static site",
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		if watch && cfg.Git {
			return errors.New("--watch needs a directory source")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		build := func() error {
			fs, err := openBackend()
			if err != nil {
				return err
			}
			return folio.Build(ctx, cfg, fs, cfg.OutDir, logger)
		}

		if err := build(); err != nil {
			if !watch {
				return err
			}
			logger.Error("initial build failed", zap.Error(err))
		}
		if !watch {
			return nil
		}
		logger.Info("watching for changes", zap.String("source", cfg.Source))
		return folio.Watch(ctx, cfg.Source, build, logger)
	},
}

func init() {
	buildCmd.Flags().String("out", "", "output directory")
	buildCmd.Flags().Bool("watch", false, "rebuild when the theme changes")
	rootCmd.AddCommand(buildCmd)
}
