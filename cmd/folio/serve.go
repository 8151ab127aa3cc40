package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lemmi/folio"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the page, its articles and the theme files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ln, err := net.Listen(cfg.Network, cfg.Bind)
		if err != nil {
			return errors.Wrapf(err, "listen %s %s", cfg.Network, cfg.Bind)
		}
		defer ln.Close()
		if strings.HasPrefix(cfg.Network, "unix") {
			if err := os.Chmod(cfg.Bind, 0666); err != nil {
				return err
			}
		}

		site := folio.NewSite(cfg, openBackend, logger)
		srv := &http.Server{
			Handler:           site.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()

		logger.Info("starting",
			zap.String("addr", cfg.Bind),
			zap.String("network", cfg.Network),
			zap.String("source", cfg.Source),
			zap.Bool("git", cfg.Git),
		)
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("bind", "", "address or path to bind to")
	serveCmd.Flags().String("net", "", `"tcp", "tcp4", "tcp6", "unix" or "unixpacket"`)
	rootCmd.AddCommand(serveCmd)
}
