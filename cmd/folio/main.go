package main

import (
	"fmt"
	"os"

	"github.com/lemmi/folio"
	"github.com/lemmi/folio/backend"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string

	cfg    folio.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Render a portfolio page from content.json and markdown articles",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = folio.LoadConfig(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger, err = folio.NewLogger(cfg.Debug)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func openBackend() (backend.Backend, error) {
	return backend.Open(cfg.Source, cfg.Git, cfg.Branch)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./"+folio.DefaultConfigFile+")")
	pf.Bool("debug", false, "set debug output")
	pf.String("source", "", "path to the theme directory or git repository")
	pf.String("theme", "", "theme name shown in diagnostics")
	pf.Bool("git", false, "source is a git repo")
	pf.String("branch", "", "git branch to serve")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
