// Command reviewsense scores reviews against a labeled corpus.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/reviewsense"
	"github.com/tsawler/reviewsense/internal/app"
	"github.com/tsawler/reviewsense/internal/config"
	"github.com/tsawler/reviewsense/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg         *config.Config
	logger      *zap.Logger
	engine      *reviewsense.Engine
	closeSource func() error
)

var rootCmd = &cobra.Command{
	Use:   "reviewsense",
	Short: "Lexical sentiment scoring against a labeled review corpus",
	Long: `reviewsense labels a free-text review by comparing its words with a
corpus of reviews labeled 0 (negative) to 4 (positive).

Each informative word of the corpus is worth the mean label of the corpus
lines it appears in; a review is worth the mean of its words.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		logCfg := cfg.Logging
		if verbose {
			logCfg = logging.Verbose(logCfg)
		}
		logger, err = logging.New(logCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		engine, closeSource, err = app.NewEngine(cfg, logger)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeSource != nil {
			if err := closeSource(); err != nil {
				logger.Warn("error closing corpus source", zap.Error(err))
			}
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "reviewsense.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		scoreCmd,
		appendCmd,
		topCmd,
		serveCmd,
		watchCmd,
		eventCmd,
		importCmd,
		interactiveCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
