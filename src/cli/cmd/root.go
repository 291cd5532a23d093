package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/streamcast/docker-streamcast/src/config"
	"github.com/streamcast/docker-streamcast/src/logger"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "docker-streamcast",
	Short: "Streamcast image release automation",
	Long: `docker-streamcast regenerates the per-version build definitions and the
stackbrew manifest for the official Streamcast container images.

Progress and diagnostics go to stderr; stdout carries only the manifest.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger.SetLevel(zapcore.DebugLevel)
		}
		// Skip config loading for commands that don't need it.
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		warnings, err := config.Validate(cfg)
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		for _, warning := range warnings {
			logger.Warnf(cmd.Context(), "config: %s", warning)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .docker-streamcast.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context, so an interrupted run still unwinds through its cleanup defers.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
