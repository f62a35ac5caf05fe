package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/apod/internal/cli"
)

var (
	configPath  string
	verbose     bool
	logFormat   string
	metricsFile string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apod",
		Short: "Astronomy Picture of the Day client",
		Long: `apod fetches the Astronomy Picture of the Day with a local cache:
- get: load a day's definition and picture
- prefetch: fill the cache for a range of days
- cache: inspect, clean, export and import the cache`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	cmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")

	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.LogFormat = &logFormat
	cli.MetricsFile = &metricsFile

	cmd.AddCommand(
		cli.NewGetCmd(),
		cli.NewPrefetchCmd(),
		cli.NewUnsupportedCmd(),
		cli.NewCacheCmd(),
		cli.NewConfigCmd(),
		cli.NewHooksCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
