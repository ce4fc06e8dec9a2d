package main

import (
	"context"
	"daily-rep/internal/app"
	"daily-rep/internal/config"
	"daily-rep/internal/utils"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const SERVICENAME = "repctl"

var (
	verbose bool
	timeout time.Duration
	logger  = utils.NewLogger(SERVICENAME)
)

var rootCmd = &cobra.Command{
	Use:   "repctl",
	Short: "Operate the daily rep service",
	Long: `repctl runs the daily rep batches by hand, seeds the rep catalog and manages the
schedules that trigger the batch functions.

Configuration is read from the environment and a local .env file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")

	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(autogenCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(schedulesCmd)
	rootCmd.AddCommand(cronCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the stores.
func bootstrap(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, logger, cfg)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
