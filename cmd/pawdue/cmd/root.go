package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pawdue/pawdue/internal/agent"
	"github.com/pawdue/pawdue/internal/config"
	"github.com/pawdue/pawdue/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// seed populates an empty store with a demo dog.
	seed bool

	// rootCmd represents the base command running the reminder agent.
	rootCmd = &cobra.Command{
		Use:   "pawdue",
		Short: "Per-dog reminder alarm agent.",
		Long: `Runs the pawdue reminder agent in the terminal.

Loads the dog collection from the local store, arms a countdown for every
enabled reminder and raises an alarm prompt when one matures. Alarm
responses (dismiss, log, snooze) are written back to the store before they
apply locally. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return agent.Run(ctx, &agent.Options{
				ConfigPath: cfgPath,
				Seed:       seed,
			})
		},
	}
)

// Execute runs the pawdue CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().BoolVar(&seed, "seed", false, "populate an empty store with a demo dog")
}
