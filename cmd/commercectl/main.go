package main

import (
	"context"
	"fmt"
	"os"

	"course-commerce/internal/app"
	"course-commerce/internal/config"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "commercectl",
		Short:   "Operator tooling for the course commerce backend",
		Version: Version,
	}

	rootCmd.AddCommand(sweepStaleCmd())
	rootCmd.AddCommand(checkStatusCmd())
	rootCmd.AddCommand(setStatusCmd())
	rootCmd.AddCommand(resetPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp loads config, builds the app and closes it after fn returns.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
