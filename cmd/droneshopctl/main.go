package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/droneshop/internal/config"
	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/store"
	"github.com/Skotchmaster/droneshop/internal/store/storeopen"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "droneshopctl",
		Short:         "Maintenance commands for the drone shop store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(envFile); err != nil {
				slog.Debug("no env file loaded", "file", envFile, "error", err)
			}
		},
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")

	cmd.AddCommand(seedCmd(openConfiguredStore))
	return cmd
}

type storeOpener func(ctx context.Context) (store.Store, error)

func openConfiguredStore(ctx context.Context) (store.Store, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel).With("service", "droneshopctl")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return storeopen.Open(ctx, cfg, logger)
}
