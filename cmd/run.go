// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/telekom/horizon/internal/logger"
	"github.com/telekom/horizon/pkg/config"
	"github.com/telekom/horizon/pkg/monitor"
)

// flagBinding maps a command line flag to its viper key.
type flagBinding struct {
	flag string
	key  string
}

var runBindings = []flagBinding{
	{flag: "name", key: "name"},
	{flag: "loader-type", key: "loader.type"},
	{flag: "loader-interval", key: "loader.interval"},
	{flag: "loader-file-path", key: "loader.file.path"},
	{flag: "loader-http-url", key: "loader.http.url"},
	{flag: "loader-http-token", key: "loader.http.token"},
	{flag: "loader-http-timeout", key: "loader.http.timeout"},
	{flag: "loader-http-retry-count", key: "loader.http.retry.count"},
	{flag: "loader-http-retry-delay", key: "loader.http.retry.delay"},
	{flag: "api-address", key: "api.address"},
	{flag: "history-path", key: "history.path"},
	{flag: "history-retention", key: "history.retention"},
}

// NewCmdRun creates the command that runs the monitor
func NewCmdRun() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run horizon as a monitor",
		Long: "Runs horizon as a long-lived monitor. The targets are loaded from the runtime\n" +
			"configuration and searched periodically. Results are exposed via the API.",
		RunE: run,
	}

	cmd.Flags().String("name", "", "DNS name of the instance")
	cmd.Flags().String("loader-type", config.LoaderFile, "runtime config loader: file or http")
	cmd.Flags().Duration("loader-interval", 5*time.Minute, "interval between runtime config reloads, 0 loads once")
	cmd.Flags().String("loader-file-path", "", "path of the runtime config file")
	cmd.Flags().String("loader-http-url", "", "url of the runtime config")
	cmd.Flags().String("loader-http-token", "", "bearer token sent to the runtime config url")
	cmd.Flags().Duration("loader-http-timeout", 30*time.Second, "timeout of a runtime config request")
	cmd.Flags().Int("loader-http-retry-count", 3, "retries of a failed runtime config request")
	cmd.Flags().Duration("loader-http-retry-delay", time.Second, "initial delay between runtime config retries")
	cmd.Flags().String("api-address", ":8080", "listening address of the api")
	cmd.Flags().String("history-path", "", "sqlite file of the search history, empty disables the history")
	cmd.Flags().Duration("history-retention", 0, "age after which history entries are pruned, 0 keeps all")

	for _, b := range runBindings {
		cobra.CheckErr(viper.BindPFlag(b.key, cmd.Flags().Lookup(b.flag)))
	}

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	log := logger.NewLogger()
	ctx = logger.IntoContext(ctx, log)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	mon, err := monitor.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	log.InfoContext(ctx, "Running horizon monitor", "name", cfg.Name)
	err = mon.Run(ctx)
	if errors.Is(err, monitor.ErrFinalShutdown) && ctx.Err() != nil {
		return nil
	}
	return err
}

// loadConfig unmarshals and validates the startup configuration held by viper.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
