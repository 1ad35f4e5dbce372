package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pario-ai/answercache/pkg/client"
	"github.com/pario-ai/answercache/pkg/config"
	"github.com/pario-ai/answercache/pkg/logging"
	"github.com/pario-ai/answercache/pkg/mcp"
)

func newMCPCmd() *cobra.Command {
	var (
		serverURL  string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve answercache tools over MCP on stdio",
		Long: "Serve answercache tools over MCP on stdio.\n\n" +
			"With --server the tools proxy to a running answercache server. " +
			"Without it an in-process cache is built from --config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			// stdout carries the protocol; logs go to stderr.
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			var src mcp.Source
			if serverURL != "" {
				cl, err := client.New(serverURL)
				if err != nil {
					return err
				}
				src = cl
			} else {
				src = mcp.ServiceSource{Service: newService(cfg, nil, logger)}
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return mcp.New(src, version, logger.Named("mcp")).Run(ctx, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "answercache server URL (omit for in-process cache)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to answercache config file")
	return cmd
}
