package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pario-ai/answercache/pkg/client"
	"github.com/pario-ai/answercache/pkg/models"
)

func newCacheCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage a running server's answer cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := client.New(serverURL)
			if err != nil {
				return err
			}
			rep, err := cl.Analytics(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Entries: %d\nHits:    %d\nMisses:  %d\n", rep.CacheSize, rep.CacheHits, rep.CacheMisses)
			return nil
		},
	}

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove expired entries and evict to capacity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := client.New(serverURL)
			if err != nil {
				return err
			}
			res, err := cl.Prune(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Print(formatPruneResult(res))
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry; counters are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := client.New(serverURL)
			if err != nil {
				return err
			}
			if err := cl.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("All cache entries cleared.")
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&serverURL, "server", "s", defaultServer, "answercache server URL")
	cmd.AddCommand(statsCmd, pruneCmd, clearCmd)
	return cmd
}

func formatPruneResult(res models.PruneResult) string {
	if res.Expired == 0 && res.Evicted == 0 {
		return "Nothing to prune.\n"
	}
	return fmt.Sprintf("Expired: %d\nEvicted: %d\n", res.Expired, res.Evicted)
}
