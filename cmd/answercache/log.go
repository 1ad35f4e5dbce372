package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pario-ai/answercache/pkg/config"
	"github.com/pario-ai/answercache/pkg/models"
	"github.com/pario-ai/answercache/pkg/querylog"
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Query and manage the query journal",
	}

	cmd.AddCommand(
		newLogSearchCmd(),
		newLogStatsCmd(),
		newLogClearCmd(),
	)
	return cmd
}

func newLogSearchCmd() *cobra.Command {
	var (
		configPath string
		key        string
		requestID  string
		since      string
		cached     string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, cleanup, err := openJournal(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := models.QueryLogOpts{
				CacheKey:  key,
				RequestID: requestID,
				Limit:     limit,
			}
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid --since date (use YYYY-MM-DD): %w", err)
				}
				opts.Since = t
			}
			switch cached {
			case "":
			case "hit":
				v := true
				opts.Cached = &v
			case "miss":
				v := false
				opts.Cached = &v
			default:
				return fmt.Errorf("invalid --result %q (use hit or miss)", cached)
			}

			entries, err := l.Query(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Print(formatJournalEntries(entries))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to answercache config file")
	cmd.Flags().StringVar(&key, "key", "", "filter by normalized cache key")
	cmd.Flags().StringVar(&requestID, "request-id", "", "filter by request ID")
	cmd.Flags().StringVar(&since, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&cached, "result", "", "filter by outcome (hit or miss)")
	cmd.Flags().IntVar(&limit, "limit", 50, "max entries to return")
	return cmd
}

func newLogStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show journal hits and misses per day",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, cleanup, err := openJournal(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := l.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Print(formatJournalStats(stats))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to answercache config file")
	return cmd
}

func newLogClearCmd() *cobra.Command {
	var (
		configPath  string
		expiredOnly bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, cleanup, err := openJournal(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			var deleted int64
			if expiredOnly {
				deleted, err = l.Cleanup(cmd.Context())
			} else {
				deleted, err = l.Clear(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d journal entries.\n", deleted)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to answercache config file")
	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "only delete entries past the retention period")
	return cmd
}

func openJournal(configPath string) (*querylog.Logger, func(), error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, nil, err
	}
	l, err := querylog.New(cfg.QueryLog)
	if err != nil {
		return nil, nil, fmt.Errorf("open query log db: %w", err)
	}
	return l, func() { _ = l.Close() }, nil
}

func formatJournalEntries(entries []models.QueryLogEntry) string {
	if len(entries) == 0 {
		return "No journal entries found.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-38s %-30s %-6s %8s %-20s\n", "REQUEST ID", "KEY", "RESULT", "LATENCY", "TIME")
	b.WriteString(strings.Repeat("-", 106) + "\n")
	for _, e := range entries {
		key := e.CacheKey
		if len(key) > 30 {
			key = key[:27] + "..."
		}
		result := "miss"
		if e.Cached {
			result = "hit"
		}
		fmt.Fprintf(&b, "%-38s %-30s %-6s %6dms %-20s\n",
			e.RequestID, key, result, e.LatencyMs, e.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

func formatJournalStats(stats []models.QueryLogStat) string {
	if len(stats) == 0 {
		return "No journal stats found.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %8s %8s %8s\n", "DAY", "HITS", "MISSES", "HIT%")
	b.WriteString(strings.Repeat("-", 39) + "\n")
	for _, s := range stats {
		pct := 0.0
		if total := s.Hits + s.Misses; total > 0 {
			pct = float64(s.Hits) / float64(total) * 100
		}
		fmt.Fprintf(&b, "%-12s %8d %8d %7.1f%%\n", s.Day, s.Hits, s.Misses, pct)
	}
	return b.String()
}
