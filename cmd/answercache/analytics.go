package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pario-ai/answercache/pkg/client"
	"github.com/pario-ai/answercache/pkg/models"
)

func newAnalyticsCmd() *cobra.Command {
	var (
		serverURL string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show hit/miss and cost-savings analytics from a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := client.New(serverURL)
			if err != nil {
				return err
			}
			rep, err := cl.Analytics(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printAnalytics(os.Stdout, rep)
			return nil
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", defaultServer, "answercache server URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON report")
	return cmd
}

func printAnalytics(out io.Writer, r models.AnalyticsReport) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "REQUESTS\t%d\n", r.TotalRequests)
	fmt.Fprintf(w, "HITS\t%d\n", r.CacheHits)
	fmt.Fprintf(w, "MISSES\t%d\n", r.CacheMisses)
	fmt.Fprintf(w, "HIT RATE\t%.2f\n", r.HitRate)
	fmt.Fprintf(w, "MISS RATE\t%.2f\n", r.MissRate)
	fmt.Fprintf(w, "ENTRIES\t%d\n", r.CacheSize)
	fmt.Fprintf(w, "SAVINGS\t$%.2f\n", r.CostSavings)
	if r.CostSavingsPercent != nil {
		fmt.Fprintf(w, "SAVINGS %%\t%.2f\n", *r.CostSavingsPercent)
	}
	fmt.Fprintf(w, "STRATEGIES\t%s\n", strings.Join(r.Strategies, ", "))
	_ = w.Flush()
}
