package mcp

import (
	"fmt"
	"strings"

	"github.com/pario-ai/answercache/pkg/models"
)

func formatAnalytics(r models.AnalyticsReport) string {
	var b strings.Builder
	b.WriteString("Answer Cache Analytics\n")
	fmt.Fprintf(&b, "  Requests:     %d\n", r.TotalRequests)
	fmt.Fprintf(&b, "  Hits:         %d\n", r.CacheHits)
	fmt.Fprintf(&b, "  Misses:       %d\n", r.CacheMisses)
	fmt.Fprintf(&b, "  Hit Rate:     %.2f\n", r.HitRate)
	fmt.Fprintf(&b, "  Miss Rate:    %.2f\n", r.MissRate)
	fmt.Fprintf(&b, "  Entries:      %d\n", r.CacheSize)
	fmt.Fprintf(&b, "  Cost Savings: $%.2f", r.CostSavings)
	if r.CostSavingsPercent != nil {
		fmt.Fprintf(&b, " (%.2f%%)", *r.CostSavingsPercent)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Strategies:   %s\n", strings.Join(r.Strategies, ", "))
	return b.String()
}

func formatQueryResult(r models.QueryResult) string {
	state := "miss"
	if r.Cached {
		state = "hit"
	}
	return fmt.Sprintf("%s\n\n[cache %s, key %q, latency %dms]\n", r.Answer, state, r.CacheKey, r.Latency)
}
