package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "answercache",
		Short:         "Answer cache with LRU eviction, TTL expiration and cost analytics",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newQueryCmd(),
		newAnalyticsCmd(),
		newMCPCmd(),
		newCacheCmd(),
		newLogCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
