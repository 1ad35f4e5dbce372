package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pario-ai/answercache/pkg/client"
)

const defaultServer = "http://localhost:8000"

func newQueryCmd() *cobra.Command {
	var (
		serverURL string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Send a query to a running answercache server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := client.New(serverURL)
			if err != nil {
				return err
			}
			res, err := cl.Answer(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			state := "miss"
			if res.Cached {
				state = "hit"
			}
			fmt.Println(res.Answer)
			fmt.Printf("cache: %s  key: %q  latency: %dms\n", state, res.CacheKey, res.Latency)
			return nil
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", defaultServer, "answercache server URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON result")
	return cmd
}
