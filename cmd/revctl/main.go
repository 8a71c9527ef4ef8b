// revctl is a small CLI for a running reviewradar daemon: read the current
// status, trigger an on-demand refresh, or send a raw bridge command.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewradar/reviewradar/pkg/client"
)

var (
	addr    string
	apiKey  string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "revctl",
	Short: "Control a running reviewradar daemon",
	Long: `revctl talks to the reviewradar HTTP API.

Examples:
  revctl status
  revctl refresh
  revctl rpc changes
  revctl rpc refresh --addr http://office:8085`,
}

func newClient() (*client.Client, error) {
	opts := []client.Option{client.Timeout(timeout)}
	if apiKey != "" {
		opts = append(opts, client.APIKey(apiKey))
	}
	return client.NewClient(addr, opts...)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest status snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		snap, err := c.Status(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(snap)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Trigger an on-demand refresh pass",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		desc, err := c.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(desc)
	},
}

var rpcCmd = &cobra.Command{
	Use:   "rpc <command> [args...]",
	Short: "Send a raw bridge command",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		extra := make([]any, 0, len(args)-1)
		for _, a := range args[1:] {
			extra = append(extra, a)
		}
		resp, err := c.Invoke(cmd.Context(), args[0], extra...)
		if err != nil {
			return err
		}
		if resp.Error != nil {
			if err := printJSON(resp.Error); err != nil {
				return err
			}
			os.Exit(1)
		}
		return printJSON(resp.Value)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "http://localhost:8085", "daemon base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key, if the daemon requires one")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "request timeout")

	rootCmd.AddCommand(statusCmd, refreshCmd, rpcCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
