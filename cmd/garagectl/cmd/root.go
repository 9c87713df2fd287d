package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	endpoint string
	timeout  time.Duration
	rootCmd  = &cobra.Command{
		Use:           "garagectl",
		Short:         "garagectl reads and records the garage door status",
		Long:          `garagectl talks to the garage status HTTP endpoint: "get" prints the last recorded status, "set" records a new one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", envOr("GARAGECTL_ENDPOINT", "http://127.0.0.1:8080/garage/status"), "status endpoint URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
