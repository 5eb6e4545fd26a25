package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every API command.
type rootOptions struct {
	baseURL string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "postingrules-cli",
		Short:         "Posting rules CLI tool",
		Long:          `A command line interface for resolving events and managing mapping configurations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the posting rules API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		resolveCmd(opts),
		previewCmd(opts),
		mappingsCmd(opts),
		migrateCmd(),
	)

	return rootCmd
}
