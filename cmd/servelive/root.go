package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "servelive [path]",
	Short: "Serve a directory over HTTP with automatic browser reload",
	Long: "servelive serves a directory's contents over HTTP and notifies " +
		"connected browsers via server-sent events when files change, so " +
		"pages reload themselves during local development.",
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.Flags().String("config", "servelive.yaml", "path to config file")
	rootCmd.Flags().String("address", "", "address to listen for HTTP requests on (host:port)")
	rootCmd.Flags().String("event-path", "", "URL path for the server-sent event stream")
	rootCmd.Flags().Duration("debounce", 0, "quiet period for coalescing file changes")
	rootCmd.Flags().Bool("no-live-reload", false, "disable auto-reload script injection")
	rootCmd.Flags().Bool("no-preview", false, "disable markdown preview rendering")
	rootCmd.Flags().Bool("verbose", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
