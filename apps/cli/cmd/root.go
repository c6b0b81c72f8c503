package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "restcall",
	Short: "Compose and execute HTTP requests from the terminal",
	Long: `restcall builds HTTP requests from flags, executes them with explicit
timeout and TLS policy, and captures the response: status, headers, body
and timing. Responses can be extracted by JSON path, validated against a
JSON Schema, benchmarked, and logged to a local history database.`,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitUsageError)
	}
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(repeatCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
