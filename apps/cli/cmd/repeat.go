package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/restcall-dev/restcall/packages/config"
	"github.com/restcall-dev/restcall/packages/output"
	"github.com/restcall-dev/restcall/packages/repeat"
)

var repeatCmd = &cobra.Command{
	Use:   "repeat <url>",
	Short: "Execute a request repeatedly: retry loop or fixed-count benchmark",
	Long: `Execute the same request multiple times.

With --count the request runs exactly that many times and latency
percentiles are reported. Without it, the request is retried on transport
failures and 5xx responses up to --attempts times.

Examples:
  restcall repeat https://api.example.com/health --attempts 5
  restcall repeat https://api.example.com/users --count 100 --rate 10`,
	Args: cobra.ExactArgs(1),
	RunE: repeatCommand,
}

var (
	repeatFlags      requestFlags
	repeatConfigFlag string
	repeatNoColor    bool
	repeatInsecure   bool
	repeatCount      int
	repeatAttempts   int
	repeatRate       float64
)

func init() {
	repeatCmd.Flags().StringVarP(&repeatFlags.method, "method", "X", "GET", "HTTP method")
	repeatCmd.Flags().StringArrayVarP(&repeatFlags.headers, "header", "H", nil, "Request header as key:value (repeatable)")
	repeatCmd.Flags().StringArrayVarP(&repeatFlags.queries, "query", "q", nil, "Query parameter as key=value (repeatable)")
	repeatCmd.Flags().StringVar(&repeatFlags.body, "body", "", "Raw request body (JSON unless --xml)")
	repeatCmd.Flags().BoolVar(&repeatFlags.xml, "xml", false, "Mark the body as XML instead of JSON")
	repeatCmd.Flags().StringVar(&repeatFlags.timeout, "timeout", "", "Round-trip timeout per execution")
	repeatCmd.Flags().StringVar(&repeatConfigFlag, "config", getEnvString("RESTCALL_CONFIG", ""), "Path to config file (env: RESTCALL_CONFIG)")
	repeatCmd.Flags().BoolVar(&repeatNoColor, "no-color", getEnvBool("RESTCALL_NO_COLOR", false), "Disable colored output (env: RESTCALL_NO_COLOR)")
	repeatCmd.Flags().BoolVarP(&repeatInsecure, "insecure", "k", false, "Disable SSL certificate validation")
	repeatCmd.Flags().IntVarP(&repeatCount, "count", "c", 0, "Benchmark mode: execute exactly this many times")
	repeatCmd.Flags().IntVar(&repeatAttempts, "attempts", 0, "Retry mode: attempt ceiling (default 3)")
	repeatCmd.Flags().Float64VarP(&repeatRate, "rate", "r", 0, "Pace executions at this many requests per second")
}

func repeatCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(repeatConfigFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	formatter := output.NewConsoleFormatter(
		output.WithNoColor(repeatNoColor || cfg.GetNoColor()),
	)

	req, err := buildRequest(args[0], &repeatFlags, cfg)
	if err != nil {
		formatter.FormatError(err)
		os.Exit(ExitBuildError)
	}

	opts := []repeat.Option{
		repeat.WithExecutor(buildExecutor(cfg, repeatInsecure, false, "")),
	}
	if repeatAttempts > 0 {
		opts = append(opts, repeat.WithAttempts(repeatAttempts))
	}
	if repeatRate > 0 {
		opts = append(opts, repeat.WithRate(repeatRate))
	}
	runner := repeat.NewRunner(opts...)

	var report *repeat.Report
	if repeatCount > 0 {
		report, err = runner.Benchmark(context.Background(), req, repeatCount)
	} else {
		report, err = runner.Run(context.Background(), req)
	}
	if report != nil {
		formatter.FormatReport(report)
	}
	if err != nil {
		os.Exit(ExitNetworkError)
	}
	return nil
}
