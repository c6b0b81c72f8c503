// Package output renders responses and repeat reports for the terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"

	"github.com/restcall-dev/restcall/packages/repeat"
	"github.com/restcall-dev/restcall/packages/rest"
)

const maxBodyPreview = 2048

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) { f.writer = w }
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) { f.verbose = v }
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) { f.noColor = nc }
}

// FormatResponse prints the status line, timing, headers (verbose) and a
// body preview.
func (f *ConsoleFormatter) FormatResponse(resp *rest.Response) {
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", f.statusColor(resp)(resp.Status), cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))

	if f.verbose {
		for _, h := range resp.Headers {
			fmt.Fprintf(f.writer, "%s: %s\n", bold(h.Name), h.Value)
		}
		if resp.ResponseURI != nil {
			fmt.Fprintf(f.writer, "%s: %s\n", bold("Final-Url"), resp.ResponseURI)
		}
	}

	if len(resp.Content) > 0 {
		body := resp.Content
		if !f.verbose && len(body) > maxBodyPreview {
			body = body[:maxBodyPreview] + "..."
		}
		fmt.Fprintf(f.writer, "\n%s\n", body)
	}
}

// FormatError prints a classified failure.
func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("error:"), err)
}

// FormatReport prints a repeat/benchmark summary.
func (f *ConsoleFormatter) FormatReport(report *repeat.Report) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Executions"))
	fmt.Fprintf(f.writer, "  total: %d  %s: %d  %s: %d\n",
		report.Executions, green("ok"), report.Successes, red("failed"), report.Errors)
	fmt.Fprintf(f.writer, "\n%s\n", bold("Latency"))
	fmt.Fprintf(f.writer, "  p50: %s  p95: %s  p99: %s  max: %s\n",
		report.P50, report.P95, report.P99, report.Max)

	if report.LastResponse != nil {
		fmt.Fprintf(f.writer, "\nlast status: %s\n", report.LastResponse.Status)
	}
	if report.LastErr != nil {
		fmt.Fprintf(f.writer, "last error: %s\n", red(report.LastErr.Error()))
	}
}

// FormatExtracted prints name/value pairs captured from a response, sorted
// by name for stable output.
func (f *ConsoleFormatter) FormatExtracted(values map[string]any) {
	bold := color.New(color.Bold).SprintFunc()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(f.writer, "%s = %v\n", bold(name), values[name])
	}
}

// FormatSchemaIssues prints JSON Schema validation failures.
func (f *ConsoleFormatter) FormatSchemaIssues(issues []string) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s\n", red("schema validation failed:"))
	for _, issue := range issues {
		fmt.Fprintf(f.writer, "  %s %s\n", red("→"), issue)
	}
}

func (f *ConsoleFormatter) statusColor(resp *rest.Response) func(...any) string {
	switch {
	case resp.IsSuccess():
		return color.New(color.FgGreen).SprintFunc()
	case resp.IsClientError() || resp.IsServerError():
		return color.New(color.FgRed).SprintFunc()
	default:
		return color.New(color.FgYellow).SprintFunc()
	}
}
