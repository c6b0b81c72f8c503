package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/restcall-dev/restcall/packages/config"
	"github.com/restcall-dev/restcall/packages/extract"
	"github.com/restcall-dev/restcall/packages/history"
	"github.com/restcall-dev/restcall/packages/output"
	"github.com/restcall-dev/restcall/packages/rest"
	"github.com/restcall-dev/restcall/packages/schema"
)

var sendCmd = &cobra.Command{
	Use:   "send <url>",
	Short: "Build and execute one HTTP request",
	Long: `Build a request from flags and execute it once.

Examples:
  restcall send https://api.example.com/users
  restcall send https://api.example.com -X POST --body '{"name":"a"}'
  restcall send https://api.example.com/users/{id} --segment id=42
  restcall send https://upload.example.com -X POST --file report=./report.csv
  restcall send https://api.example.com --extract id=user.id --extract name=user.name
  restcall send https://api.example.com --schema user.schema.json --fail
  restcall send https://api.example.com -X POST --body-file req.json --watch`,
	Args: cobra.ExactArgs(1),
	RunE: sendCommand,
}

const watchDebounceDelay = 300 * time.Millisecond

var (
	sendFlags      requestFlags
	sendConfigFlag string
	sendVerbose    bool
	sendNoColor    bool
	sendInsecure   bool
	sendNoRedirect bool
	sendProxy      string
	sendExtracts   []string
	sendSchemaFile string
	sendHistory    bool
	sendWatch      bool
	sendFail       bool
)

func init() {
	sendCmd.Flags().StringVarP(&sendFlags.method, "method", "X", "GET", "HTTP method: GET, POST, PUT, DELETE, HEAD, OPTIONS")
	sendCmd.Flags().StringVar(&sendFlags.resource, "resource", "", "Path fragment appended to the URL, may contain {segment} placeholders")
	sendCmd.Flags().StringArrayVarP(&sendFlags.headers, "header", "H", nil, "Request header as key:value (repeatable)")
	sendCmd.Flags().StringArrayVarP(&sendFlags.queries, "query", "q", nil, "Query parameter as key=value (repeatable)")
	sendCmd.Flags().StringArrayVar(&sendFlags.segments, "segment", nil, "URL segment as name=value (repeatable)")
	sendCmd.Flags().StringArrayVar(&sendFlags.cookies, "cookie", nil, "Cookie as name=value (repeatable)")
	sendCmd.Flags().StringArrayVar(&sendFlags.forms, "form", nil, "Form field as name=value (repeatable)")
	sendCmd.Flags().StringVar(&sendFlags.body, "body", "", "Raw request body (JSON unless --xml)")
	sendCmd.Flags().StringVar(&sendFlags.bodyFile, "body-file", "", "Read the request body from a file")
	sendCmd.Flags().BoolVar(&sendFlags.xml, "xml", false, "Mark the body as XML instead of JSON")
	sendCmd.Flags().StringArrayVar(&sendFlags.files, "file", nil, "File attachment as name=path; forces multipart (repeatable)")
	sendCmd.Flags().StringVar(&sendFlags.timeout, "timeout", getEnvString("RESTCALL_TIMEOUT", ""), "Round-trip timeout, e.g. 2s or 1500 (ms) (env: RESTCALL_TIMEOUT)")
	sendCmd.Flags().StringVar(&sendFlags.rwTimeout, "rw-timeout", "", "Response header timeout, e.g. 1s")
	sendCmd.Flags().BoolVar(&sendFlags.tls12, "tls12", false, "Pin the connection to TLS 1.2")

	sendCmd.Flags().StringVar(&sendConfigFlag, "config", getEnvString("RESTCALL_CONFIG", ""), "Path to config file (env: RESTCALL_CONFIG)")
	sendCmd.Flags().BoolVarP(&sendVerbose, "verbose", "v", false, "Print response headers and full body")
	sendCmd.Flags().BoolVar(&sendNoColor, "no-color", getEnvBool("RESTCALL_NO_COLOR", false), "Disable colored output (env: RESTCALL_NO_COLOR)")
	sendCmd.Flags().BoolVarP(&sendInsecure, "insecure", "k", false, "Disable SSL certificate validation")
	sendCmd.Flags().BoolVar(&sendNoRedirect, "no-redirect", false, "Do not follow redirects")
	sendCmd.Flags().StringVar(&sendProxy, "proxy", getEnvString("RESTCALL_PROXY", ""), "Proxy URL (env: RESTCALL_PROXY)")
	sendCmd.Flags().StringArrayVar(&sendExtracts, "extract", nil, "Extract a body value as name=gjson.path (repeatable)")
	sendCmd.Flags().StringVar(&sendSchemaFile, "schema", "", "Validate the response body against a JSON Schema file")
	sendCmd.Flags().BoolVar(&sendHistory, "history", false, "Record the call in the history database")
	sendCmd.Flags().BoolVarP(&sendWatch, "watch", "w", false, "Re-send when --body-file changes")
	sendCmd.Flags().BoolVar(&sendFail, "fail", false, "Exit non-zero on 4xx/5xx responses")
}

func sendCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(sendConfigFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	formatter := output.NewConsoleFormatter(
		output.WithVerbose(sendVerbose),
		output.WithNoColor(sendNoColor || cfg.GetNoColor()),
	)

	executor := buildExecutor(cfg, sendInsecure, sendNoRedirect, sendProxy)

	if sendWatch {
		if sendFlags.bodyFile == "" {
			fmt.Fprintln(os.Stderr, "--watch requires --body-file")
			os.Exit(ExitUsageError)
		}
		return watchAndSend(args[0], cfg, executor, formatter)
	}

	os.Exit(sendOnce(args[0], cfg, executor, formatter))
	return nil
}

// sendOnce builds, executes and reports one request, returning the exit
// code.
func sendOnce(url string, cfg *config.Config, executor *rest.Executor, formatter *output.ConsoleFormatter) int {
	req, err := buildRequest(url, &sendFlags, cfg)
	if err != nil {
		formatter.FormatError(err)
		return ExitBuildError
	}
	req.IncrementAttempts()

	resp, err := executor.Execute(req)
	if err != nil {
		formatter.FormatError(err)
		return ExitNetworkError
	}

	formatter.FormatResponse(resp)

	code := ExitSuccess
	if sendFail && (resp.IsClientError() || resp.IsServerError()) {
		code = ExitHTTPFailure
	}

	if len(sendExtracts) > 0 {
		paths := make(map[string]string, len(sendExtracts))
		for _, e := range sendExtracts {
			name, path, err := splitPair(e, "=")
			if err != nil {
				formatter.FormatError(err)
				return ExitUsageError
			}
			paths[name] = path
		}
		formatter.FormatExtracted(extract.All(resp, paths))
	}

	if sendSchemaFile != "" {
		schemaJSON, err := os.ReadFile(sendSchemaFile)
		if err != nil {
			formatter.FormatError(fmt.Errorf("cannot read schema: %w", err))
			return ExitConfigError
		}
		result, err := schema.Validate(resp, schemaJSON)
		if err != nil {
			formatter.FormatError(err)
			return ExitConfigError
		}
		if !result.Valid {
			formatter.FormatSchemaIssues(result.Issues)
			code = ExitHTTPFailure
		}
	}

	if sendHistory || cfg.HistoryPath != "" {
		if err := recordHistory(cfg, req, resp); err != nil {
			formatter.FormatError(err)
		}
	}

	return code
}

func recordHistory(cfg *config.Config, req *rest.Request, resp *rest.Response) error {
	path := cfg.HistoryPath
	if path == "" {
		path = defaultHistoryPath()
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(req, resp)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".restcall-history.db"
	}
	return home + "/.restcall-history.db"
}

// watchAndSend re-executes the request whenever the body file is written,
// until interrupted.
func watchAndSend(url string, cfg *config.Config, executor *rest.Executor, formatter *output.ConsoleFormatter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot start watcher: %v\n", err)
		os.Exit(ExitConfigError)
	}
	defer watcher.Close()

	if err := watcher.Add(sendFlags.bodyFile); err != nil {
		fmt.Fprintf(os.Stderr, "cannot watch %s: %v\n", sendFlags.bodyFile, err)
		os.Exit(ExitConfigError)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	sendOnce(url, cfg, executor, formatter)
	fmt.Fprintf(os.Stderr, "\nwatching %s for changes, Ctrl-C to stop\n", sendFlags.bodyFile)

	var debounce *time.Timer
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounceDelay, func() {
				sendOnce(url, cfg, executor, formatter)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-sigCh:
			return nil
		}
	}
}
