package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/restcall-dev/restcall/packages/config"
	"github.com/restcall-dev/restcall/packages/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent calls from the history database",
	RunE:  historyCommand,
}

var (
	historyConfigFlag string
	historyDBFlag     string
	historyLimit      int
)

func init() {
	historyCmd.Flags().StringVar(&historyConfigFlag, "config", getEnvString("RESTCALL_CONFIG", ""), "Path to config file (env: RESTCALL_CONFIG)")
	historyCmd.Flags().StringVar(&historyDBFlag, "db", "", "Path to the history database")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(historyConfigFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	path := historyDBFlag
	if path == "" {
		path = cfg.HistoryPath
	}
	if path == "" {
		path = defaultHistoryPath()
	}

	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open history: %v\n", err)
		os.Exit(ExitConfigError)
	}
	defer store.Close()

	entries, err := store.Recent(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read history: %v\n", err)
		os.Exit(ExitConfigError)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no recorded calls")
		return nil
	}

	bold := color.New(color.Bold).SprintFunc()
	for _, e := range entries {
		statusColor := color.New(color.FgGreen).SprintFunc()
		if e.Status >= 400 {
			statusColor = color.New(color.FgRed).SprintFunc()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %s %s  %dms  attempts=%d\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			statusColor(fmt.Sprintf("%d", e.Status)),
			bold(e.Method),
			e.URL,
			e.ElapsedMs,
			e.Attempts,
		)
	}
	return nil
}
