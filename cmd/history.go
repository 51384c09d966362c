package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd lists recently finished sessions.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently finished sessions",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Maximum number of sessions to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLog == nil {
		return fmt.Errorf("history is not available")
	}

	records, err := historyLog.Recent(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No finished sessions yet.")
		return nil
	}

	fmt.Printf("%-20s  %-15s  %-8s  %s\n", "COMPLETED", "MODE", "MINUTES", "AUTO")
	for _, rec := range records {
		auto := ""
		if rec.AutoTransition {
			auto = "yes"
		}
		fmt.Printf("%-20s  %-15s  %-8d  %s\n",
			rec.CompletedAt.Local().Format("2006-01-02 15:04"),
			rec.Mode.Label(),
			rec.DurationSeconds/60,
			auto)
	}
	return nil
}
