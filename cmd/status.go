package cmd

import (
	"fmt"
	"time"

	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
	"github.com/manuelminca/sharp-timer-speckit/internal/services"
	"github.com/spf13/cobra"
)

// statusCmd prints the persisted session without opening the UI.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted timer session",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	reconciler := services.NewRecoveryReconciler(docStore, ports.SystemClock{}, time.Duration(appConfig.Recovery.MaxStateAge))
	outcome := reconciler.Recover()

	if outcome.State == nil {
		fmt.Println("No active timer session.")
		fmt.Printf("Current mode: %s\n", outcome.Settings.CurrentMode.Label())
		return nil
	}

	state := outcome.State
	display := state.Display()

	status := "stopped"
	switch {
	case state.IsRunning:
		status = "running"
	case state.IsPaused:
		status = "paused"
	case state.IsCompleted():
		status = "completed"
	}

	fmt.Println("⏱  Sharp Timer Session")
	fmt.Printf("   Mode:      %s\n", state.Mode.Label())
	fmt.Printf("   Remaining: %s\n", display.Clock())
	fmt.Printf("   Status:    %s\n", status)
	fmt.Printf("   Progress:  %.0f%%\n", display.Progress*100)
	if state.SurvivedSleep {
		fmt.Println("   Note:      session crossed a system sleep")
	}
	if !state.LastPersistedAt.IsZero() {
		fmt.Printf("   Saved:     %s\n", state.LastPersistedAt.Local().Format("2006-01-02 15:04:05"))
	}
	if outcome.FromBackup {
		fmt.Println("   Note:      recovered from a backup copy")
	}
	if outcome.CompletedOnLoad {
		fmt.Println("   Note:      countdown finished while the timer was not running")
	}
	return nil
}
