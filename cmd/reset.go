package cmd

import (
	"fmt"

	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
	"github.com/manuelminca/sharp-timer-speckit/internal/services"
	"github.com/spf13/cobra"
)

var resetSettings bool

// resetCmd discards the persisted session.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the persisted timer session",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetSettings, "settings", false, "Also restore default settings")
}

func runReset(cmd *cobra.Command, args []string) error {
	coordinator := services.NewPersistenceCoordinator(docStore, ports.SystemClock{})
	if err := coordinator.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Println("Timer session cleared.")

	if resetSettings {
		if err := coordinator.UpdateSettings(domain.DefaultSettings()); err != nil {
			return fmt.Errorf("failed to reset settings: %w", err)
		}
		fmt.Println("Settings restored to defaults.")
	}
	return nil
}
