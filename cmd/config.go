package cmd

import (
	"fmt"
	"strconv"

	"github.com/manuelminca/sharp-timer-speckit/internal/config"
	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
	"github.com/manuelminca/sharp-timer-speckit/internal/services"
	"github.com/spf13/cobra"
)

// configCmd shows and updates timer settings.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change timer settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one timer setting. Keys:

  work             work session length in minutes (1-60)
  rest-eyes        eye-rest length in minutes (1-60)
  long-rest        long rest length in minutes (1-60)
  mode             default mode: work, rest_eyes, long_rest
  notifications    desktop notifications: true/false
  sound            completion sound: true/false
  auto-transition  start next mode paused after completion: true/false`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

func loadSettings() domain.Settings {
	doc, err := docStore.Load()
	if err != nil {
		return domain.DefaultSettings()
	}
	return doc.SettingsOrDefault()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	settings := loadSettings()

	fmt.Println("Timer settings:")
	fmt.Printf("   work             %d min\n", settings.WorkMinutes)
	fmt.Printf("   rest-eyes        %d min\n", settings.RestEyesMinutes)
	fmt.Printf("   long-rest        %d min\n", settings.LongRestMinutes)
	fmt.Printf("   mode             %s\n", settings.CurrentMode)
	fmt.Printf("   notifications    %t\n", settings.NotificationsEnabled)
	fmt.Printf("   sound            %t\n", settings.SoundEnabled)
	fmt.Printf("   auto-transition  %t\n", settings.AutoTransition)

	if path, err := config.GetConfigPath(); err == nil {
		fmt.Printf("\nInfrastructure settings: %s\n", path)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	settings := loadSettings()

	switch key {
	case "work":
		minutes, err := parseMinutes(value)
		if err != nil {
			return err
		}
		settings.WorkMinutes = minutes
	case "rest-eyes":
		minutes, err := parseMinutes(value)
		if err != nil {
			return err
		}
		settings.RestEyesMinutes = minutes
	case "long-rest":
		minutes, err := parseMinutes(value)
		if err != nil {
			return err
		}
		settings.LongRestMinutes = minutes
	case "mode":
		mode, err := domain.ParseMode(value)
		if err != nil {
			return err
		}
		settings.CurrentMode = mode
	case "notifications":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		settings.NotificationsEnabled = enabled
	case "sound":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		settings.SoundEnabled = enabled
	case "auto-transition":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		settings.AutoTransition = enabled
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	coordinator := services.NewPersistenceCoordinator(docStore, ports.SystemClock{})
	if err := coordinator.UpdateSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Printf("Saved %s = %s\n", key, value)
	fmt.Println("An already running session keeps the duration it started with.")
	return nil
}

// parseMinutes accepts a duration in minutes clamped to 1-60.
func parseMinutes(value string) (int, error) {
	minutes, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid minutes %q", value)
	}
	switch {
	case minutes < 1:
		fmt.Println("Clamped to 1 minute minimum.")
		return 1, nil
	case minutes > 60:
		fmt.Println("Clamped to 60 minute maximum.")
		return 60, nil
	}
	return minutes, nil
}
