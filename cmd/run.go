package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/manuelminca/sharp-timer-speckit/internal/adapters/notification"
	"github.com/manuelminca/sharp-timer-speckit/internal/adapters/tui"
	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
	"github.com/manuelminca/sharp-timer-speckit/internal/services"
	"github.com/spf13/cobra"
)

// runCmd starts the interactive timer. The bare root command aliases it.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the interactive timer",
	RunE:  runTimer,
}

func runTimer(cmd *cobra.Command, args []string) error {
	notifier := notification.New(domain.DefaultSettings())
	shell := tui.NewShell(notifier)

	core := services.NewCore(docStore, shell, ports.SystemClock{}, historyLog, services.CoreConfig{
		AutosaveInterval:  time.Duration(appConfig.Persistence.AutosaveInterval),
		SleepGapThreshold: time.Duration(appConfig.Persistence.SleepGapThreshold),
		MaxStateAge:       time.Duration(appConfig.Recovery.MaxStateAge),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Recovery and the tick loop start only once the UI accepts
	// messages, so nothing owed across the restart is dropped.
	go func() {
		select {
		case <-shell.Ready():
		case <-ctx.Done():
			return
		}
		core.Startup()
		notifier.Apply(core.Settings())
		core.Run(ctx)
	}()

	// A termination signal checkpoints the session before the UI
	// comes down; the session resumes on the next launch.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			core.SuspendNow()
			shell.Stop()
		case <-ctx.Done():
		}
	}()

	return shell.Run(core)
}
