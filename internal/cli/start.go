package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rcliao/learnpath/internal/lifecycle"
	"github.com/rcliao/learnpath/internal/notes"
	"github.com/rcliao/learnpath/internal/search"
	"github.com/rcliao/learnpath/internal/tui"
)

func init() {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the interactive session",
		Run:   runStart,
	}

	RootCmd.AddCommand(cmd)
}

func runStart(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	e := setup(ctx)
	defer e.Close()

	svc := newService(e.cfg, e.log)
	ctrl := lifecycle.New(e.store, svc, lifecycle.WithLogger(e.log))
	app := tui.NewApp(ctrl, notes.NewEditor(e.store),
		tui.WithContext(ctx),
		tui.WithLogger(e.log),
		tui.WithPreviewer(search.NewPreviewer(0)),
	)

	e.log.Info("session started", "backend", e.cfg.Storage.Backend, "provider", e.cfg.LLM.Provider)
	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		exitErr("run session", err)
	}
}
