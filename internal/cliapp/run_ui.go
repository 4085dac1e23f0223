package cliapp

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LordOfPolls/BlackDwarf/internal/app"
	"github.com/LordOfPolls/BlackDwarf/internal/config"
	"github.com/LordOfPolls/BlackDwarf/internal/util"
	"github.com/LordOfPolls/BlackDwarf/internal/watcher"
)

func runUI(ctx context.Context, a *app.App, cfg *config.Config, limiter *util.Limiter, initial *app.Summary) error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen())

	w, err := watcher.NewWatcher(cfg.Watch.Debounce, limiter, cfg.Exclude.Dirs, cfg.Exclude.Files, func(paths []string) {
		batch := scopedBatch(a, paths)
		if len(batch) == 0 {
			return
		}
		p.Send(updateMsg{summary: a.RunFiles(ctx, batch)})
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch([]string{watchPath(a)}); err != nil {
		return err
	}

	go p.Send(updateMsg{summary: initial})
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err = p.Run()
	return err
}
