package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"borrowck/internal/driver"
	"borrowck/internal/ui"
)

type checkOutcome struct {
	results []*driver.CheckResult
	err     error
}

func runCheckWithUI(ctx context.Context, title string, files []string, opts driver.Options) ([]*driver.CheckResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = driver.ChannelSink{Ch: events}
		res, err := driver.CheckFiles(ctx, files, optsCopy)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
