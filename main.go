//go:build !gui

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/metcalfc/glossr/internal/tui"
)

func main() {
	o := parseFlags("glossr", "Glossr - Terminal Reader with Instant Translations")

	ctx := context.Background()
	s, done, err := runCommands(ctx, "glossr", o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if done {
		return
	}
	defer s.Close()

	doc, segmented, err := s.openDocument(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		s.Close()
		os.Exit(1)
	}
	s.rememberDocument(ctx, doc)

	m := tui.New(tui.Deps{
		Config:   s.cfg,
		Log:      s.log,
		Provider: s.provider,
		Vocab:    s.vocab,
		Store:    s.store,
		Identity: s.identity,
		State:    s.state,
	}, doc, segmented, tui.Options{Fresh: o.fresh, Email: o.user})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		s.Close()
		os.Exit(1)
	}
}
