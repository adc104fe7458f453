package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
)

// Run starts the TUI and blocks until the user quits
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		if opts.History != nil {
			opts.History.Close()
		}
		return err
	}
	defer m.Cleanup()

	log.Info().
		Str("endpoint", m.pg.Endpoint()).
		Bool("history", m.sessionID != "").
		Msg("playground started")

	// Pass pointer since Update uses pointer receiver
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}
