package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Adda-Baaj/vidsum/internal/tui"
)

// RunTUI runs the full-screen terminal interface until the user quits or ctx
// ends.
func (s *Summarizer) RunTUI(ctx context.Context, in io.Reader, out io.Writer) error {
	if s == nil || s.orch == nil {
		return fmt.Errorf("summarizer is not initialized")
	}

	events, unsubscribe := s.orch.Subscribe(s.cfg.EventBuffer)
	defer unsubscribe()

	p := tea.NewProgram(
		tui.New(ctx, s.orch, events),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			s.log.InfoObj("tui exiting", "reason", ctx.Err().Error())
			return nil
		}
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
