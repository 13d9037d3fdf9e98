package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Adda-Baaj/vidsum/internal/domain"
	"github.com/Adda-Baaj/vidsum/internal/orchestrator"
	"github.com/Adda-Baaj/vidsum/internal/render"
)

const (
	inputPlaceholder = "https://www.youtube.com/watch?v=..."
	pendingNotice    = "A summary is already being generated; please wait."
	helpText         = "enter: summarize • esc: quit"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	toastStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	cardStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("10"))
)

// Submitter is the part of the orchestrator the model drives.
type Submitter interface {
	Submit(ctx context.Context, rawURL string) (*orchestrator.Submission, error)
	ViewModel() domain.ViewModel
}

// eventMsg wraps an orchestrator event for the bubbletea loop.
type eventMsg orchestrator.Event

type eventsClosedMsg struct{}

// Model is the bubbletea model of the summarizer screen. It owns the URL input
// and mirrors the orchestrator's view model; it never changes submission state
// itself.
type Model struct {
	ctx    context.Context
	orch   Submitter
	events <-chan orchestrator.Event

	input  textinput.Model
	vm     domain.ViewModel
	toast  string
	notice string
	width  int
}

// New builds a model listening on events, which must come from a
// subscription on orch.
func New(ctx context.Context, orch Submitter, events <-chan orchestrator.Event) Model {
	input := textinput.New()
	input.Placeholder = inputPlaceholder
	input.Prompt = "URL: "
	input.Width = 60
	input.Focus()

	return Model{
		ctx:    ctx,
		orch:   orch,
		events: events,
		input:  input,
		vm:     orch.ViewModel(),
	}
}

func waitForEvent(events <-chan orchestrator.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(evt)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvent(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - len(m.input.Prompt) - 2; w > 10 {
			m.input.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit(), nil
		}

	case eventMsg:
		m = m.apply(orchestrator.Event(msg))
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the current input to the orchestrator verbatim. A blank input
// is ignored.
func (m Model) submit() Model {
	url := m.input.Value()
	if strings.TrimSpace(url) == "" {
		return m
	}
	if _, err := m.orch.Submit(m.ctx, url); err != nil {
		if errors.Is(err, orchestrator.ErrSubmissionPending) {
			m.notice = pendingNotice
		} else {
			m.notice = err.Error()
		}
		return m
	}
	m.notice = ""
	return m
}

func (m Model) apply(evt orchestrator.Event) Model {
	switch evt.Kind {
	case orchestrator.EventViewModelChanged:
		m.vm = evt.ViewModel
		if m.vm.IsLoading {
			m.toast = ""
		}
	case orchestrator.EventErrorNotified:
		m.toast = evt.Message
	case orchestrator.EventInputCleared:
		m.input.Reset()
		m.notice = ""
	}
	return m
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(render.PageTitle))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.vm.IsLoading {
		b.WriteString(loadingStyle.Render(render.LoadingText))
		b.WriteString("\n\n")
	}
	if m.notice != "" {
		b.WriteString(dimStyle.Render(m.notice))
		b.WriteString("\n\n")
	}
	if m.toast != "" {
		b.WriteString(toastStyle.Render("error: " + m.toast))
		b.WriteString("\n\n")
	}
	if r := m.vm.Result; r != nil {
		b.WriteString(m.card(*r))
		b.WriteString("\n\n")
	}

	b.WriteString(dimStyle.Render(helpText))
	b.WriteString("\n")
	return b.String()
}

func (m Model) card(r domain.SummaryResult) string {
	style := cardStyle
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	content := lipgloss.NewStyle().Bold(true).Render(r.Title) + "\n" +
		dimStyle.Render(r.ThumbnailURL) + "\n\n" +
		r.Summary + "\n\n" +
		render.LinkText + ": " + r.SourceURL
	return style.Render(content)
}
