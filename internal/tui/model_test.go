package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Adda-Baaj/vidsum/internal/domain"
	"github.com/Adda-Baaj/vidsum/internal/orchestrator"
	"github.com/Adda-Baaj/vidsum/internal/render"
	"github.com/Adda-Baaj/vidsum/internal/summarizer"
)

type stubSummarizer struct {
	err     error
	release chan struct{}
}

func (s *stubSummarizer) Summarize(_ context.Context, url string) (summarizer.Summary, error) {
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return summarizer.Summary{}, s.err
	}
	return summarizer.Summary{Title: "Title of " + url, Summary: "Short summary", Thumbnail: "http://img"}, nil
}

func newTestModel(t *testing.T, s *stubSummarizer) (Model, *orchestrator.Orchestrator) {
	t.Helper()
	orch, err := orchestrator.New(s)
	if err != nil {
		t.Fatalf("orchestrator.New: %v", err)
	}
	events, unsubscribe := orch.Subscribe(16)
	t.Cleanup(unsubscribe)
	return New(context.Background(), orch, events), orch
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

// pump feeds n pending orchestrator events into m.
func pump(t *testing.T, m Model, n int) Model {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case evt := <-m.events:
			m, _ = update(t, m, eventMsg(evt))
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i+1)
		}
	}
	return m
}

func typeURL(t *testing.T, m Model, url string) Model {
	t.Helper()
	m.input.SetValue(url)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	return m
}

func TestEnterSubmitsAndRendersResult(t *testing.T) {
	m, _ := newTestModel(t, &stubSummarizer{})
	m = typeURL(t, m, "https://youtu.be/abc")

	m = pump(t, m, 1)
	if !strings.Contains(m.View(), render.LoadingText) {
		t.Fatalf("expected loading indicator:\n%s", m.View())
	}

	m = pump(t, m, 2)
	view := m.View()
	if strings.Contains(view, render.LoadingText) {
		t.Fatalf("loading indicator still shown:\n%s", view)
	}
	for _, want := range []string{"Title of https://youtu.be/abc", "Short summary", render.LinkText + ": https://youtu.be/abc"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	if m.input.Value() != "" {
		t.Fatalf("input not cleared: %q", m.input.Value())
	}
}

func TestFailureShowsToastAndClearsInput(t *testing.T) {
	m, _ := newTestModel(t, &stubSummarizer{err: errors.New("boom")})
	m = typeURL(t, m, "https://youtu.be/bad")
	m = pump(t, m, 4)

	view := m.View()
	if !strings.Contains(view, "error: "+domain.NoCaptionsMessage) {
		t.Fatalf("view missing toast:\n%s", view)
	}
	if strings.Contains(view, "boom") {
		t.Fatalf("diagnostic cause leaked into view:\n%s", view)
	}
	if m.input.Value() != "" {
		t.Fatalf("input not cleared: %q", m.input.Value())
	}

	m = typeURL(t, m, "https://youtu.be/again")
	m = pump(t, m, 1)
	if strings.Contains(m.View(), domain.NoCaptionsMessage) {
		t.Fatalf("toast should be dismissed by a new submission:\n%s", m.View())
	}
}

func TestEnterWhilePendingIsRejected(t *testing.T) {
	s := &stubSummarizer{release: make(chan struct{})}
	m, orch := newTestModel(t, s)

	m = typeURL(t, m, "https://youtu.be/first")
	m = pump(t, m, 1)
	m = typeURL(t, m, "https://youtu.be/second")

	if !strings.Contains(m.View(), pendingNotice) {
		t.Fatalf("expected pending notice:\n%s", m.View())
	}
	if got := orch.State().URL; got != "https://youtu.be/first" {
		t.Fatalf("pending url = %q", got)
	}

	close(s.release)
	m = pump(t, m, 2)
	if strings.Contains(m.View(), pendingNotice) {
		t.Fatalf("notice should clear once the input is cleared:\n%s", m.View())
	}
	if !strings.Contains(m.View(), "Title of https://youtu.be/first") {
		t.Fatalf("expected first result:\n%s", m.View())
	}
}

func TestBlankEnterDoesNothing(t *testing.T) {
	m, orch := newTestModel(t, &stubSummarizer{})
	_ = typeURL(t, m, "   ")
	if orch.State().Phase != domain.PhaseIdle {
		t.Fatalf("phase = %s", orch.State().Phase)
	}
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t, &stubSummarizer{})
	for _, key := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := update(t, m, key)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", key)
		}
	}
}

func TestClosedEventsQuit(t *testing.T) {
	m, _ := newTestModel(t, &stubSummarizer{})
	_, cmd := update(t, m, eventsClosedMsg{})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
