package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Adda-Baaj/vidsum/internal/orchestrator"
	"github.com/Adda-Baaj/vidsum/internal/render"
)

const (
	promptText  = "Paste a YouTube URL here: "
	pendingText = "A summary is already being generated; please wait."
)

// RunConsole reads one URL per line from in and submits each non-empty line
// verbatim. View-model changes are rendered to out and error toasts to errOut.
// On end of input it waits for the last accepted submission to settle and
// renders every event still queued.
func (s *Summarizer) RunConsole(ctx context.Context, in io.Reader, out, errOut io.Writer) error {
	if s == nil || s.orch == nil {
		return fmt.Errorf("summarizer is not initialized")
	}

	events, unsubscribe := s.orch.Subscribe(s.cfg.EventBuffer)
	defer unsubscribe()

	lines := readLines(ctx, in)

	// last is the most recently accepted submission; settled is armed with its
	// Done channel once input ends.
	var last *orchestrator.Submission
	var settled <-chan struct{}

	if _, err := io.WriteString(out, promptText); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			s.log.InfoObj("console exiting", "reason", ctx.Err().Error())
			return nil

		case line, ok := <-lines:
			if !ok {
				lines = nil
				if last == nil {
					return s.drainEvents(events, out, errOut)
				}
				settled = last.Done()
				continue
			}
			if line == "" {
				continue
			}
			sub, err := s.orch.Submit(ctx, line)
			if err != nil {
				if !errors.Is(err, orchestrator.ErrSubmissionPending) {
					return fmt.Errorf("submit: %w", err)
				}
				if _, err := fmt.Fprintln(errOut, pendingText); err != nil {
					return err
				}
				continue
			}
			last = sub

		case <-settled:
			// Settlement broadcasts before Done closes, so every event of the
			// last submission is already buffered.
			return s.drainEvents(events, out, errOut)

		case evt, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.handleEvent(evt, out, errOut); err != nil {
				return err
			}
		}
	}
}

func (s *Summarizer) handleEvent(evt orchestrator.Event, out, errOut io.Writer) error {
	switch evt.Kind {
	case orchestrator.EventViewModelChanged:
		if _, err := io.WriteString(out, "\n"); err != nil {
			return err
		}
		return render.Text(out, evt.ViewModel)
	case orchestrator.EventErrorNotified:
		return render.Toast(errOut, evt.Message)
	case orchestrator.EventInputCleared:
		_, err := io.WriteString(out, "\n"+promptText)
		return err
	}
	return nil
}

// drainEvents handles events already buffered. Settlement broadcasts under the
// orchestrator lock, so once the state is settled all of its events are queued.
func (s *Summarizer) drainEvents(events <-chan orchestrator.Event, out, errOut io.Writer) error {
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.handleEvent(evt, out, errOut); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// readLines streams lines from r until EOF or ctx ends. A trailing carriage
// return is dropped; nothing else is altered.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ch <- strings.TrimSuffix(scanner.Text(), "\r"):
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
