package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Adda-Baaj/vidsum/internal/domain"
	"github.com/Adda-Baaj/vidsum/internal/logger"
	"github.com/Adda-Baaj/vidsum/internal/summarizer"
	"github.com/Adda-Baaj/vidsum/pkg/publishers"
)

// ErrSubmissionPending is returned by Submit while another submission is in flight.
var ErrSubmissionPending = errors.New("a submission is already pending")

// Orchestrator turns submitted URLs into single-flight summarization calls and
// owns the resulting SubmissionState. All writes happen under mu, either in
// Submit or in the settlement of the submission it started.
type Orchestrator struct {
	client Summarizer
	sink   OutcomeSink
	log    logger.Logger

	mu        sync.Mutex
	state     domain.SubmissionState
	subs      map[int]*subscriber
	nextSubID int
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(log logger.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithOutcomeSink publishes every settled submission to sink.
func WithOutcomeSink(sink OutcomeSink) Option {
	return func(o *Orchestrator) { o.sink = sink }
}

// New builds an orchestrator in the Idle state.
func New(client Summarizer, opts ...Option) (*Orchestrator, error) {
	if client == nil {
		return nil, fmt.Errorf("summarizer client must not be nil")
	}
	o := &Orchestrator{
		client: client,
		log:    logger.NopLogger{},
		state:  domain.Idle(),
		subs:   make(map[int]*subscriber),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Submission is a handle on one accepted submit call.
type Submission struct {
	URL     string
	done    chan struct{}
	outcome domain.SubmissionState
}

// Done is closed once the submission has settled, its events were delivered
// and its outcome was handed to the sink.
func (s *Submission) Done() <-chan struct{} { return s.done }

// Outcome returns the settled state (Resolved or Failed). Only valid after Done.
func (s *Submission) Outcome() domain.SubmissionState { return clone(s.outcome) }

// Wait blocks until the submission settles or ctx ends. Giving up on the wait
// does not cancel the request.
func (s *Submission) Wait(ctx context.Context) (domain.SubmissionState, error) {
	select {
	case <-s.done:
		return s.Outcome(), nil
	case <-ctx.Done():
		return domain.SubmissionState{}, ctx.Err()
	}
}

// Submit starts summarizing rawURL. While a submission is pending the call is
// rejected with ErrSubmissionPending and nothing changes. Otherwise the state
// is Pending when Submit returns, and exactly one request is issued. The
// request ignores ctx cancellation: once dispatched it always runs to completion.
func (o *Orchestrator) Submit(ctx context.Context, rawURL string) (*Submission, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	o.mu.Lock()
	if o.state.Phase == domain.PhasePending {
		pendingURL := o.state.URL
		o.mu.Unlock()
		o.log.WarnObj("submission rejected; request already in flight", "submission_rejected", map[string]any{
			"url":         rawURL,
			"pending_url": pendingURL,
		})
		return nil, ErrSubmissionPending
	}
	o.state = domain.Pending(rawURL)
	o.broadcastLocked(Event{Kind: EventViewModelChanged, ViewModel: Project(o.state)})
	o.mu.Unlock()

	o.log.DebugObj("submission pending", "submission", map[string]any{"url": rawURL})

	sub := &Submission{URL: rawURL, done: make(chan struct{})}
	go o.settle(context.WithoutCancel(ctx), sub)
	return sub, nil
}

// SubmitAndWait submits rawURL and waits for its outcome.
func (o *Orchestrator) SubmitAndWait(ctx context.Context, rawURL string) (domain.SubmissionState, error) {
	sub, err := o.Submit(ctx, rawURL)
	if err != nil {
		return o.State(), err
	}
	return sub.Wait(ctx)
}

// State returns a snapshot of the current submission state.
func (o *Orchestrator) State() domain.SubmissionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return clone(o.state)
}

// ViewModel projects the current state.
func (o *Orchestrator) ViewModel() domain.ViewModel {
	return Project(o.State())
}

// settle performs the remote call for sub and applies its outcome.
func (o *Orchestrator) settle(ctx context.Context, sub *Submission) {
	defer close(sub.done)

	start := time.Now()
	summary, err := o.call(ctx, sub.URL)

	var evt publishers.Event
	o.mu.Lock()
	if err != nil {
		n := domain.ErrorNotification{Message: domain.NoCaptionsMessage, Cause: err.Error()}
		o.state = domain.Failed(n)
		o.broadcastLocked(Event{Kind: EventViewModelChanged, ViewModel: Project(o.state)})
		o.broadcastLocked(Event{Kind: EventErrorNotified, Message: n.Message})
		evt = publishers.NewFailedEvent(sub.URL, n)
	} else {
		res := domain.SummaryResult{
			Title:        summary.Title,
			Summary:      summary.Summary,
			ThumbnailURL: summary.Thumbnail,
			SourceURL:    sub.URL,
		}
		o.state = domain.Resolved(res)
		o.broadcastLocked(Event{Kind: EventViewModelChanged, ViewModel: Project(o.state)})
		evt = publishers.NewResolvedEvent(res)
	}
	sub.outcome = clone(o.state)
	o.broadcastLocked(Event{Kind: EventInputCleared})
	o.mu.Unlock()

	meta := map[string]any{
		"url":        sub.URL,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		meta["kind"] = summarizer.Kind(err)
		meta["cause"] = err.Error()
		o.log.WarnObj("submission failed", "submission_failure", meta)
	} else {
		o.log.InfoObj("submission resolved", "submission_result", meta)
	}

	o.publish(ctx, evt)
}

// call runs the remote request. A panicking client settles as a failure so
// the state never stays Pending.
func (o *Orchestrator) call(ctx context.Context, url string) (summary summarizer.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("summarizer panic: %v", r)
		}
	}()
	return o.client.Summarize(ctx, url)
}

func (o *Orchestrator) publish(ctx context.Context, evt publishers.Event) {
	if o.sink == nil {
		return
	}
	delivered, err := o.sink.Publish(ctx, evt)
	if err != nil {
		o.log.ErrorObj("outcome publish failed", "publish_error", map[string]any{
			"url":       evt.SourceURL,
			"status":    evt.Status,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	o.log.DebugObj("outcome published", "publish_result", map[string]any{
		"url":       evt.SourceURL,
		"delivered": delivered,
	})
}
