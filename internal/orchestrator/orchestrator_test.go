package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Adda-Baaj/vidsum/internal/domain"
	"github.com/Adda-Baaj/vidsum/internal/summarizer"
	"github.com/Adda-Baaj/vidsum/pkg/httpclient"
	"github.com/Adda-Baaj/vidsum/pkg/publishers"
)

// fakeSummarizer records calls and optionally blocks until released.
type fakeSummarizer struct {
	mu      sync.Mutex
	calls   []string
	ctxErrs []error
	gate    chan struct{}
	summary summarizer.Summary
	err     error
	panics  bool
}

func newGatedSummarizer() *fakeSummarizer {
	return &fakeSummarizer{
		gate:    make(chan struct{}),
		summary: summarizer.Summary{Title: "T", Summary: "S", Thumbnail: "http://img"},
	}
}

func (f *fakeSummarizer) Summarize(ctx context.Context, url string) (summarizer.Summary, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	f.mu.Unlock()

	if f.panics {
		panic("boom")
	}
	if f.err != nil {
		return summarizer.Summary{}, f.err
	}
	return f.summary, nil
}

func (f *fakeSummarizer) release() { close(f.gate) }

func (f *fakeSummarizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeSink records published outcome events.
type fakeSink struct {
	mu     sync.Mutex
	events []publishers.Event
	err    error
}

func (f *fakeSink) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func newOrchestrator(t *testing.T, client Summarizer, opts ...Option) *Orchestrator {
	t.Helper()
	o, err := New(client, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o
}

func newHTTPOrchestrator(t *testing.T, h http.HandlerFunc) *Orchestrator {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := summarizer.NewClient(srv.URL, httpclient.NewRestyClient(2*time.Second))
	if err != nil {
		t.Fatalf("summarizer.NewClient: %v", err)
	}
	return newOrchestrator(t, client)
}

func waitDone(t *testing.T, sub *Submission) domain.SubmissionState {
	t.Helper()
	select {
	case <-sub.Done():
		return sub.Outcome()
	case <-time.After(5 * time.Second):
		t.Fatalf("submission %q did not settle", sub.URL)
		return domain.SubmissionState{}
	}
}

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestInitialStateIsIdle(t *testing.T) {
	o := newOrchestrator(t, newGatedSummarizer())
	if got := o.State(); got.Phase != domain.PhaseIdle {
		t.Fatalf("initial phase = %s", got.Phase)
	}
	if vm := o.ViewModel(); vm.IsLoading || vm.Result != nil {
		t.Fatalf("idle view model = %#v", vm)
	}
}

func TestSubmitTransitionsToPendingSynchronously(t *testing.T) {
	fake := newGatedSummarizer()
	o := newOrchestrator(t, fake)

	sub, err := o.Submit(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	state := o.State()
	if state.Phase != domain.PhasePending || state.URL != "https://youtu.be/abc" {
		t.Fatalf("expected pending state, got %#v", state)
	}
	if vm := o.ViewModel(); !vm.IsLoading || vm.Result != nil {
		t.Fatalf("pending view model = %#v", vm)
	}

	fake.release()
	if got := waitDone(t, sub); got.Phase != domain.PhaseResolved {
		t.Fatalf("expected resolved, got %s", got.Phase)
	}
	if o.State().Phase == domain.PhasePending {
		t.Fatalf("state left pending after settlement")
	}
}

// Scenario A.
func TestSubmitResolvesWithSubmittedURL(t *testing.T) {
	o := newHTTPOrchestrator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"T","summary":"S","thumbnail":"http://img","url":"https://other"}`))
	})

	state, err := o.SubmitAndWait(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("SubmitAndWait: %v", err)
	}

	want := domain.SummaryResult{
		Title:        "T",
		Summary:      "S",
		ThumbnailURL: "http://img",
		SourceURL:    "https://youtu.be/abc",
	}
	if state.Phase != domain.PhaseResolved || state.Result == nil || *state.Result != want {
		t.Fatalf("got %#v, want resolved %#v", state, want)
	}
	if state.Error != nil {
		t.Fatalf("resolved state must not hold an error")
	}
}

// Scenario B.
func TestSubmitFailsOnServerError(t *testing.T) {
	o := newHTTPOrchestrator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Error generating summary"}`))
	})

	state, err := o.SubmitAndWait(context.Background(), "https://youtu.be/bad")
	if err != nil {
		t.Fatalf("SubmitAndWait: %v", err)
	}
	if state.Phase != domain.PhaseFailed || state.Error == nil {
		t.Fatalf("expected failed state, got %#v", state)
	}
	if state.Error.Message != "No captions or subtitles were found for this video." {
		t.Fatalf("message = %q", state.Error.Message)
	}
	if !strings.Contains(state.Error.Cause, "500") || !strings.Contains(state.Error.Cause, "Error generating summary") {
		t.Fatalf("cause lacks diagnostics: %q", state.Error.Cause)
	}
	if state.Result != nil {
		t.Fatalf("failed state must not hold a result")
	}
}

func TestEveryFailureCollapsesToSameMessage(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"bad request": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Captions are disabled for this video."}`))
		},
		"missing field": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"title":"T","summary":"S"}`))
		},
		"not json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`oops`))
		},
		"not modified status": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotModified)
		},
	}

	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			o := newHTTPOrchestrator(t, h)
			state, err := o.SubmitAndWait(context.Background(), "https://youtu.be/x")
			if err != nil {
				t.Fatalf("SubmitAndWait: %v", err)
			}
			if state.Phase != domain.PhaseFailed || state.Error.Message != domain.NoCaptionsMessage {
				t.Fatalf("expected fixed failure, got %#v", state)
			}
			if state.Error.Cause == "" {
				t.Fatalf("expected diagnostic cause")
			}
		})
	}
}

func TestSubmitFailsOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	client, err := summarizer.NewClient(base, httpclient.NewRestyClient(time.Second))
	if err != nil {
		t.Fatalf("summarizer.NewClient: %v", err)
	}
	o := newOrchestrator(t, client)

	state, err := o.SubmitAndWait(context.Background(), "https://youtu.be/x")
	if err != nil {
		t.Fatalf("SubmitAndWait: %v", err)
	}
	if state.Phase != domain.PhaseFailed || state.Error.Message != domain.NoCaptionsMessage {
		t.Fatalf("expected fixed failure, got %#v", state)
	}
	if !strings.HasPrefix(state.Error.Cause, "transport:") {
		t.Fatalf("cause = %q", state.Error.Cause)
	}
}

// Scenario C.
func TestSubmitWhilePendingIsRejected(t *testing.T) {
	fake := newGatedSummarizer()
	o := newOrchestrator(t, fake)

	subA, err := o.Submit(context.Background(), "https://youtu.be/A")
	if err != nil {
		t.Fatalf("Submit A: %v", err)
	}
	before := o.State()

	subB, err := o.Submit(context.Background(), "https://youtu.be/B")
	if !errors.Is(err, ErrSubmissionPending) {
		t.Fatalf("expected ErrSubmissionPending, got %v", err)
	}
	if subB != nil {
		t.Fatalf("rejected submit must not return a handle")
	}
	if after := o.State(); !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed on rejected submit: %#v -> %#v", before, after)
	}

	fake.release()
	got := waitDone(t, subA)
	if got.Result == nil || got.Result.SourceURL != "https://youtu.be/A" {
		t.Fatalf("expected outcome of A, got %#v", got)
	}
	if n := fake.callCount(); n != 1 {
		t.Fatalf("expected exactly one network call, got %d", n)
	}
}

func TestConcurrentSubmitsAcceptExactlyOne(t *testing.T) {
	fake := newGatedSummarizer()
	o := newOrchestrator(t, fake)

	const n = 32
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted []*Submission
		rejected int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub, err := o.Submit(context.Background(), "https://youtu.be/race")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rejected++
				return
			}
			accepted = append(accepted, sub)
		}()
	}
	wg.Wait()

	if len(accepted) != 1 || rejected != n-1 {
		t.Fatalf("accepted=%d rejected=%d", len(accepted), rejected)
	}
	fake.release()
	waitDone(t, accepted[0])
	if fake.callCount() != 1 {
		t.Fatalf("expected one call, got %d", fake.callCount())
	}
}

// Scenario D.
func TestResubmitAfterResolvedClearsResult(t *testing.T) {
	fake := &fakeSummarizer{summary: summarizer.Summary{Title: "T", Summary: "S", Thumbnail: "http://img"}}
	o := newOrchestrator(t, fake)

	if _, err := o.SubmitAndWait(context.Background(), "https://youtu.be/first"); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if o.State().Phase != domain.PhaseResolved {
		t.Fatalf("expected resolved after first submit")
	}

	fake.mu.Lock()
	fake.gate = make(chan struct{})
	fake.mu.Unlock()

	sub, err := o.Submit(context.Background(), "https://youtu.be/second")
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	state := o.State()
	if state.Phase != domain.PhasePending || state.Result != nil {
		t.Fatalf("expected pending without result, got %#v", state)
	}
	if vm := o.ViewModel(); !vm.IsLoading || vm.Result != nil {
		t.Fatalf("view model while pending = %#v", vm)
	}

	fake.release()
	if got := waitDone(t, sub); got.Result.SourceURL != "https://youtu.be/second" {
		t.Fatalf("expected second url, got %#v", got.Result)
	}
}

func TestResubmitAfterFailedResolves(t *testing.T) {
	fake := &fakeSummarizer{err: &summarizer.ServerError{StatusCode: 500}}
	o := newOrchestrator(t, fake)

	if state, _ := o.SubmitAndWait(context.Background(), "https://youtu.be/x"); state.Phase != domain.PhaseFailed {
		t.Fatalf("expected failed, got %s", state.Phase)
	}

	fake.mu.Lock()
	fake.err = nil
	fake.summary = summarizer.Summary{Title: "T", Summary: "S", Thumbnail: "http://img"}
	fake.mu.Unlock()

	state, err := o.SubmitAndWait(context.Background(), "https://youtu.be/x")
	if err != nil {
		t.Fatalf("SubmitAndWait: %v", err)
	}
	if state.Phase != domain.PhaseResolved || state.Error != nil {
		t.Fatalf("expected clean resolved state, got %#v", state)
	}
	if fake.callCount() != 2 {
		t.Fatalf("expected no automatic retry, calls=%d", fake.callCount())
	}
}

func TestCallerCancellationDoesNotCancelRequest(t *testing.T) {
	fake := newGatedSummarizer()
	o := newOrchestrator(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := o.Submit(ctx, "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	cancel()

	if _, err := sub.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected Wait to give up with ctx error, got %v", err)
	}

	fake.release()
	got := waitDone(t, sub)
	if got.Phase != domain.PhaseResolved {
		t.Fatalf("in-flight request must complete, got %s", got.Phase)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.ctxErrs[0] != nil {
		t.Fatalf("request context was cancelled: %v", fake.ctxErrs[0])
	}
}

func TestPanickingClientSettlesAsFailure(t *testing.T) {
	o := newOrchestrator(t, &fakeSummarizer{panics: true})

	state, err := o.SubmitAndWait(context.Background(), "https://youtu.be/x")
	if err != nil {
		t.Fatalf("SubmitAndWait: %v", err)
	}
	if state.Phase != domain.PhaseFailed || !strings.Contains(state.Error.Cause, "panic") {
		t.Fatalf("expected failure from panic, got %#v", state)
	}
}

func TestOutcomeSinkReceivesSettledSubmissions(t *testing.T) {
	sink := &fakeSink{err: errors.New("sink down")}
	fake := &fakeSummarizer{summary: summarizer.Summary{Title: "T", Summary: "S", Thumbnail: "http://img"}}
	o := newOrchestrator(t, fake, WithOutcomeSink(sink))

	if _, err := o.SubmitAndWait(context.Background(), "https://youtu.be/ok"); err != nil {
		t.Fatalf("SubmitAndWait: %v", err)
	}
	fake.mu.Lock()
	fake.err = errors.New("dial tcp: refused")
	fake.mu.Unlock()
	state, err := o.SubmitAndWait(context.Background(), "https://youtu.be/bad")
	if err != nil {
		t.Fatalf("SubmitAndWait: %v", err)
	}
	if state.Phase != domain.PhaseFailed {
		t.Fatalf("sink errors must not alter state, got %s", state.Phase)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(sink.events))
	}
	if sink.events[0].Status != publishers.StatusResolved || sink.events[0].SourceURL != "https://youtu.be/ok" {
		t.Fatalf("unexpected first event %#v", sink.events[0])
	}
	if sink.events[1].Status != publishers.StatusFailed || sink.events[1].Cause != "dial tcp: refused" {
		t.Fatalf("unexpected second event %#v", sink.events[1])
	}
}
