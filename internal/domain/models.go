package domain

// Domain contains the submission lifecycle models shared by the orchestrator
// and the presentation layer.

// NoCaptionsMessage is the only failure text ever shown to the user.
const NoCaptionsMessage = "No captions or subtitles were found for this video."

// Phase identifies where a submission is in its lifecycle.
type Phase string

const (
	PhaseIdle     Phase = "idle"     // initial state, never re-entered
	PhasePending  Phase = "pending"  // request in flight
	PhaseResolved Phase = "resolved" // holds a SummaryResult
	PhaseFailed   Phase = "failed"   // holds an ErrorNotification
)

// SummaryResult is a summarized video. SourceURL is the URL the user
// submitted, never one reported by the remote service.
type SummaryResult struct {
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	ThumbnailURL string `json:"thumbnail_url"`
	SourceURL    string `json:"source_url"`
}

// ErrorNotification describes a failed submission. Cause is diagnostic only.
type ErrorNotification struct {
	Message string `json:"message"`
	Cause   string `json:"cause"`
}

// SubmissionState is a snapshot of the orchestrator's single unit of state.
// Only the fields belonging to Phase are set.
type SubmissionState struct {
	Phase  Phase
	URL    string
	Result *SummaryResult
	Error  *ErrorNotification
}

// Idle returns the initial state.
func Idle() SubmissionState { return SubmissionState{Phase: PhaseIdle} }

// Pending returns the state of an in-flight submission of url.
func Pending(url string) SubmissionState {
	return SubmissionState{Phase: PhasePending, URL: url}
}

// Resolved returns a settled, successful state.
func Resolved(res SummaryResult) SubmissionState {
	return SubmissionState{Phase: PhaseResolved, Result: &res}
}

// Failed returns a settled, failed state.
func Failed(n ErrorNotification) SubmissionState {
	return SubmissionState{Phase: PhaseFailed, Error: &n}
}

// ViewModel is the render-ready projection of a SubmissionState.
type ViewModel struct {
	IsLoading bool           `json:"is_loading"`
	Result    *SummaryResult `json:"result,omitempty"`
}
