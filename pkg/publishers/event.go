package publishers

import (
	"time"

	"github.com/Adda-Baaj/vidsum/internal/domain"
)

// Outcome statuses carried by Event.Status.
const (
	StatusResolved = "resolved"
	StatusFailed   = "failed"
)

// Event represents one settled submission published downstream.
type Event struct {
	SourceURL    string    `json:"source_url"`
	Status       string    `json:"status"`
	Title        string    `json:"title,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Cause        string    `json:"cause,omitempty"`
	SettledAt    time.Time `json:"settled_at"`
}

// NewResolvedEvent constructs an Event for a successful submission.
func NewResolvedEvent(res domain.SummaryResult) Event {
	return Event{
		SourceURL:    res.SourceURL,
		Status:       StatusResolved,
		Title:        res.Title,
		Summary:      res.Summary,
		ThumbnailURL: res.ThumbnailURL,
		SettledAt:    time.Now().UTC(),
	}
}

// NewFailedEvent constructs an Event for a failed submission of sourceURL.
func NewFailedEvent(sourceURL string, n domain.ErrorNotification) Event {
	return Event{
		SourceURL: sourceURL,
		Status:    StatusFailed,
		Cause:     n.Cause,
		SettledAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached by queue and topic publishers.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"status":     e.Status,
		"source_url": e.SourceURL,
	}
}
