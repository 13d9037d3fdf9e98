package orchestrator

import (
	"context"

	"github.com/Adda-Baaj/vidsum/internal/summarizer"
	"github.com/Adda-Baaj/vidsum/pkg/publishers"
)

// Summarizer performs the remote summarization call.
type Summarizer interface {
	Summarize(ctx context.Context, videoURL string) (summarizer.Summary, error)
}

// OutcomeSink receives one event per settled submission.
type OutcomeSink interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
