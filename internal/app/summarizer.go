package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Adda-Baaj/vidsum/internal/config"
	"github.com/Adda-Baaj/vidsum/internal/domain"
	"github.com/Adda-Baaj/vidsum/internal/logger"
	"github.com/Adda-Baaj/vidsum/internal/orchestrator"
	"github.com/Adda-Baaj/vidsum/internal/render"
	"github.com/Adda-Baaj/vidsum/internal/summarizer"
	"github.com/Adda-Baaj/vidsum/pkg/httpclient"
	"github.com/Adda-Baaj/vidsum/pkg/publishers"
)

// ErrSubmissionFailed is returned by Once when the submission settled as Failed.
var ErrSubmissionFailed = errors.New("submission failed")

// Summarizer is the client runtime. It wires the HTTP adapter, the outcome
// publishers and the request orchestrator, and drives the presentation.
type Summarizer struct {
	cfg    *config.Config
	orch   *orchestrator.Orchestrator
	fanout *publishers.Fanout
	log    logger.Logger
}

// NewSummarizer builds the runtime from config.
func NewSummarizer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Summarizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := summarizer.NewClient(cfg.SummarizerURL, httpclient.NewRestyClient(cfg.SummarizerTimeout))
	if err != nil {
		return nil, fmt.Errorf("init summarizer client: %w", err)
	}
	log.InfoObj("summarizer client configured", "summarizer_config", map[string]any{
		"endpoint":        client.Endpoint(),
		"timeout_seconds": int(cfg.SummarizerTimeout.Seconds()),
	})

	fanout, err := loadPublishers(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	opts := []orchestrator.Option{orchestrator.WithLogger(log)}
	if fanout.Size() > 0 {
		opts = append(opts, orchestrator.WithOutcomeSink(fanout))
	}
	orch, err := orchestrator.New(client, opts...)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init orchestrator: %w", err)
	}

	return &Summarizer{
		cfg:    cfg,
		orch:   orch,
		fanout: fanout,
		log:    log,
	}, nil
}

// loadPublishers builds the outcome fanout; no publishers file means none.
func loadPublishers(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		log.DebugObj("no publishers file configured", "publishers_file", "")
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Orchestrator exposes the request orchestrator.
func (s *Summarizer) Orchestrator() *orchestrator.Orchestrator { return s.orch }

// Close releases the outcome publishers.
func (s *Summarizer) Close() error {
	if s == nil {
		return nil
	}
	if err := s.fanout.Close(); err != nil {
		s.log.ErrorObj("publishers close failed", "error", err.Error())
		return err
	}
	return nil
}

// Once submits rawURL, waits for the outcome and renders it to out. A failed
// submission writes its toast to errOut and returns ErrSubmissionFailed.
func (s *Summarizer) Once(ctx context.Context, rawURL string, format render.Format, out, errOut io.Writer) error {
	if rawURL == "" {
		return fmt.Errorf("url must not be empty")
	}

	state, err := s.orch.SubmitAndWait(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	if state.Phase == domain.PhaseFailed {
		if err := render.Toast(errOut, state.Error.Message); err != nil {
			return fmt.Errorf("render toast: %w", err)
		}
		return ErrSubmissionFailed
	}
	if err := render.View(out, format, orchestrator.Project(state)); err != nil {
		return fmt.Errorf("render view: %w", err)
	}
	return nil
}
