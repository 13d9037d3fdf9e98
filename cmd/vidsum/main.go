package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adda-Baaj/vidsum/internal/app"
	"github.com/Adda-Baaj/vidsum/internal/config"
	"github.com/Adda-Baaj/vidsum/internal/logger"
	"github.com/Adda-Baaj/vidsum/internal/render"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		if !errors.Is(err, app.ErrSubmissionFailed) {
			fmt.Fprintf(os.Stderr, "vidsum failed: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cliApp := &cli.App{
		Name:   "vidsum",
		Usage:  "summarize YouTube videos through a remote summarization service",
		Action: interactiveAction,
		Commands: []*cli.Command{
			{
				Name:      "summarize",
				Usage:     "summarize a single video URL and print the result",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: string(render.FormatText),
						Usage: "output format: text or html",
					},
				},
				Action: summarizeAction,
			},
			{
				Name:   "interactive",
				Usage:  "read video URLs from stdin, one per line",
				Action: interactiveAction,
			},
			{
				Name:   "tui",
				Usage:  "open the full-screen terminal interface",
				Action: tuiAction,
			},
		},
	}
	return cliApp.RunContext(ctx, args)
}

// withRuntime loads config, initializes logging and builds the runtime for fn.
func withRuntime(c *cli.Context, fn func(s *app.Summarizer) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	logger.InfoObj("vidsum starting", "config", cfg)

	s, err := app.NewSummarizer(c.Context, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize summarizer", "error", err.Error())
		return err
	}
	defer s.Close()

	return fn(s)
}

func summarizeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("summarize expects exactly one <url> argument", 2)
	}
	format, err := render.ParseFormat(c.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	url := c.Args().First()

	return withRuntime(c, func(s *app.Summarizer) error {
		return s.Once(c.Context, url, format, os.Stdout, os.Stderr)
	})
}

func interactiveAction(c *cli.Context) error {
	return withRuntime(c, func(s *app.Summarizer) error {
		return s.RunConsole(c.Context, os.Stdin, os.Stdout, os.Stderr)
	})
}

func tuiAction(c *cli.Context) error {
	return withRuntime(c, func(s *app.Summarizer) error {
		return s.RunTUI(c.Context, os.Stdin, os.Stdout)
	})
}
