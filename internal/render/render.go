package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/Adda-Baaj/vidsum/internal/domain"
)

const (
	// PageTitle heads every rendering.
	PageTitle    = "YouTube Video Summarizer"
	pageSubtitle = "Get quick summaries of any YouTube video"
	LoadingText  = "Generating..."
	LinkText     = "View Original Video"
)

// Text writes a terminal rendering of vm. Nothing is written for an empty view.
func Text(w io.Writer, vm domain.ViewModel) error {
	if vm.IsLoading {
		_, err := fmt.Fprintln(w, LoadingText)
		return err
	}
	if vm.Result == nil {
		return nil
	}

	r := vm.Result
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Title)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", len([]rune(r.Title))))
	fmt.Fprintf(&b, "Thumbnail: %s\n", r.ThumbnailURL)
	fmt.Fprintf(&b, "%s: %s\n\n", LinkText, r.SourceURL)
	fmt.Fprintf(&b, "%s\n", strings.TrimSpace(r.Summary))

	_, err := io.WriteString(w, b.String())
	return err
}

// Toast writes a one-line transient error notice.
func Toast(w io.Writer, message string) error {
	_, err := fmt.Fprintf(w, "error: %s\n", message)
	return err
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Heading}}</title></head>
<body>
<header>
<h1>{{.Heading}}</h1>
<p class="subtitle">{{.Subtitle}}</p>
</header>
{{- if .VM.IsLoading}}
<div class="spinner" role="status">{{.Loading}}</div>
{{- end}}
{{- with .VM.Result}}
<article class="summary-card">
<img class="thumbnail" src="{{.ThumbnailURL}}" alt="Video Thumbnail">
<h3 class="title">{{.Title}}</h3>
<a class="source" href="{{.SourceURL}}" target="_blank" rel="noopener noreferrer">{{$.Link}}</a>
<p class="summary">{{.Summary}}</p>
</article>
{{- end}}
</body>
</html>
`))

// HTML writes the single-page rendering of vm.
func HTML(w io.Writer, vm domain.ViewModel) error {
	return pageTmpl.Execute(w, struct {
		Heading, Subtitle, Loading, Link string
		VM                               domain.ViewModel
	}{
		Heading:  PageTitle,
		Subtitle: pageSubtitle,
		Loading:  LoadingText,
		Link:     LinkText,
		VM:       vm,
	})
}

// Format selects a renderer by name.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text or html)", s)
	}
}

// View renders vm in format f.
func View(w io.Writer, f Format, vm domain.ViewModel) error {
	if f == FormatHTML {
		return HTML(w, vm)
	}
	return Text(w, vm)
}
