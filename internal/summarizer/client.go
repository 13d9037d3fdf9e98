package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/vidsum/pkg/httpclient"
)

const (
	summarizePath   = "/summarize"
	maxDetailLength = 512
)

// Summary is the remote service's answer for one video.
type Summary struct {
	Title     string
	Summary   string
	Thumbnail string
}

// Request is the JSON body sent to the service.
type Request struct {
	YoutubeURL string `json:"youtube_url"`
}

// wireSummary keeps absent and null fields distinguishable from empty ones.
type wireSummary struct {
	Title     *string `json:"title"`
	Summary   *string `json:"summary"`
	Thumbnail *string `json:"thumbnail"`
}

type wireError struct {
	Error string `json:"error"`
}

// Client calls the remote summarization service.
type Client struct {
	endpoint string
	http     httpclient.Client
}

// NewClient builds a client for the service rooted at baseURL.
func NewClient(baseURL string, client httpclient.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("summarizer base url is empty")
	}
	if client == nil {
		return nil, errors.New("summarizer http client is nil")
	}
	return &Client{endpoint: baseURL + summarizePath, http: client}, nil
}

// Endpoint returns the full URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Summarize posts videoURL to the service. Errors are always one of
// *TransportError, *ServerError or *MalformedResponse.
func (c *Client) Summarize(ctx context.Context, videoURL string) (Summary, error) {
	resp, err := c.http.PostJSON(ctx, c.endpoint, Request{YoutubeURL: videoURL}, nil)
	if err != nil {
		return Summary{}, &TransportError{Err: err}
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return Summary{}, &ServerError{StatusCode: status, Detail: errorDetail(resp.Body())}
	}
	return decodeSummary(resp.Body())
}

func decodeSummary(body []byte) (Summary, error) {
	var ws wireSummary
	if err := json.Unmarshal(body, &ws); err != nil {
		return Summary{}, &MalformedResponse{Err: fmt.Errorf("decode body: %w", err)}
	}

	var missing []string
	for _, f := range []struct {
		name string
		val  *string
	}{
		{"title", ws.Title},
		{"summary", ws.Summary},
		{"thumbnail", ws.Thumbnail},
	} {
		if f.val == nil || strings.TrimSpace(*f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Summary{}, &MalformedResponse{Missing: missing}
	}

	return Summary{Title: *ws.Title, Summary: *ws.Summary, Thumbnail: *ws.Thumbnail}, nil
}

// errorDetail prefers the service's {"error": "..."} text over a raw snippet.
func errorDetail(body []byte) string {
	var we wireError
	if err := json.Unmarshal(body, &we); err == nil && strings.TrimSpace(we.Error) != "" {
		return strings.TrimSpace(we.Error)
	}
	return readBodySnippet(body)
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxDetailLength {
		body = body[:maxDetailLength]
	}
	return strings.TrimSpace(string(body))
}

// Kind names the failure class of err for diagnostics.
func Kind(err error) string {
	var (
		te *TransportError
		se *ServerError
		me *MalformedResponse
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &te):
		return "transport_error"
	case errors.As(err, &se):
		return "server_error"
	case errors.As(err, &me):
		return "malformed_response"
	default:
		return "unknown"
	}
}
