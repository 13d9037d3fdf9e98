package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	// PostJSON sends body encoded as JSON with Content-Type application/json.
	// A non-2xx status is not an error; callers inspect StatusCode.
	PostJSON(ctx context.Context, url string, body any, headers map[string]string) (Response, error)
}
