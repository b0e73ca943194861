package httpclient

import "context"

// Response is the transport-agnostic view of an upstream reply.
// Body is kept raw so callers can log it on non-2xx statuses.
type Response struct {
	StatusCode int
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// HTTPClient is the read-only client the market data repositories need.
type HTTPClient interface {
	Get(ctx context.Context, endpoint string, query map[string]string, result any) (*Response, error)
}
