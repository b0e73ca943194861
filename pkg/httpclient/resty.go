package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

type RestyClient struct {
	client *resty.Client
}

type Option func(*resty.Client)

// WithRetry retries requests that fail at the transport level or return 429/5xx.
func WithRetry(count int, wait time.Duration) Option {
	return func(c *resty.Client) {
		c.SetRetryCount(count).
			SetRetryWaitTime(wait).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				if err != nil {
					return true
				}
				return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
			})
	}
}

func WithHeader(key, value string) Option {
	return func(c *resty.Client) {
		c.SetHeader(key, value)
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	for _, opt := range opts {
		opt(client)
	}

	return &RestyClient{client: client}
}

// Get decodes a JSON body into result when result is non-nil. Transport
// errors are returned as is; HTTP error statuses are left to the caller.
func (rc *RestyClient) Get(ctx context.Context, endpoint string, query map[string]string, result any) (*Response, error) {
	req := rc.client.R().SetContext(ctx).SetQueryParams(query)
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Get(endpoint)
	if resp == nil {
		return &Response{}, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, err
}
