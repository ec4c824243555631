// internal/common/http/client.go

// Package http provides the outbound client shared by REST integrations.
// Callers build requests with http.NewRequestWithContext, so cancellation
// flows through the request; the client adds an overall timeout and a
// connection pool sized for steady traffic to a single API host.
package http

import (
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Do executes the request. The configured timeout caps the whole exchange,
// including reading the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}
