package utils

import (
	"github.com/go-resty/resty/v2"
)

const userAgent = "go-service-bootstrap"

// HTTPClient is the resty client used by the service adapter and the
// end-to-end tests. Every client asks for JSON and sends the module user
// agent.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client with its own connection pool.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		Client: resty.New().
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", userAgent),
	}
}
