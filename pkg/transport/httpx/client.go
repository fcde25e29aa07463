// pkg/transport/httpx/client.go
package httpx

import (
	"net/http"
	"time"
)

// Doer is satisfied by *http.Client and allows easy mocking in tests.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// NewHTTPClient returns the outbound client used for remote endpoints.
// No overall request timeout is set; callers bound calls with their context.
func NewHTTPClient() Doer {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			DisableCompression:  false,
		},
	}
}
