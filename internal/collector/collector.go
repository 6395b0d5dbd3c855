package collector

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// StatusError is returned when an upstream endpoint answers with a non-200 status.
type StatusError struct {
	Source string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Source, e.Code)
	}
	return fmt.Sprintf("%s: status %d, body: %s", e.Source, e.Code, e.Body)
}

// NewHTTPClient builds the client shared by the fetchers, with optional proxy support.
func NewHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
