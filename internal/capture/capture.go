// Package capture intercepts in-page network traffic over the Chrome
// DevTools protocol and surfaces the JSON API responses that carry
// profile data.
package capture

import (
	"strings"
)

// RawCapture is one intercepted network response. Produced here,
// consumed once by the extraction pipeline, never persisted.
type RawCapture struct {
	URL        string
	MimeType   string
	StatusCode int
	Body       []byte
}

// Source supplies intercepted responses as a stream. The channel closes
// when the source stops, either on demand or because the browser session
// went away.
type Source interface {
	Captures() <-chan RawCapture
	Close() error
}

// Filter decides which responses are worth fetching a body for. Most
// page traffic (assets, telemetry) never carries profile data; fetching
// every body would hammer the DevTools connection for nothing.
type Filter struct {
	// HostSubstrings must all appear in the URL. Empty means any host.
	HostSubstrings []string
	// URLKeywords: at least one must appear in the URL.
	URLKeywords []string
}

// DefaultURLKeywords names the API endpoints known to return people.
var DefaultURLKeywords = []string{
	"SERVER_GET_ENCOUNTERS",
	"SERVER_GET_USER",
	"SERVER_GET_FILTERED_ENCOUNTERS",
	"SERVER_GET_CONNECTIONS",
	"SERVER_GET_MATCHES",
	"SERVER_GET_CONVERSATIONS",
	"encounters",
	"beeline",
	"connections",
	"matches",
	"conversations",
}

// Match reports whether a response with the given URL, MIME type and
// status is worth processing: JSON, successful, from the right host,
// hitting a known data endpoint.
func (f Filter) Match(url, mimeType string, status int) bool {
	if status < 200 || status >= 300 {
		return false
	}
	if !strings.Contains(strings.ToLower(mimeType), "json") {
		return false
	}
	for _, h := range f.HostSubstrings {
		if !strings.Contains(url, h) {
			return false
		}
	}
	keywords := f.URLKeywords
	if len(keywords) == 0 {
		keywords = DefaultURLKeywords
	}
	for _, k := range keywords {
		if strings.Contains(url, k) {
			return true
		}
	}
	return false
}
