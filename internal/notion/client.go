// Package notion publishes structured questions to a Notion page.
package notion

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jomei/notionapi"
)

const (
	defaultBaseURL = "https://api.notion.com"
	defaultVersion = "2022-06-28"
)

// NewClient creates a Notion API client. Empty version selects defaultVersion.
// A baseURL other than the public API sends every request there instead.
// Rate-limited requests are not retried.
func NewClient(token, baseURL, version string, httpClient *http.Client) (*notionapi.Client, error) {
	if version == "" {
		version = defaultVersion
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL != "" && baseURL != defaultBaseURL {
		target, err := url.Parse(baseURL)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
		}
		redirected := *httpClient
		redirected.Transport = &rewriteTransport{target: target, next: httpClient.Transport}
		httpClient = &redirected
	}

	return notionapi.NewClient(notionapi.Token(token),
		notionapi.WithHTTPClient(httpClient),
		notionapi.WithVersion(version),
		notionapi.WithRetry(1),
	), nil
}

// ErrInvalidBaseURL is returned for a base URL without scheme or host.
var ErrInvalidBaseURL = errors.New("notion base URL needs a scheme and a host")

// rewriteTransport points requests built for the public API at target.
type rewriteTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.URL.Path = strings.TrimRight(t.target.Path, "/") + req.URL.Path
	out.Host = t.target.Host

	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(out)
}
