package siteinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiPath          = "/w/api.php"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "wikiconf (https://github.com/wikimark/wikiconf)"
)

// siprops are the siteinfo properties the extractor consumes, in the order
// they appear in the query string.
var siprops = []string{
	"extensiontags",
	"general",
	"magicwords",
	"namespacealiases",
	"namespaces",
	"protocols",
}

// Endpoint queries one wiki's siteinfo API. Wiki domains are always spoken
// to over HTTPS; only an explicit base URL override can point elsewhere.
type Endpoint struct {
	client    *http.Client
	base      string
	url       string
	userAgent string
	logger    *zap.Logger
}

// Option adjusts an Endpoint beyond its defaults.
type Option func(*Endpoint)

// WithHTTPClient substitutes the HTTP client, mainly to adjust timeouts or
// transports.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Endpoint) { e.client = client }
}

// WithUserAgent replaces the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(e *Endpoint) { e.userAgent = ua }
}

// WithLogger attaches a logger for response diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Endpoint) { e.logger = logger }
}

// WithBaseURL points the endpoint at a different API root while keeping
// the fixed query string. Tests use it to target local servers.
func WithBaseURL(base string) Option {
	return func(e *Endpoint) { e.base = base }
}

// NewEndpoint builds the client and query URL for a wiki domain.
func NewEndpoint(domain string, opts ...Option) (*Endpoint, error) {
	e := &Endpoint{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	base := e.base
	if base == "" {
		if domain == "" || strings.ContainsAny(domain, " /?#@:") {
			return nil, fmt.Errorf("invalid wiki domain %q", domain)
		}
		base = (&url.URL{Scheme: "https", Host: domain, Path: apiPath}).String()
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("siteinfo endpoint: %w", err)
	}
	u.RawQuery = queryValues().Encode()
	e.url = u.String()
	e.logger.Debug("siteinfo endpoint", zap.String("url", e.url))
	return e, nil
}

// queryValues is the fixed siteinfo query: the six properties, JSON format
// version 2 and plaintext errors.
func queryValues() url.Values {
	v := url.Values{}
	v.Set("action", "query")
	v.Set("meta", "siteinfo")
	v.Set("siprop", strings.Join(siprops, "|"))
	v.Set("format", "json")
	v.Set("formatversion", "2")
	v.Set("errorformat", "plaintext")
	return v
}

// URL returns the full query URL.
func (e *Endpoint) URL() string { return e.url }

// Fetch issues the siteinfo request and decodes the response envelope.
// Enveloped errors and warnings are not inspected here; DecodeQuery
// rejects them when the payload is unpacked.
func (e *Endpoint) Fetch(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("siteinfo request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("siteinfo request: %w", err)
	}
	defer resp.Body.Close()

	e.logger.Info("siteinfo response", zap.String("status", resp.Status))
	for _, name := range []string{
		"Connection",
		"Content-Encoding",
		"Content-Length",
		"Content-Type",
		"Server",
		"Mediawiki-Api-Error",
	} {
		e.logger.Debug("siteinfo response header",
			zap.String("name", name),
			zap.Strings("values", resp.Header.Values(name)))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("siteinfo request: unexpected status %s", resp.Status)
	}
	var r Response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("siteinfo response: %w", err)
	}
	return &r, nil
}

// FetchQuery is Fetch followed by DecodeQuery.
func (e *Endpoint) FetchQuery(ctx context.Context) (*Query, error) {
	r, err := e.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return r.DecodeQuery()
}
