package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

type Connection interface {
	Request(ctx context.Context, endpoint *url.URL, header http.Header) (*http.Response, error)
}

type ClientHost struct {
	client   *http.Client
	scheme   string
	host     string
	basePath string
}

type Client struct {
	Connection Connection
	ApiKey     string
}

// Request resolves endpoint against the host and issues a GET. Any failure to get a
// response back, timeouts and cancellations included, is returned as a *TransportError.
func (conn *ClientHost) Request(ctx context.Context, endpoint *url.URL, header http.Header) (*http.Response, error) {
	endpoint.Scheme = conn.scheme
	endpoint.Host = conn.host
	endpoint.Path = path.Join("/", conn.basePath, endpoint.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	res, err := conn.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return res, nil
}

// ClientFactory builds a client against baseUrl, which may carry a path prefix.
func ClientFactory(baseUrl string, apiKey string, timeout time.Duration) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseUrl))
	if err != nil {
		return nil, fmt.Errorf("error parsing base url %q: %w", baseUrl, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q needs a scheme and a host", baseUrl)
	}

	clientHost := &ClientHost{
		client: &http.Client{
			Timeout: timeout,
		},
		scheme:   parsed.Scheme,
		host:     parsed.Host,
		basePath: parsed.Path,
	}

	return &Client{
		Connection: clientHost,
		ApiKey:     apiKey,
	}, nil
}
