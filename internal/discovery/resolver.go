// Package discovery asks the backend which WebSocket address to connect to.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultPath is the discovery endpoint path.
const DefaultPath = "/get-connection"

const (
	requestTimeout = 5 * time.Second
	maxBodySize    = 4096
)

// ErrEmptyAddress is returned when the endpoint answers with an empty body.
var ErrEmptyAddress = errors.New("discovery returned an empty address")

// Result is returned by async resolution.
type Result struct {
	Address string
	Err     error
}

// URL builds the discovery URL, e.g. "http://board.local:3000/get-connection".
func URL(scheme, host string, port int, path string) string {
	if path == "" {
		path = DefaultPath
	}
	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   path,
	}
	return u.String()
}

// Resolver fetches the WebSocket address from a discovery endpoint.
type Resolver struct {
	url    string
	client *http.Client
}

// NewResolver creates a Resolver for the given discovery URL.
func NewResolver(discoveryURL string) *Resolver {
	return &Resolver{
		url:    discoveryURL,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// URL returns the endpoint this resolver queries.
func (r *Resolver) URL() string {
	return r.url
}

// ResolveAsync performs the discovery request asynchronously.
// Returns a channel that receives exactly one result.
func (r *Resolver) ResolveAsync(ctx context.Context) <-chan Result {
	ch := make(chan Result, 1)

	go func() {
		defer close(ch)
		addr, err := r.Resolve(ctx)
		ch <- Result{Address: addr, Err: err}
	}()

	return ch
}

// Resolve performs a synchronous discovery request. The plaintext body,
// trimmed of surrounding whitespace, is the address.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", fmt.Errorf("build discovery request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("discovery request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("discovery endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read discovery response: %w", err)
	}

	addr := strings.TrimSpace(string(body))
	if addr == "" {
		return "", ErrEmptyAddress
	}
	return addr, nil
}
