// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package poll

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/bureau-foundation/monitor/lib/codec"
	"github.com/bureau-foundation/monitor/lib/netutil"
	"github.com/bureau-foundation/monitor/lib/version"
)

// Response is a raw answer from the rollout endpoint.
type Response struct {
	Status      int
	ContentType string

	// Body is the decoded (decompressed) body. For a non-2xx status
	// it may be a short excerpt.
	Body []byte
}

// Fetcher retrieves the snapshot endpoint. Implementations return an
// error only when no HTTP response was obtained; any status code,
// including 5xx, is a Response.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (Response, error)
}

// acceptHeader lists the snapshot encodings Decode understands.
var acceptHeader = "application/json, " + codec.ContentType

// HTTPFetcher is a Fetcher backed by net/http. The endpoint may be an
// http:// or https:// base URL, or unix:///path/to/socket for a
// service listening on a Unix domain socket.
type HTTPFetcher struct {
	client *http.Client
	base   string
}

// NewHTTPFetcher creates a fetcher for endpoint. Request paths passed
// to Fetch are appended to the endpoint's path.
func NewHTTPFetcher(endpoint string) (*HTTPFetcher, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint %q: %w", endpoint, err)
	}

	switch parsed.Scheme {
	case "http", "https":
		if parsed.Host == "" {
			return nil, fmt.Errorf("endpoint %q has no host", endpoint)
		}
		return &HTTPFetcher{
			client: &http.Client{Transport: newTransport(nil)},
			base:   strings.TrimRight(endpoint, "/"),
		}, nil
	case "unix":
		socketPath := parsed.Path
		if socketPath == "" {
			return nil, fmt.Errorf("endpoint %q has no socket path", endpoint)
		}
		dial := func(ctx context.Context, network, address string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(ctx, "unix", socketPath)
		}
		return &HTTPFetcher{
			client: &http.Client{Transport: newTransport(dial)},
			base:   "http://localhost",
		}, nil
	default:
		return nil, fmt.Errorf("endpoint %q: unsupported scheme %q (want http, https or unix)", endpoint, parsed.Scheme)
	}
}

func newTransport(dial func(context.Context, string, string) (net.Conn, error)) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// Setting Accept-Encoding ourselves disables net/http's transparent
	// gzip handling; DecodedBody takes over.
	transport.DisableCompression = true
	if dial != nil {
		transport.DialContext = dial
		transport.Proxy = nil
	}
	return transport
}

// Fetch issues GET base+path. The context bounds the whole exchange,
// including reading the body.
func (fetcher *HTTPFetcher) Fetch(ctx context.Context, path string) (Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, fetcher.base+path, nil)
	if err != nil {
		return Response{}, fmt.Errorf("building request: %w", err)
	}
	request.Header.Set("Accept", acceptHeader)
	request.Header.Set("Accept-Encoding", netutil.AcceptEncoding)
	request.Header.Set("User-Agent", version.UserAgent())

	response, err := fetcher.client.Do(request)
	if err != nil {
		return Response{}, describeTransportError(err)
	}
	defer response.Body.Close()

	result := Response{
		Status:      response.StatusCode,
		ContentType: response.Header.Get("Content-Type"),
	}

	body, err := netutil.DecodedBody(response.Header.Get("Content-Encoding"), response.Body)
	if err != nil {
		return Response{}, fmt.Errorf("HTTP %d: %w", response.StatusCode, err)
	}
	defer body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		result.Body = []byte(netutil.ErrorBody(body))
		return result, nil
	}

	result.Body, err = netutil.ReadResponse(body)
	if err != nil {
		return Response{}, fmt.Errorf("reading body: %w", describeTransportError(err))
	}
	return result, nil
}

// describeTransportError strips the method and URL that *url.Error
// prepends; the endpoint is already known to the reader of the
// message.
func describeTransportError(err error) error {
	var urlError *url.Error
	if errors.As(err, &urlError) {
		return urlError.Err
	}
	return err
}
