// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP response helpers for the monitor's
// snapshot client.
//
// Body reads are bounded at MaxResponseSize so that a misbehaving
// server cannot exhaust memory. DecodedBody undoes the zstd or gzip
// Content-Encoding the client negotiates via AcceptEncoding.
package netutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// MaxResponseSize is the bound on snapshot body reads: 256 MB. This
// applies to the decoded size, so a small compressed body cannot
// expand past it either.
const MaxResponseSize int64 = 256 << 20

// AcceptEncoding is the Accept-Encoding header value matching the
// encodings DecodedBody understands.
const AcceptEncoding = "zstd, gzip"

// ReadResponse reads a response body up to MaxResponseSize bytes. A
// body longer than the limit is an error rather than a silent
// truncation, since a truncated snapshot would surface as a confusing
// parse failure.
func ReadResponse(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response body exceeds %d bytes", MaxResponseSize)
	}
	return data, nil
}

// DecodedBody wraps body with a decoder for the given Content-Encoding
// header value. An empty value or "identity" returns body unchanged.
// The caller closes the returned reader and, separately, the original
// body.
func DecodedBody(contentEncoding string, body io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return io.NopCloser(body), nil
	case "gzip", "x-gzip":
		reader, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("opening gzip body: %w", err)
		}
		return reader, nil
	case "zstd":
		decoder, err := zstd.NewReader(body, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("opening zstd body: %w", err)
		}
		return decoder.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unsupported Content-Encoding %q", contentEncoding)
	}
}

// ErrorBody reads an HTTP error response body and returns a short
// single-line excerpt for diagnostics. Read errors are ignored: a
// partial or empty body is still useful in a log line.
func ErrorBody(body io.Reader) string {
	const excerptLimit = 512
	data, _ := io.ReadAll(io.LimitReader(body, excerptLimit))
	return strings.Join(strings.Fields(string(data)), " ")
}
