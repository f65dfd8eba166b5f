// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the monitor's CBOR configuration.
//
// Snapshots normally travel as JSON. A snapshot endpoint may instead
// answer with Content-Type [ContentType] and a CBOR body; the decoder
// here turns such a body into the same generic tree that the JSON path
// produces (string-keyed maps), so a single validator handles both.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same logical record always produces identical bytes, which is what
// lets rollout fingerprints hash the encoding directly.
//
// Types that travel as both JSON and CBOR carry only `json` tags;
// fxamacker/cbor falls back to them when `cbor` tags are absent.
package codec
