// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rollout

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/monitor/lib/codec"
)

//go:embed builtin.jsonc
var builtinSource []byte

// Builtin returns the embedded substitute dataset: a small, fixed set
// of rollouts that lets the monitor render something meaningful when
// the endpoint has never answered. Each call returns a fresh copy.
func Builtin() *Snapshot {
	snapshot, err := parseJSONC(builtinSource)
	if err != nil {
		panic("rollout: embedded substitute dataset is invalid: " + err.Error())
	}
	return snapshot
}

// LoadFile reads a substitute dataset from disk. The format follows
// the extension: .jsonc and .json (comments and trailing commas
// allowed in both), .yaml/.yml, or .cbor. The content must have the
// same shape as an endpoint response.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading substitute dataset: %w", err)
	}

	var snapshot *Snapshot
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		snapshot, err = parseJSONC(data)
	case ".yaml", ".yml":
		snapshot, err = parseYAML(data)
	case ".cbor":
		snapshot, err = Decode(codec.ContentType, data)
	default:
		return nil, fmt.Errorf("substitute dataset %s: unsupported extension %q (want .json, .jsonc, .yaml, .yml or .cbor)", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("substitute dataset %s: %w", path, err)
	}
	return snapshot, nil
}

func parseJSONC(data []byte) (*Snapshot, error) {
	var tree any
	if err := json.Unmarshal(jsonc.ToJSON(data), &tree); err != nil {
		return nil, &ParseError{Reason: "invalid JSON", Err: err}
	}
	return normalize(tree)
}

func parseYAML(data []byte) (*Snapshot, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, &ParseError{Reason: "invalid YAML", Err: err}
	}
	return normalize(tree)
}
