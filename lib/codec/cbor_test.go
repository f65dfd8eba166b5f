// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

type sampleRecord struct {
	Status    string            `json:"status"`
	StartTime float64           `json:"start_time"`
	Files     map[string]string `json:"files"`
}

func TestMarshalDeterministicMapOrder(t *testing.T) {
	record := sampleRecord{
		Status:    "Active",
		StartTime: 1700000000.5,
		Files: map[string]string{
			"z.log":  "last",
			"a.txt":  "first",
			"m/n.go": "middle",
			"info":   "note",
		},
	}

	first, err := Marshal(record)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 20 {
		again, err := Marshal(record)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding is not deterministic: %x != %x", first, again)
		}
	}
}

func TestUnmarshalUsesStringKeyedMaps(t *testing.T) {
	data, err := Marshal(map[string]any{
		"active_id": "B",
		"history": map[string]any{
			"B": map[string]any{"status": "Active"},
		},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	root, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("root decoded as %T, want map[string]any", decoded)
	}
	history, ok := root["history"].(map[string]any)
	if !ok {
		t.Fatalf("history decoded as %T, want map[string]any", root["history"])
	}
	if _, ok := history["B"].(map[string]any); !ok {
		t.Fatalf("history entry decoded as %T, want map[string]any", history["B"])
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var decoded any
	if err := Unmarshal([]byte{0xff, 0x00, 0x13}, &decoded); err == nil {
		t.Fatal("expected error decoding malformed CBOR")
	}
}
