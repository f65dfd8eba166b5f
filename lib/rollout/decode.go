// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rollout

import (
	"encoding/json"
	"fmt"
	"math"
	"mime"
	"sort"

	"github.com/bureau-foundation/monitor/lib/codec"
)

// ParseError reports a body that decoded but does not have the shape
// of a snapshot, or did not decode at all. The poller reports it as a
// parse failure, distinct from transport and HTTP failures.
type ParseError struct {
	// Path locates the offending value ("history.abc.start_time").
	// Empty when the body as a whole is unusable.
	Path string

	// Reason describes the problem.
	Reason string

	// Err is the underlying decoder error, if any.
	Err error
}

func (e *ParseError) Error() string {
	message := e.Reason
	if e.Path != "" {
		message = e.Path + ": " + e.Reason
	}
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

func (e *ParseError) Unwrap() error { return e.Err }

// Decode parses a snapshot body. contentType selects the codec: CBOR
// for application/cbor, JSON for everything else (servers frequently
// omit or mislabel JSON). Structural problems are reported as
// *ParseError. Unknown fields are ignored.
func Decode(contentType string, body []byte) (*Snapshot, error) {
	var tree any
	if isCBOR(contentType) {
		if err := codec.Unmarshal(body, &tree); err != nil {
			return nil, &ParseError{Reason: "invalid CBOR", Err: err}
		}
	} else {
		if err := json.Unmarshal(body, &tree); err != nil {
			return nil, &ParseError{Reason: "invalid JSON", Err: err}
		}
	}
	return normalize(tree)
}

func isCBOR(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == codec.ContentType
}

// normalize validates a generic decoded tree (string-keyed maps,
// numbers, strings) and converts it into a Snapshot.
func normalize(tree any) (*Snapshot, error) {
	root, ok := tree.(map[string]any)
	if !ok {
		return nil, &ParseError{Reason: fmt.Sprintf("snapshot is %s, not an object", describeKind(tree))}
	}

	snapshot := &Snapshot{History: make(map[string]Record)}

	switch activeID := root["active_id"].(type) {
	case nil:
	case string:
		snapshot.ActiveID = activeID
	default:
		return nil, &ParseError{Path: "active_id", Reason: fmt.Sprintf("is %s, not a string or null", describeKind(activeID))}
	}

	rawHistory, present := root["history"]
	if !present || rawHistory == nil {
		return snapshot, nil
	}
	history, ok := rawHistory.(map[string]any)
	if !ok {
		return nil, &ParseError{Path: "history", Reason: fmt.Sprintf("is %s, not a mapping", describeKind(rawHistory))}
	}

	// Validate in sorted order so the reported path is stable when a
	// body has several problems.
	ids := make([]string, 0, len(history))
	for id := range history {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		record, err := normalizeRecord("history."+id, history[id])
		if err != nil {
			return nil, err
		}
		snapshot.History[id] = record
	}
	return snapshot, nil
}

func normalizeRecord(path string, value any) (Record, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return Record{}, &ParseError{Path: path, Reason: fmt.Sprintf("is %s, not an object", describeKind(value))}
	}

	var record Record
	var err error

	if record.ContainerID, err = stringField(path, fields, "container_id", "container_ref"); err != nil {
		return Record{}, err
	}
	if record.Status, err = stringField(path, fields, "status"); err != nil {
		return Record{}, err
	}
	if record.LastUpdated, err = stringField(path, fields, "last_updated"); err != nil {
		return Record{}, err
	}
	if record.StartTime, err = numberField(path, fields, "start_time", "started_at"); err != nil {
		return Record{}, err
	}

	record.Files = make(map[string]string)
	switch files := fields["files"].(type) {
	case nil:
	case map[string]any:
		for name, content := range files {
			switch text := content.(type) {
			case nil:
				record.Files[name] = ""
			case string:
				record.Files[name] = text
			default:
				return Record{}, &ParseError{
					Path:   path + ".files." + name,
					Reason: fmt.Sprintf("is %s, not a string", describeKind(content)),
				}
			}
		}
	default:
		return Record{}, &ParseError{Path: path + ".files", Reason: fmt.Sprintf("is %s, not a mapping", describeKind(files))}
	}

	return record, nil
}

// stringField returns the first present key among names. Absent and
// null values read as "".
func stringField(path string, fields map[string]any, names ...string) (string, error) {
	for _, name := range names {
		value, present := fields[name]
		if !present {
			continue
		}
		switch typed := value.(type) {
		case nil:
			return "", nil
		case string:
			return typed, nil
		default:
			return "", &ParseError{Path: path + "." + name, Reason: fmt.Sprintf("is %s, not a string", describeKind(value))}
		}
	}
	return "", nil
}

// numberField returns the first present key among names as float64.
// Absent and null values read as 0.
func numberField(path string, fields map[string]any, names ...string) (float64, error) {
	for _, name := range names {
		value, present := fields[name]
		if !present {
			continue
		}
		var number float64
		switch typed := value.(type) {
		case nil:
			return 0, nil
		case float64:
			number = typed
		case float32:
			number = float64(typed)
		case int:
			number = float64(typed)
		case int64:
			number = float64(typed)
		case uint64:
			number = float64(typed)
		default:
			return 0, &ParseError{Path: path + "." + name, Reason: fmt.Sprintf("is %s, not a number", describeKind(value))}
		}
		if math.IsNaN(number) || math.IsInf(number, 0) {
			return 0, &ParseError{Path: path + "." + name, Reason: "is not a finite number"}
		}
		return number, nil
	}
	return 0, nil
}

// describeKind names the shape of a decoded value for error messages.
func describeKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case float64, float32, int, int64, uint64:
		return "a number"
	default:
		return fmt.Sprintf("%T", value)
	}
}
