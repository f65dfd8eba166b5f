// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rollout

import "sort"

// MessageKind distinguishes the two reserved narrative keys.
type MessageKind string

const (
	MessageInfo  MessageKind = InfoKey
	MessageError MessageKind = ErrorKey
)

// SystemMessage is a narrative message carried in a record's files
// under a reserved key.
type SystemMessage struct {
	Kind    MessageKind
	Content string
}

// FilesView is the display partition of a record's files.
type FilesView struct {
	// Files lists the real file paths in byte-wise ascending order.
	// Reserved keys never appear here.
	Files []string

	// Messages holds the non-empty reserved entries, info first.
	Messages []SystemMessage
}

// ProjectFiles partitions a files map into sorted file paths and
// system messages. The input map is not modified.
func ProjectFiles(files map[string]string) FilesView {
	var view FilesView
	for path := range files {
		if path == InfoKey || path == ErrorKey {
			continue
		}
		view.Files = append(view.Files, path)
	}
	sort.Strings(view.Files)

	if content := files[InfoKey]; content != "" {
		view.Messages = append(view.Messages, SystemMessage{Kind: MessageInfo, Content: content})
	}
	if content := files[ErrorKey]; content != "" {
		view.Messages = append(view.Messages, SystemMessage{Kind: MessageError, Content: content})
	}
	return view
}

// FileCursor remembers which file of a rollout the user is viewing.
// When the remembered path disappears from the file list, the cursor
// falls back to the first file.
type FileCursor struct {
	path string
}

// Resolve returns the path to display for the given file list, or ""
// when the list is empty. It updates the remembered path when it has
// to fall back.
func (cursor *FileCursor) Resolve(files []string) string {
	if len(files) == 0 {
		return ""
	}
	for _, path := range files {
		if path == cursor.path {
			return path
		}
	}
	cursor.path = files[0]
	return cursor.path
}

// Choose records an explicit choice. It reports false and leaves the
// cursor unchanged when path is not in files.
func (cursor *FileCursor) Choose(path string, files []string) bool {
	for _, candidate := range files {
		if candidate == path {
			cursor.path = path
			return true
		}
	}
	return false
}

// Move steps the cursor by delta positions within files, clamped to
// the ends of the list, and returns the new path.
func (cursor *FileCursor) Move(delta int, files []string) string {
	if len(files) == 0 {
		return ""
	}
	current := cursor.Resolve(files)
	index := 0
	for i, path := range files {
		if path == current {
			index = i
			break
		}
	}
	index += delta
	if index < 0 {
		index = 0
	}
	if index >= len(files) {
		index = len(files) - 1
	}
	cursor.path = files[index]
	return cursor.path
}
