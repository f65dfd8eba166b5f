// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package monitorui is the interactive terminal view of the rollout
// monitor, built on bubbletea.
//
// The left pane lists rollouts in monitor.Order's ranking with a
// category badge, short id, status and start age. The right pane shows
// the selected rollout: its container, start time, info and error
// messages, the file list and the chosen file's content. Markdown
// files are rendered with goldmark; other files are syntax-highlighted
// with chroma by file name.
//
// The [Model] owns the monitor.Session. Poll outcomes reach it as
// bubbletea messages through a listener command that blocks on the
// poller's outcome channel, so Session is only ever touched from the
// update loop. Pressing r calls RefreshNow on the source.
//
// Header indicators distinguish the three data states: LIVE, STALE
// (real data that is no longer confirmed fresh) and SUBSTITUTE DATA
// (placeholder content that never came from the source).
package monitorui
