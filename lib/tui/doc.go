// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides shared terminal user interface pieces for the
// monitor: the color theme, the scrollbar, fzf-backed fuzzy matching,
// and the heat tracker that makes recently changed rows glow.
//
// The interactive model itself lives in lib/monitorui; this package
// holds nothing that knows about rollouts beyond their display
// category.
package tui
