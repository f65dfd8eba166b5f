// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the rollout
// monitor.
//
// Configuration is loaded from a single file specified by either the
// BUREAU_MONITOR_CONFIG environment variable (via [Load]) or a
// --config flag (via [LoadFile]). There is no file discovery. Running
// without a config file uses [Default]; command-line flags override
// whatever was loaded.
//
// The file may contain environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Production disables the built-in
// demonstration dataset unless its section enables it.
//
// ${VAR} and ${VAR:-default} are expanded in source.endpoint and
// substitute.file after loading.
//
// This package depends on no other monitor packages.
package config
