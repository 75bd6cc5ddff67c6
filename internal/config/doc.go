// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for docchat.
//
// Configuration is read from ~/.docchat/config.toml with built-in
// defaults and DOCCHAT_* environment variable overrides applied on top.
// A Watcher can reload the file live while the TUI is running.
package config
