// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d", cfg.Server.TimeoutSecs)
	}
	if !cfg.Storage.ArchiveEnabled {
		t.Error("archive should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
version = "1.0.0"

[server]
base_url = "https://docs.example.com"
timeout_secs = 30

[ui]
theme = "light"
show_logs = true

[storage]
archive_enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.BaseURL != "https://docs.example.com" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.Theme != "light" || !cfg.UI.ShowLogs {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if cfg.Storage.ArchiveEnabled {
		t.Error("archive_enabled = true, want false")
	}
	// Unset fields fall back to defaults.
	if cfg.Server.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", cfg.Server.MaxRetries)
	}
}

func TestLoadFromPath_PartialFileGetsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\ncompact_mode = true\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q, want default", cfg.Server.BaseURL)
	}
	if !cfg.UI.CompactMode {
		t.Error("compact_mode not decoded")
	}
}

func TestLoadFromPath_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[server\nbase_url = "), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("malformed TOML should fail")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DOCCHAT_BASE_URL", "https://env.example.com")
	t.Setenv("DOCCHAT_TIMEOUT_SECS", "15")
	t.Setenv("DOCCHAT_THEME", "auto")
	t.Setenv("DOCCHAT_ARCHIVE", "false")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.TimeoutSecs != 15 {
		t.Errorf("TimeoutSecs = %d", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	if cfg.Storage.ArchiveEnabled {
		t.Error("archive override not applied")
	}
}

func TestApplyEnvOverrides_IgnoresGarbage(t *testing.T) {
	t.Setenv("DOCCHAT_TIMEOUT_SECS", "not-a-number")
	t.Setenv("DOCCHAT_ARCHIVE", "maybe")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d, want default kept", cfg.Server.TimeoutSecs)
	}
	if !cfg.Storage.ArchiveEnabled {
		t.Error("unparseable bool should keep default")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "relative base url",
			mutate:  func(c *Config) { c.Server.BaseURL = "localhost:8000" },
			wantErr: "server.base_url",
		},
		{
			name:    "bad scheme",
			mutate:  func(c *Config) { c.Server.BaseURL = "ftp://host" },
			wantErr: "server.base_url",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Server.TimeoutSecs = 0 },
			wantErr: "server.timeout_secs",
		},
		{
			name:    "excessive retries",
			mutate:  func(c *Config) { c.Server.MaxRetries = 50 },
			wantErr: "server.max_retries",
		},
		{
			name:    "unknown theme",
			mutate:  func(c *Config) { c.UI.Theme = "neon" },
			wantErr: "ui.theme",
		},
		{
			name:    "negative wrap",
			mutate:  func(c *Config) { c.UI.WordWrap = -1 },
			wantErr: "ui.word_wrap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "https://saved.example.com"
	cfg.UI.ShowLogs = true

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Server.BaseURL != "https://saved.example.com" {
		t.Errorf("BaseURL = %q", loaded.Server.BaseURL)
	}
	if !loaded.UI.ShowLogs {
		t.Error("show_logs not round-tripped")
	}
}

func TestWatcher_ReloadsOnRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// Replace via rename, the way editors save. Only the parent
	// directory watch sees this.
	next := Default()
	next.UI.ShowLogs = true
	tmp := filepath.Join(dir, "config.toml.tmp")
	if err := SaveTOML(next, tmp); err != nil {
		t.Fatalf("SaveTOML tmp: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if !cfg.UI.ShowLogs {
			t.Error("reloaded config missing the change")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after replacing the config file")
	}
}
