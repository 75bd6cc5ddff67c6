// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// The debug log is a plain append-only file under the config directory.
// It exists so that network failures and best-effort cleanup errors have
// somewhere to go without disturbing the TUI; stdout belongs to Bubble Tea.

var (
	debugMu     sync.Mutex
	debugLogger *log.Logger
	debugFile   *os.File
)

// InitDebugLog opens (or creates) the debug log file at path and routes
// DebugLog output to it. Calling it twice replaces the previous sink.
func InitDebugLog(path string) error {
	debugMu.Lock()
	defer debugMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open debug log: %w", err)
	}

	if debugFile != nil {
		debugFile.Close()
	}
	debugFile = f
	debugLogger = log.New(f, "", log.LstdFlags)
	return nil
}

// CloseDebugLog flushes and closes the debug log sink. Safe to call when
// no sink was ever opened.
func CloseDebugLog() {
	debugMu.Lock()
	defer debugMu.Unlock()
	if debugFile != nil {
		debugFile.Close()
		debugFile = nil
		debugLogger = nil
	}
}

// DebugLog writes a formatted line to the debug log. If no sink is
// configured the line is dropped; the client must keep working without
// a writable home directory.
func DebugLog(format string, args ...interface{}) {
	debugMu.Lock()
	defer debugMu.Unlock()
	if debugLogger != nil {
		debugLogger.Printf(format, args...)
	}
}

// debugWriter exposes the sink as an io.Writer for packages that want a
// *log.Logger of their own.
type debugWriter struct{}

func (debugWriter) Write(p []byte) (int, error) {
	debugMu.Lock()
	defer debugMu.Unlock()
	if debugFile == nil {
		return len(p), nil
	}
	return debugFile.Write(p)
}

// DebugWriter returns a writer backed by the debug log sink.
func DebugWriter() io.Writer {
	return debugWriter{}
}
