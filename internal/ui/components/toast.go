// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast (cyan color)
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast (rose/red color)
	ToastKindError
	// ToastKindSuccess is a success toast (emerald color)
	ToastKindSuccess
)

// DefaultToastDuration is the default auto-dismiss duration for status toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts (longer to read).
const ErrorToastDuration = 8 * time.Second

// =============================================================================
// TOAST
// =============================================================================

// Toast represents a non-blocking notification. Unlike modal errors,
// toasts appear in the corner and auto-dismiss.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the toast should be dismissed.
func (t *Toast) IsExpired() bool {
	return time.Since(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager manages the visible toast stack.
type ToastManager struct {
	mu        sync.Mutex
	toasts    []Toast
	nextID    int
	maxToasts int
}

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{
		toasts:    make([]Toast, 0),
		nextID:    1,
		maxToasts: 5,
	}
}

// Error queues an error toast and returns its ID.
func (m *ToastManager) Error(message string) int {
	return m.add(message, ToastKindError, ErrorToastDuration)
}

// Status queues an informational toast and returns its ID.
func (m *ToastManager) Status(message string) int {
	return m.add(message, ToastKindStatus, DefaultToastDuration)
}

// Success queues a success toast and returns its ID.
func (m *ToastManager) Success(message string) int {
	return m.add(message, ToastKindSuccess, DefaultToastDuration)
}

func (m *ToastManager) add(message string, kind ToastKind, duration time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.toasts = append(m.toasts, Toast{
		ID:        id,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	// Oldest toasts fall off when the stack overflows.
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[len(m.toasts)-m.maxToasts:]
	}
	return id
}

// Dismiss removes a toast by ID.
func (m *ToastManager) Dismiss(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Prune drops expired toasts and reports whether any remain visible.
func (m *ToastManager) Prune() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	alive := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.IsExpired() {
			alive = append(alive, t)
		}
	}
	m.toasts = alive
	return len(m.toasts) > 0
}

// Visible returns a copy of the active toasts, oldest first.
func (m *ToastManager) Visible() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// =============================================================================
// RENDERING
// =============================================================================

// RenderToasts renders the toast stack for the given width.
func RenderToasts(theme *styles.Theme, toasts []Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}

	var rendered []string
	for _, t := range toasts {
		var border lipgloss.AdaptiveColor
		var prefix string
		switch t.Kind {
		case ToastKindError:
			border = styles.Rose
			prefix = styles.StatusIndicators.Error
		case ToastKindSuccess:
			border = styles.Emerald
			prefix = styles.StatusIndicators.Success
		default:
			border = styles.Cyan
			prefix = styles.StatusIndicators.Info
		}

		box := lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			MaxWidth(width)
		rendered = append(rendered, box.Render(prefix+" "+t.Message))
	}
	return strings.Join(rendered, "\n")
}
