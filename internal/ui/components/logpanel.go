// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// =============================================================================
// LOG PANEL
// =============================================================================

// LogPanel renders the diagnostic log blob attached to an answer. The
// panel is collapsed by default; when expanded it shows the server's
// retrieval trace with best-effort syntax highlighting.
type LogPanel struct {
	theme *styles.Theme
	// MaxLines caps the expanded panel height (0 = unlimited).
	MaxLines int
}

// NewLogPanel creates a log panel renderer.
func NewLogPanel(theme *styles.Theme) *LogPanel {
	return &LogPanel{theme: theme, MaxLines: 24}
}

// RenderCollapsed renders the one-line hint shown under answers that
// carry a log entry.
func (p *LogPanel) RenderCollapsed() string {
	return p.theme.LogHint.Render("[ctrl+l] show retrieval logs")
}

// RenderExpanded renders the full log panel for a blob.
func (p *LogPanel) RenderExpanded(blob string, width int) string {
	lines := strings.Split(highlightLog(blob), "\n")
	truncated := false
	if p.MaxLines > 0 && len(lines) > p.MaxLines {
		lines = lines[:p.MaxLines]
		truncated = true
	}

	var sb strings.Builder
	sb.WriteString(p.theme.LogPanelHeader.Render("Retrieval logs"))
	sb.WriteString("\n")
	sb.WriteString(strings.Join(lines, "\n"))
	if truncated {
		sb.WriteString("\n")
		sb.WriteString(p.theme.LogHint.Render("(truncated)"))
	}

	return p.theme.LogPanel.MaxWidth(width).Render(sb.String())
}

// highlightLog applies best-effort highlighting to a log blob. Server
// traces are unstructured text; chroma's analyser picks a lexer when it
// can and the blob passes through unchanged when it cannot.
func highlightLog(blob string) string {
	lexer := lexers.Analyse(blob)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, blob)
	if err != nil {
		return blob
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return blob
	}
	return buf.String()
}
