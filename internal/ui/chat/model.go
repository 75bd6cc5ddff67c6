// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/auth"
	session "github.com/jeranaias/docchat-tui/internal/chat"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/ui/components"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// requestTimeout bounds a single API round trip issued by the view.
// Chat requests against large documents can be slow, so this is
// deliberately generous.
const requestTimeout = 120 * time.Second

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the document chat view.
type Model struct {
	theme *styles.Theme

	// Session state machine and API access
	machine *session.Machine
	client  *api.Client
	store   *auth.Store

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	logPanel  *components.LogPanel
	statusBar *components.StatusBar
	toasts    *components.ToastManager

	// Markdown rendering for assistant turns
	renderer *glamour.TermRenderer
	wordWrap int

	// Retrieval log visibility. When true every assistant turn shows
	// its log panel inline.
	showLogs bool

	// Upload prompt state. While active the input collects a file path
	// instead of a question.
	uploadMode bool

	// True while an upload request is in flight.
	uploading bool

	// True while a toast tick loop is running.
	ticking bool

	width  int
	height int
}

// New creates the chat view.
func New(machine *session.Machine, client *api.Client, store *auth.Store, theme *styles.Theme, cfg *config.Config) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Upload a document to start chatting (ctrl+u)"
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	wrap := 0
	showLogs := false
	if cfg != nil {
		wrap = cfg.UI.WordWrap
		showLogs = cfg.UI.ShowLogs
	}

	m := Model{
		theme:     theme,
		machine:   machine,
		client:    client,
		store:     store,
		viewport:  vp,
		input:     ti,
		spinner:   sp,
		logPanel:  components.NewLogPanel(theme),
		statusBar: components.NewStatusBar(theme),
		toasts:    components.NewToastManager(),
		wordWrap:  wrap,
		showLogs:  showLogs,
	}
	m.rebuildRenderer(80)
	return m
}

// Init starts the input cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// rebuildRenderer recreates the markdown renderer for the given width.
// Glamour renderers bake in their wrap width, so a resize needs a new one.
func (m *Model) rebuildRenderer(width int) {
	wrap := m.wordWrap
	if wrap <= 0 || wrap > width-4 {
		wrap = width - 4
	}
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// renderMarkdown renders assistant content, falling back to the raw
// text when glamour is unavailable.
func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}
