package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

// mode tracks which interaction state the model is in.
type mode int

const (
	modeBrowse mode = iota
	modeEdit
	modeFeedback
)

// styles holds the lipgloss styles used by the review view.
type styles struct {
	Title    lipgloss.Style
	Tab      lipgloss.Style
	TabOn    lipgloss.Style
	Muted    lipgloss.Style
	Footer   lipgloss.Style
	Modified lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Tab:      lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")).Padding(0, 1),
		TabOn:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CDD6F4")).Padding(0, 1).Underline(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Footer:   lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		Modified: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	}
}

// reviewModel is the Elm-architecture model for the review loop.
type reviewModel struct {
	chain    []domain.DocumentVersion
	selected int
	mode     mode

	viewport viewport.Model
	editor   textarea.Model
	styles   styles

	// edits holds per-version edited text, keyed by chain index.
	edits map[int]string

	width  int
	height int
	ready  bool

	accepted  bool
	finalText string
	finalType domain.VersionType

	// regen is set when the user asked for another editor pass instead
	// of accepting a version.
	regen    bool
	feedback string
}

// Ensure reviewModel implements tea.Model.
var _ tea.Model = reviewModel{}

func newReviewModel(chain []domain.DocumentVersion) reviewModel {
	editor := textarea.New()
	editor.CharLimit = 0

	return reviewModel{
		chain:    chain,
		selected: len(chain) - 1, // start on the last AI stage
		viewport: viewport.New(80, 20),
		editor:   editor,
		styles:   defaultStyles(),
		edits:    make(map[int]string),
	}
}

// Init implements tea.Model.
func (m reviewModel) Init() tea.Cmd {
	return tea.SetWindowTitle("inkwell - review")
}

// Update implements tea.Model.
func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 1)
		m.editor.SetWidth(msg.Width)
		m.editor.SetHeight(max(msg.Height-4, 1))
		if !m.ready {
			m.viewport.SetContent(m.currentText())
			m.ready = true
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeFeedback:
			return m.updateFeedback(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// updateBrowse handles keys while browsing the chain.
func (m reviewModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "left", "h", "shift+tab":
		if m.selected > 0 {
			m.selected--
			m.viewport.SetContent(m.currentText())
			m.viewport.GotoTop()
		}
		return m, nil

	case "right", "l", "tab":
		if m.selected < len(m.chain)-1 {
			m.selected++
			m.viewport.SetContent(m.currentText())
			m.viewport.GotoTop()
		}
		return m, nil

	case "e":
		m.mode = modeEdit
		m.editor.SetValue(m.currentText())
		m.editor.Focus()
		return m, textarea.Blink

	case "g":
		m.mode = modeFeedback
		m.editor.SetValue("")
		m.editor.Focus()
		return m, textarea.Blink

	case "r":
		// Revert discards the hand edit for the selected version.
		delete(m.edits, m.selected)
		m.viewport.SetContent(m.currentText())
		return m, nil

	case "a", "enter":
		m.accepted = true
		m.finalText = m.currentText()
		if _, edited := m.edits[m.selected]; edited {
			m.finalType = domain.VersionManualEdit
		} else {
			m.finalType = m.chain[m.selected].Type
		}
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// updateEdit handles keys while hand-editing a version.
func (m reviewModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.editor.Blur()
		return m, nil

	case "ctrl+s":
		text := m.editor.Value()
		if strings.TrimSpace(text) != "" && text != m.chain[m.selected].Content {
			m.edits[m.selected] = text
		}
		m.mode = modeBrowse
		m.editor.Blur()
		m.viewport.SetContent(m.currentText())
		return m, nil

	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// updateFeedback handles keys while writing regeneration feedback.
func (m reviewModel) updateFeedback(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.editor.Blur()
		return m, nil

	case "ctrl+s":
		if text := strings.TrimSpace(m.editor.Value()); text != "" {
			m.regen = true
			m.feedback = text
			return m, tea.Quit
		}
		m.mode = modeBrowse
		m.editor.Blur()
		return m, nil

	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m reviewModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Review: " + m.chain[0].URL))
	b.WriteByte('\n')
	b.WriteString(m.renderTabs())
	b.WriteByte('\n')

	switch m.mode {
	case modeEdit:
		b.WriteString(m.editor.View())
		b.WriteByte('\n')
		b.WriteString(m.styles.Footer.Render("ctrl+s save edit | esc cancel"))
	case modeFeedback:
		b.WriteString(m.editor.View())
		b.WriteByte('\n')
		b.WriteString(m.styles.Footer.Render(
			"describe what to change, then ctrl+s to regenerate | esc cancel"))
	default:
		b.WriteString(m.viewport.View())
		b.WriteByte('\n')
		b.WriteString(m.styles.Footer.Render(
			"←/→ switch version | a accept | e edit | g regenerate | r revert edit | q quit"))
	}
	return b.String()
}

// renderTabs draws one tab per version in the chain.
func (m reviewModel) renderTabs() string {
	tabs := make([]string, 0, len(m.chain))
	for i, v := range m.chain {
		label := string(v.Type)
		if _, edited := m.edits[i]; edited {
			label = m.styles.Modified.Render(label + "*")
		}
		if i == m.selected {
			tabs = append(tabs, m.styles.TabOn.Render(label))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) +
		m.styles.Muted.Render(fmt.Sprintf("  %d/%d", m.selected+1, len(m.chain)))
}

// currentText returns the selected version's text, preferring a hand edit.
func (m reviewModel) currentText() string {
	if text, ok := m.edits[m.selected]; ok {
		return text
	}
	return m.chain[m.selected].Content
}
