package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aallbrig/hawkbot/config"
	"github.com/aallbrig/hawkbot/models"
	"github.com/aallbrig/hawkbot/render"
)

// HelpPaneModel shows the help bundle of one command. The content is
// scrollable when the pane has focus.
type HelpPaneModel struct {
	title        string
	cfg          *config.Config
	renderer     *render.Renderer
	width        int
	height       int
	scrollOffset int
	focused      bool
	lines        []string
}

func NewHelpPaneModel(cfg *config.Config) *HelpPaneModel {
	opts := render.DefaultOptions()
	opts.NoColor = cfg.NoColor
	opts.Colors = cfg.Colors
	return &HelpPaneModel{cfg: cfg, renderer: render.New(opts)}
}

// SetHelp shows a command's help bundle.
func (h *HelpPaneModel) SetHelp(help models.CommandHelp) {
	if h.title == help.Name && len(h.lines) > 0 {
		return
	}
	var sb strings.Builder
	_ = h.renderer.Help(&sb, help)
	h.setContent(help.Name, sb.String())
}

// SetOverview lists the top-level commands of the grammar tree.
func (h *HelpPaneModel) SetOverview(root *models.Node) {
	if h.title == root.Name && len(h.lines) > 0 {
		return
	}
	var sb strings.Builder
	sb.WriteString("Available commands\n\n")
	for _, child := range root.Children {
		line := "  " + child.Name
		if len(child.Aliases) > 0 {
			line += " (" + strings.Join(child.Aliases, ", ") + ")"
		}
		sb.WriteString(line + "\n")
		if child.Description != "" {
			sb.WriteString("      " + child.Description + "\n")
		}
	}
	h.setContent(root.Name, sb.String())
}

func (h *HelpPaneModel) setContent(title, raw string) {
	h.title = title
	h.scrollOffset = 0
	h.lines = strings.Split(strings.TrimRight(raw, "\n"), "\n")
}

// Title is the name of the command currently shown.
func (h *HelpPaneModel) Title() string { return h.title }

func (h *HelpPaneModel) SetSize(w, hi int) {
	h.width = w
	h.height = hi
}

func (h *HelpPaneModel) SetFocused(f bool) { h.focused = f }

func (h *HelpPaneModel) ScrollUp(n int) {
	h.scrollOffset = max(h.scrollOffset-n, 0)
}

func (h *HelpPaneModel) ScrollDown(n int) {
	h.scrollOffset = min(h.scrollOffset+n, h.maxOffset())
}

func (h *HelpPaneModel) PageUp()   { h.ScrollUp(h.viewportLines()) }
func (h *HelpPaneModel) PageDown() { h.ScrollDown(h.viewportLines()) }
func (h *HelpPaneModel) Top()      { h.scrollOffset = 0 }
func (h *HelpPaneModel) Bottom()   { h.scrollOffset = h.maxOffset() }

func (h *HelpPaneModel) maxOffset() int {
	return max(len(h.lines)-h.viewportLines(), 0)
}

func (h *HelpPaneModel) viewportLines() int {
	return max(h.height-3, 1)
}

func (h *HelpPaneModel) View(w, hi int) string {
	h.width = w
	h.height = hi

	vp := h.viewportLines()
	end := min(h.scrollOffset+vp, len(h.lines))
	visible := make([]string, vp)
	copy(visible, h.lines[h.scrollOffset:end])

	title := "Help"
	if h.title != "" {
		title += ": " + h.title
	}
	if len(h.lines) > vp {
		pct := min((h.scrollOffset+vp)*100/len(h.lines), 100)
		title += fmt.Sprintf(" [%d%%]", pct)
	}

	borderColor := lipgloss.Color("#555555")
	titleStyle := lipgloss.NewStyle().Bold(true)
	if h.focused {
		borderColor = lipgloss.Color(h.cfg.Colors.Selected)
		titleStyle = titleStyle.Foreground(borderColor)
	}

	innerW := w - 4
	for i, line := range visible {
		visible[i] = hardWrap(line, innerW)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(max(w-2, 1)).
		Height(max(hi-2, 1)).
		Render(titleStyle.Render(title) + "\n" + strings.Join(visible, "\n"))
}

func hardWrap(s string, maxW int) string {
	if maxW <= 0 || lipgloss.Width(s) <= maxW {
		return s
	}
	r := []rune(s)
	if len(r) <= maxW {
		return s
	}
	return string(r[:maxW])
}
