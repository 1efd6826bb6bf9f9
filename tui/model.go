// Package tui implements the interactive Bubble Tea console for hawkbot.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aallbrig/hawkbot/config"
	"github.com/aallbrig/hawkbot/dispatch"
	"github.com/aallbrig/hawkbot/grammar"
	"github.com/aallbrig/hawkbot/models"
	"github.com/aallbrig/hawkbot/parser"
	"github.com/aallbrig/hawkbot/render"
)

// Dispatcher answers chat messages.
type Dispatcher interface {
	Handle(ctx context.Context, msg dispatch.Message) *dispatch.Reply
	Prefix(guildID string) (string, error)
}

// pane identifies which pane currently has focus.
type pane int

const (
	panePreview pane = iota
	paneTree
	paneHelp
	paneCount
)

// Model is the root Bubble Tea model.
type Model struct {
	registry     *grammar.Registry
	root         *models.Node
	disp         Dispatcher
	who          dispatch.Message
	cfg          *config.Config
	renderer     *render.Renderer
	tree         *TreeModel
	preview      *PreviewModel
	helpPane     *HelpPaneModel
	transcript   viewport.Model
	log          []string
	showHelpPane bool
	filter       textinput.Model
	filtering    bool
	focusedPane  pane
	width        int
	height       int
	statusMsg    string
	quitting     bool
	clipboard    func(string) error
}

// NewModel creates the console. who carries the guild, channel and author
// every typed message is sent as.
func NewModel(reg *grammar.Registry, p *parser.Parser, disp Dispatcher, who dispatch.Message, cfg *config.Config) *Model {
	filter := textinput.New()
	filter.Placeholder = "filter…"
	filter.CharLimit = 64

	opts := render.DefaultOptions()
	opts.NoColor = cfg.NoColor
	opts.Colors = cfg.Colors

	root := reg.Tree("hawkbot")
	m := &Model{
		registry:     reg,
		root:         root,
		disp:         disp,
		who:          who,
		cfg:          cfg,
		renderer:     render.New(opts),
		tree:         NewTreeModel(root, cfg),
		preview:      NewPreviewModel(p, cfg),
		helpPane:     NewHelpPaneModel(cfg),
		transcript:   viewport.New(80, 5),
		filter:       filter,
		showHelpPane: true,
		clipboard:    clipboard.WriteAll,
	}
	m.setFocus(panePreview)
	m.syncHelp()
	return m
}

// SetClipboard replaces the function Ctrl+Y copies with.
func (m *Model) SetClipboard(write func(string) error) { m.clipboard = write }

// Transcript returns everything sent and received so far.
func (m *Model) Transcript() string { return strings.Join(m.log, "\n") }

// Input returns the text in the command bar.
func (m *Model) Input() string { return m.preview.Value() }

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.filtering {
			return m.updateFilter(msg)
		}
		switch m.focusedPane {
		case panePreview:
			return m.updatePreview(msg)
		case paneHelp:
			return m.updateHelpPaneKeys(msg.String())
		}
		return m.updateTree(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	return m, nil
}

func (m *Model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.send()
		return m, nil
	case "esc":
		m.setFocus(paneTree)
		return m, nil
	case "tab":
		m.cycleFocus(1)
		return m, nil
	case "shift+tab":
		m.cycleFocus(-1)
		return m, nil
	case "ctrl+y":
		m.copyMessage()
		return m, nil
	case "pgup":
		m.transcript.HalfPageUp()
		return m, nil
	case "pgdown":
		m.transcript.HalfPageDown()
		return m, nil
	}
	cmd := m.preview.Update(msg)
	m.tree.SetCmdTokens(m.preview.Tokens())
	m.syncHelp()
	return m, cmd
}

func (m *Model) updateTree(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		m.cycleFocus(1)
	case "shift+tab":
		m.cycleFocus(-1)
	case "?":
		m.showHelpPane = !m.showHelpPane
		m.applyLayout()
	case "/":
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink
	case "up", "k":
		m.tree.Up()
	case "down", "j":
		m.tree.Down()
	case "left", "h":
		m.tree.Left()
	case "right", "l":
		m.tree.Right()
	case " ":
		m.tree.ToggleExpand()
	case "enter":
		if cmd := m.tree.SelectedCommand(); cmd != "" {
			m.preview.SetCommand(cmd + " ")
			m.tree.SetCmdTokens(m.preview.Tokens())
			m.setFocus(panePreview)
			m.statusMsg = "set: " + cmd
		}
	}
	m.syncHelp()
	return m, nil
}

func (m *Model) updateHelpPaneKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		m.helpPane.ScrollUp(1)
	case "down", "j":
		m.helpPane.ScrollDown(1)
	case "pgup", "ctrl+u", "b":
		m.helpPane.PageUp()
	case "pgdown", "ctrl+d":
		m.helpPane.PageDown()
	case "g":
		m.helpPane.Top()
	case "G":
		m.helpPane.Bottom()
	case "tab":
		m.cycleFocus(1)
	case "shift+tab":
		m.cycleFocus(-1)
	case "esc":
		m.setFocus(panePreview)
	case "q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.filtering = false
		m.filter.Blur()
		m.tree.SetFilter(m.filter.Value())
		m.syncHelp()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.tree.SetFilter(m.filter.Value())
	return m, cmd
}

func (m *Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	overHelp := m.showHelpPane && m.width > 0 && msg.X >= m.treeWidth() && msg.Y < previewBarHeight+m.contentHeight()
	overTranscript := msg.Y >= previewBarHeight+m.contentHeight()
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		switch {
		case overTranscript:
			m.transcript.ScrollUp(3)
		case overHelp:
			m.helpPane.ScrollUp(3)
		default:
			m.tree.Up()
			m.syncHelp()
		}
	case tea.MouseButtonWheelDown:
		switch {
		case overTranscript:
			m.transcript.ScrollDown(3)
		case overHelp:
			m.helpPane.ScrollDown(3)
		default:
			m.tree.Down()
			m.syncHelp()
		}
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			break
		}
		switch {
		case msg.Y < previewBarHeight:
			m.setFocus(panePreview)
		case overHelp:
			m.setFocus(paneHelp)
		case !overTranscript:
			m.setFocus(paneTree)
		}
	}
	return m, nil
}

// send dispatches the typed line as a chat message with the guild prefix.
func (m *Model) send() {
	line := m.preview.Value()
	if strings.TrimSpace(line) == "" {
		return
	}
	prefix, err := m.disp.Prefix(m.who.GuildID)
	if err != nil {
		m.statusMsg = "prefix lookup failed: " + err.Error()
		return
	}
	msg := m.who
	msg.Content = prefix + line
	m.log = append(m.log, "» "+line)

	reply := m.disp.Handle(context.Background(), msg)
	if reply == nil {
		m.log = append(m.log, m.faint("(no reply)"))
	} else {
		var sb strings.Builder
		_ = m.renderer.Reply(&sb, *reply)
		m.log = append(m.log, strings.TrimRight(sb.String(), "\n"))
	}
	m.transcript.SetContent(m.Transcript())
	m.transcript.GotoBottom()
	m.preview.Reset()
	m.tree.SetCmdTokens(nil)
	m.syncHelp()
}

func (m *Model) copyMessage() {
	line := m.preview.Value()
	if line == "" {
		m.statusMsg = "nothing to copy"
		return
	}
	prefix, err := m.disp.Prefix(m.who.GuildID)
	if err != nil {
		m.statusMsg = "prefix lookup failed: " + err.Error()
		return
	}
	if err := m.clipboard(prefix + line); err != nil {
		m.statusMsg = "copy failed: " + err.Error()
		return
	}
	m.statusMsg = "copied: " + prefix + line
}

// syncHelp shows the help of the command being typed, or of the tree
// selection.
func (m *Model) syncHelp() {
	if m.focusedPane == panePreview {
		if cmd, _ := m.preview.Command(); cmd != nil {
			m.helpPane.SetHelp(cmd.Base.Help())
			return
		}
	}
	name := m.tree.SelectedCommand()
	if name == "" {
		m.helpPane.SetOverview(m.root)
		return
	}
	if base := m.registry.FindBase(name, false); base != nil {
		m.helpPane.SetHelp(base.Help())
	}
}

// ---------- focus management ----------

func (m *Model) cycleFocus(delta int) {
	next := (int(m.focusedPane) + delta + int(paneCount)) % int(paneCount)
	if pane(next) == paneHelp && !m.showHelpPane {
		next = (next + delta + int(paneCount)) % int(paneCount)
	}
	m.setFocus(pane(next))
	m.statusMsg = "focus: " + paneName(pane(next))
}

func (m *Model) setFocus(p pane) {
	m.focusedPane = p
	m.tree.SetFocused(p == paneTree)
	m.preview.SetFocused(p == panePreview)
	m.helpPane.SetFocused(p == paneHelp)
	m.syncHelp()
}

// ---------- layout ----------

const previewBarHeight = 3

func (m *Model) applyLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	cH := m.contentHeight()
	m.tree.SetSize(m.treeWidth(), cH)
	m.helpPane.SetSize(m.helpWidth(), cH)
	m.transcript.Width = max(m.width-4, 1)
	m.transcript.Height = max(m.transcriptHeight()-2, 1)
}

func (m *Model) transcriptHeight() int {
	return max(m.height/3, 4)
}

func (m *Model) contentHeight() int {
	return max(m.height-previewBarHeight-m.transcriptHeight()-1, 3)
}

func (m *Model) treeWidth() int {
	if m.showHelpPane && m.width >= 80 {
		return max(m.width*50/100, 30)
	}
	return m.width
}

func (m *Model) helpWidth() int {
	return m.width - m.treeWidth()
}

// ---------- view ----------

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	previewBar := m.preview.View(m.width)
	cH := m.contentHeight()
	body := m.tree.ViewSized(m.treeWidth(), cH)
	if m.showHelpPane && m.helpWidth() > 20 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.helpPane.View(m.helpWidth(), cH))
	}
	transcript := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#555555")).
		Width(max(m.width-2, 1)).
		Render(m.transcript.View())

	return lipgloss.JoinVertical(lipgloss.Left, previewBar, body, transcript, m.renderStatusBar())
}

func (m *Model) renderStatusBar() string {
	left := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s #%s as %s", m.who.GuildID, m.who.ChannelID, m.who.AuthorID))

	var hint string
	switch {
	case m.statusMsg != "":
		hint = m.statusMsg
		m.statusMsg = ""
	case m.filtering:
		hint = "filter: " + m.filter.View() + "  (Enter/Esc)"
	case m.focusedPane == panePreview:
		hint = "Enter:send · Ctrl+Y:copy · PgUp/PgDn:scroll · Esc:tree · Ctrl+C:quit"
	case m.focusedPane == paneHelp:
		hint = "↑↓/jk:scroll · PgUp/PgDn · g/G:top/bottom · Tab:switch"
	default:
		hint = "Enter:use command · ←→:collapse/expand · /:filter · ?:help · q:quit"
	}
	right := m.faint(hint)

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) faint(s string) string {
	return lipgloss.NewStyle().Faint(true).Render(s)
}

func paneName(p pane) string {
	switch p {
	case paneTree:
		return "tree"
	case paneHelp:
		return "help"
	default:
		return "input"
	}
}

// Run starts the interactive console.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
