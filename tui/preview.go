package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aallbrig/hawkbot/config"
	"github.com/aallbrig/hawkbot/parser"
	"github.com/aallbrig/hawkbot/render"
)

// PreviewModel is the command input bar. Every edit re-parses the line so
// the bound arguments, or the reason the line is rejected, show live.
type PreviewModel struct {
	input    textinput.Model
	parser   *parser.Parser
	cfg      *config.Config
	focused  bool
	cmd      *parser.Command
	err      error
	parsedAt string
}

func NewPreviewModel(p *parser.Parser, cfg *config.Config) *PreviewModel {
	in := textinput.New()
	in.Placeholder = "type a command, e.g. gen u[me] x3"
	in.Prompt = ""
	in.CharLimit = 2000
	return &PreviewModel{input: in, parser: p, cfg: cfg}
}

// Value is the text typed so far.
func (p *PreviewModel) Value() string { return p.input.Value() }

// SetCommand replaces the input text.
func (p *PreviewModel) SetCommand(s string) {
	p.input.SetValue(s)
	p.input.CursorEnd()
	p.reparse()
}

// Reset clears the input.
func (p *PreviewModel) Reset() { p.SetCommand("") }

// Tokens splits the input on whitespace.
func (p *PreviewModel) Tokens() []string { return strings.Fields(p.input.Value()) }

// Command returns the parse result of the current input.
func (p *PreviewModel) Command() (*parser.Command, error) { return p.cmd, p.err }

func (p *PreviewModel) SetFocused(f bool) {
	p.focused = f
	if f {
		p.input.Focus()
	} else {
		p.input.Blur()
	}
}

func (p *PreviewModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.reparse()
	return cmd
}

func (p *PreviewModel) reparse() {
	line := p.input.Value()
	if line == p.parsedAt {
		return
	}
	p.parsedAt = line
	p.cmd, p.err = p.parser.Parse(line)
}

func (p *PreviewModel) View(width int) string {
	label := "  "
	if p.focused {
		label = "► "
	}
	labelStyle := lipgloss.NewStyle().Bold(true)
	if !p.cfg.NoColor {
		labelStyle = labelStyle.Foreground(lipgloss.Color(p.cfg.Colors.Selected))
	}
	content := labelStyle.Render(label) + p.input.View() + "\n" + p.status()
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#555555")).
		Width(max(width-2, 1)).
		Padding(0, 1).
		Render(content)
}

// status describes the parse result in one line.
func (p *PreviewModel) status() string {
	muted := lipgloss.NewStyle().Faint(true)
	bad := lipgloss.NewStyle()
	if !p.cfg.NoColor {
		bad = bad.Foreground(lipgloss.Color(p.cfg.Colors.Invalid))
	}
	switch {
	case p.err != nil:
		return bad.Render("✗ " + p.err.Error())
	case p.cmd == nil:
		return muted.Render("no command")
	}
	inv := p.cmd.Invocation()
	parts := []string{"→ " + inv.Command}
	for _, name := range p.cmd.Names() {
		if v := inv.Args[name]; v != nil && p.isSet(name) {
			parts = append(parts, name+"="+render.FormatValue(v))
		}
	}
	if missing := p.cmd.Missing(); len(missing) > 0 {
		parts = append(parts, bad.Render("missing: "+strings.Join(missing, ", ")))
	}
	return strings.Join(parts, "  ")
}

func (p *PreviewModel) isSet(name string) bool {
	arg, err := p.cmd.Arg(name)
	return err == nil && arg.IsSet()
}
