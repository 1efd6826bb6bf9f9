// Package render draws the command grammar, help bundles and parsed
// invocations as styled text, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.yaml.in/yaml/v3"

	"github.com/aallbrig/hawkbot/config"
	"github.com/aallbrig/hawkbot/dispatch"
	"github.com/aallbrig/hawkbot/models"
)

// Options controls tree rendering behavior.
type Options struct {
	MaxDepth     int
	Filter       string
	Exclude      string
	CommandsOnly bool
	FullPath     bool
	NoColor      bool
	Output       string // text, json, yaml
	Colors       config.ColorScheme
}

// DefaultOptions returns rendering options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxDepth: -1,
		Output:   "text",
		Colors:   config.DefaultColors(),
	}
}

// Renderer renders grammar trees and command output.
type Renderer struct {
	opts   Options
	styles styles
}

type styles struct {
	base      lipgloss.Style
	subcmd    lipgloss.Style
	param     lipgloss.Style
	required  lipgloss.Style
	alias     lipgloss.Style
	shorthand lipgloss.Style
	mode      lipgloss.Style
	value     lipgloss.Style
	invalid   lipgloss.Style
	dim       lipgloss.Style
}

// New creates a Renderer with the given options.
func New(opts Options) *Renderer {
	r := &Renderer{opts: opts}
	if opts.NoColor {
		plain := lipgloss.NewStyle()
		r.styles = styles{
			base: plain, subcmd: plain, param: plain, required: plain, alias: plain,
			shorthand: plain, mode: plain, value: plain, invalid: plain, dim: plain,
		}
		return r
	}
	color := func(hex string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)) }
	r.styles = styles{
		base:      color(opts.Colors.Base).Bold(true),
		subcmd:    color(opts.Colors.Subcmd),
		param:     color(opts.Colors.Param),
		required:  color(opts.Colors.Required),
		alias:     color(opts.Colors.Alias),
		shorthand: color(opts.Colors.Shorthand),
		mode:      color(opts.Colors.Mode),
		value:     color(opts.Colors.Value),
		invalid:   color(opts.Colors.Invalid),
		dim:       color(opts.Colors.Muted).Faint(true),
	}
	return r
}

// Encode writes v as JSON or YAML.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format: %s", format)
}

// Render writes the tree to w.
func (r *Renderer) Render(w io.Writer, root *models.Node) error {
	switch r.opts.Output {
	case "json", "yaml":
		return Encode(w, r.opts.Output, root)
	case "text", "":
		r.renderNode(w, root, "", true, 0)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", r.opts.Output)
	}
}

const (
	iconBranch  = "▼ "
	iconLeaf    = "• "
	connLast    = "└── "
	connMid     = "├── "
	connLastPad = "    "
	connMidPad  = "│   "
)

func (r *Renderer) renderNode(w io.Writer, node *models.Node, prefix string, isLast bool, depth int) {
	if r.opts.MaxDepth >= 0 && depth > r.opts.MaxDepth {
		return
	}
	if r.opts.Exclude != "" && strings.Contains(node.Name, r.opts.Exclude) {
		return
	}
	if r.opts.Filter != "" && !strings.Contains(node.Name, r.opts.Filter) &&
		!r.hasMatchingDescendant(node, r.opts.Filter) {
		return
	}

	conn := connMid
	if isLast {
		conn = connLast
	}
	icon := iconLeaf
	if len(node.Children) > 0 {
		icon = iconBranch
	}

	name := node.Name
	if r.opts.FullPath && depth > 0 {
		name = node.FullCommand()
	}
	var namePart string
	if depth == 0 {
		namePart = r.styles.base.Render(name)
	} else {
		namePart = r.styles.subcmd.Render(name)
	}

	var meta []string
	if len(node.Aliases) > 0 {
		meta = append(meta, r.styles.alias.Render("("+strings.Join(node.Aliases, ", ")+")"))
	}
	if !r.opts.CommandsOnly {
		if node.Mode != "" && node.Mode != "lexical" {
			meta = append(meta, r.styles.mode.Render("{"+node.Mode+"}"))
		}
		for _, p := range node.Params {
			meta = append(meta, r.ParamUsage(p))
		}
	}

	desc := ""
	if node.Description != "" {
		desc = "  " + r.styles.dim.Render(node.Description)
	}

	line := prefix
	if depth > 0 {
		line += conn
	}
	line += icon + namePart
	if len(meta) > 0 {
		line += " " + strings.Join(meta, " ")
	}
	line += desc
	fmt.Fprintln(w, line)

	childPrefix := prefix
	if depth > 0 {
		if isLast {
			childPrefix += connLastPad
		} else {
			childPrefix += connMidPad
		}
	}
	for i, child := range node.Children {
		r.renderNode(w, child, childPrefix, i == len(node.Children)-1, depth+1)
	}
}

// ParamUsage formats one parameter: <url1> / [url2] for positional ones,
// name[...] for lexical ones.
func (r *Renderer) ParamUsage(p models.ParamInfo) string {
	if p.Position > 0 {
		if p.Optional {
			return r.styles.param.Render("[" + p.Name + "]")
		}
		return r.styles.required.Render("<" + p.Name + ">")
	}
	s := r.styles.param.Render(p.Name + "[…]")
	if p.Shorthand != "" {
		s += r.styles.dim.Render("|") + r.styles.shorthand.Render(p.Shorthand)
	}
	return s
}

func (r *Renderer) hasMatchingDescendant(node *models.Node, filter string) bool {
	for _, child := range node.Children {
		if strings.Contains(child.Name, filter) {
			return true
		}
		if r.hasMatchingDescendant(child, filter) {
			return true
		}
	}
	return false
}

// RenderToString renders the tree to a string.
func RenderToString(root *models.Node, opts Options) (string, error) {
	var sb strings.Builder
	r := New(opts)
	if err := r.Render(&sb, root); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Help writes a command's help bundle.
func (r *Renderer) Help(w io.Writer, h models.CommandHelp) error {
	if r.opts.Output == "json" || r.opts.Output == "yaml" {
		return Encode(w, r.opts.Output, h)
	}
	fmt.Fprintln(w, r.styles.base.Render(h.Name)+" "+r.styles.mode.Render("{"+h.Mode+"}"))
	fmt.Fprintln(w, "  "+h.Description)
	if len(h.Subcommands) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Subcommands:")
		for _, s := range h.Subcommands {
			fmt.Fprintln(w, "  "+r.styles.subcmd.Render(s))
		}
	}
	if len(h.Params) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Parameters:")
		for _, p := range h.Params {
			fmt.Fprintln(w, "  "+r.ParamLine(p))
		}
	}
	return nil
}

// ParamLine is the one-line help of a parameter, e.g.
// "count (shorthand x3, optional): Repeat the command".
func (r *Renderer) ParamLine(p models.ParamInfo) string {
	name := p.Name
	if p.Alias != "" {
		name += "/" + p.Alias
	}
	var notes []string
	if p.Shorthand != "" {
		notes = append(notes, "shorthand "+r.styles.shorthand.Render(p.Shorthand))
	}
	if p.Position > 0 {
		notes = append(notes, fmt.Sprintf("position %d", p.Position))
	}
	if p.Optional {
		notes = append(notes, "optional")
	}
	line := r.styles.param.Render(name)
	if !p.Optional {
		line = r.styles.required.Render(name)
	}
	if len(notes) > 0 {
		line += " (" + strings.Join(notes, ", ") + ")"
	}
	return line + ": " + p.Description
}

// Invocation writes a parsed command and its argument values.
func (r *Renderer) Invocation(w io.Writer, inv models.Invocation) error {
	if r.opts.Output == "json" || r.opts.Output == "yaml" {
		return Encode(w, r.opts.Output, inv)
	}
	fmt.Fprintln(w, r.styles.base.Render(inv.Command))
	names := make([]string, 0, len(inv.Args))
	for name := range inv.Args {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := inv.Args[name]
		if v == nil {
			fmt.Fprintf(w, "  %s %s\n", r.styles.param.Render(name+":"), r.styles.dim.Render("-"))
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", r.styles.param.Render(name+":"), r.styles.value.Render(FormatValue(v)))
	}
	return nil
}

// Reply writes a bot reply. Titles are bold, fields indented under their
// names.
func (r *Renderer) Reply(w io.Writer, rep dispatch.Reply) error {
	if r.opts.Output == "json" || r.opts.Output == "yaml" {
		return Encode(w, r.opts.Output, rep)
	}
	if rep.Error {
		r.Error(w, rep.Body)
		return nil
	}
	if rep.Title != "" {
		fmt.Fprintln(w, r.styles.base.Render(rep.Title))
	}
	if rep.Body != "" {
		fmt.Fprintln(w, rep.Body)
	}
	for _, f := range rep.Fields {
		fmt.Fprintln(w, r.styles.param.Render(f.Name))
		for _, line := range strings.Split(f.Value, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
	return nil
}

// Error renders an error line.
func (r *Renderer) Error(w io.Writer, msg string) {
	fmt.Fprintln(w, r.styles.invalid.Render(msg))
}

// FormatValue prints a parameter value compactly.
func FormatValue(v any) string {
	switch v := v.(type) {
	case []string:
		return "[" + strings.Join(v, " ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if v[k] == nil {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%v", k, v[k]))
		}
		return strings.Join(parts, " ")
	}
	return fmt.Sprint(v)
}

// Stats returns a count of nodes in the tree.
type Stats struct {
	Commands int
	Params   int
	MaxDepth int
}

// Collect gathers stats from a tree.
func Collect(root *models.Node) Stats {
	var s Stats
	collectStats(root, 0, &s)
	return s
}

func collectStats(node *models.Node, depth int, s *Stats) {
	s.Commands++
	s.Params += len(node.Params)
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	for _, child := range node.Children {
		collectStats(child, depth+1, s)
	}
}
