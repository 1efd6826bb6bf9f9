package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aallbrig/hawkbot/config"
	"github.com/aallbrig/hawkbot/models"
	"github.com/aallbrig/hawkbot/render"
)

// treeItem is a flattened node for rendering.
type treeItem struct {
	node   *models.Node
	parent *models.Node
	depth  int
}

// TreeModel is the scrollable, filterable grammar browser.
type TreeModel struct {
	root      *models.Node
	items     []treeItem
	cursor    int
	offset    int
	filter    string
	expanded  map[string]bool
	cmdTokens []string
	focused   bool
	cfg       *config.Config
	renderer  *render.Renderer
	width     int
	height    int
}

func NewTreeModel(root *models.Node, cfg *config.Config) *TreeModel {
	opts := render.DefaultOptions()
	opts.NoColor = cfg.NoColor
	opts.Colors = cfg.Colors
	t := &TreeModel{
		root:     root,
		expanded: map[string]bool{nodeKey(root): true},
		cfg:      cfg,
		renderer: render.New(opts),
	}
	t.rebuild()
	return t
}

func (t *TreeModel) SetSize(w, h int) { t.width = w; t.height = h }

func (t *TreeModel) SetFilter(f string) {
	t.filter = f
	t.cursor = 0
	t.offset = 0
	t.rebuild()
}

// SetCmdTokens highlights the nodes whose path matches the words typed so far.
func (t *TreeModel) SetCmdTokens(tokens []string) { t.cmdTokens = tokens }
func (t *TreeModel) SetFocused(f bool)             { t.focused = f }

func (t *TreeModel) Selected() *models.Node {
	if t.cursor < len(t.items) {
		return t.items[t.cursor].node
	}
	return nil
}

// SelectedCommand returns the command text of the selected node; the root
// has none.
func (t *TreeModel) SelectedCommand() string {
	if t.cursor >= len(t.items) || t.items[t.cursor].depth == 0 {
		return ""
	}
	return t.items[t.cursor].node.FullCommand()
}

func (t *TreeModel) Up() {
	if t.cursor > 0 {
		t.cursor--
		t.scrollIntoView()
	}
}

func (t *TreeModel) Down() {
	if t.cursor < len(t.items)-1 {
		t.cursor++
		t.scrollIntoView()
	}
}

func (t *TreeModel) Expand() {
	if node := t.Selected(); node != nil && !node.IsLeaf() && !t.expanded[nodeKey(node)] {
		t.expanded[nodeKey(node)] = true
		t.rebuild()
	}
}

func (t *TreeModel) Collapse() {
	if node := t.Selected(); node != nil && t.expanded[nodeKey(node)] {
		delete(t.expanded, nodeKey(node))
		t.rebuild()
	}
}

// ToggleExpand expands the selected node if collapsed, or collapses it if expanded.
func (t *TreeModel) ToggleExpand() {
	node := t.Selected()
	if node == nil {
		return
	}
	if t.expanded[nodeKey(node)] {
		t.Collapse()
	} else {
		t.Expand()
	}
}

// Right expands the selected node and moves into its first child.
func (t *TreeModel) Right() {
	node := t.Selected()
	if node == nil || node.IsLeaf() {
		return
	}
	t.Expand()
	t.Down()
}

// Left collapses an expanded node, or moves to the parent.
func (t *TreeModel) Left() {
	if t.cursor >= len(t.items) {
		return
	}
	item := t.items[t.cursor]
	if t.expanded[nodeKey(item.node)] {
		t.Collapse()
		return
	}
	for i := t.cursor - 1; i >= 0; i-- {
		if t.items[i].node == item.parent {
			t.cursor = i
			t.scrollIntoView()
			return
		}
	}
}

func (t *TreeModel) View() string { return t.ViewSized(t.width, t.height) }

func (t *TreeModel) ViewSized(w, h int) string {
	t.width = w
	t.height = h
	if t.cursor >= len(t.items) && len(t.items) > 0 {
		t.cursor = len(t.items) - 1
	}

	borderColor := lipgloss.Color("#555555")
	if t.focused {
		borderColor = lipgloss.Color(t.cfg.Colors.Selected)
	}
	innerW := max(w-4, 1)
	innerH := max(h-2, 1)

	var lines []string
	end := min(t.offset+innerH, len(t.items))
	for i := t.offset; i < end; i++ {
		lines = append(lines, t.renderItem(t.items[i], i == t.cursor, innerW))
	}
	for len(lines) < innerH {
		lines = append(lines, "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(max(w-2, 1)).
		Height(innerH).
		Render(strings.Join(lines, "\n"))
}

func (t *TreeModel) renderItem(item treeItem, selected bool, maxW int) string {
	icon := "  "
	if !item.node.IsLeaf() {
		icon = "▶ "
		if t.expanded[nodeKey(item.node)] {
			icon = "▼ "
		}
	}

	nameStyle := lipgloss.NewStyle()
	if !t.cfg.NoColor {
		color := t.cfg.Colors.Subcmd
		if item.depth == 0 {
			color = t.cfg.Colors.Base
		}
		nameStyle = nameStyle.Foreground(lipgloss.Color(color))
		if t.matchesTokenPrefix(item) {
			nameStyle = nameStyle.Foreground(lipgloss.Color(t.cfg.Colors.Param))
		}
	}
	if item.depth == 0 || t.matchesTokenPrefix(item) {
		nameStyle = nameStyle.Bold(true)
	}

	line := strings.Repeat("  ", item.depth) + icon + nameStyle.Render(item.node.Name)
	var meta []string
	if len(item.node.Aliases) > 0 {
		meta = append(meta, "("+strings.Join(item.node.Aliases, ", ")+")")
	}
	for _, p := range item.node.Params {
		meta = append(meta, t.renderer.ParamUsage(p))
	}
	if len(meta) > 0 {
		line += " " + strings.Join(meta, " ")
	}

	if selected {
		if w := lipgloss.Width(line); w < maxW {
			line += strings.Repeat(" ", maxW-w)
		}
		style := lipgloss.NewStyle().Bold(true).Reverse(t.cfg.NoColor)
		if !t.cfg.NoColor {
			style = style.Background(lipgloss.Color("#264F78"))
		}
		return style.Render(line)
	}
	return line
}

// matchesTokenPrefix reports whether the node's path is a prefix of the
// typed words.
func (t *TreeModel) matchesTokenPrefix(item treeItem) bool {
	if item.depth == 0 || len(t.cmdTokens) == 0 {
		return false
	}
	fp := item.node.FullPath
	if len(fp) > len(t.cmdTokens) {
		return false
	}
	for i, part := range fp {
		if !strings.EqualFold(part, t.cmdTokens[i]) {
			return false
		}
	}
	return true
}

func (t *TreeModel) rebuild() {
	t.items = nil
	t.flatten(t.root, nil, 0)
	if t.cursor >= len(t.items) {
		t.cursor = max(len(t.items)-1, 0)
	}
}

func (t *TreeModel) flatten(node, parent *models.Node, depth int) {
	if t.filter == "" || depth == 0 || matchesFilter(node, t.filter) {
		t.items = append(t.items, treeItem{node: node, parent: parent, depth: depth})
	}
	if t.expanded[nodeKey(node)] || (t.filter != "" && hasMatch(node, t.filter)) {
		for _, child := range node.Children {
			t.flatten(child, node, depth+1)
		}
	}
}

func (t *TreeModel) scrollIntoView() {
	innerH := max(t.height-2, 1)
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+innerH {
		t.offset = t.cursor - innerH + 1
	}
}

func nodeKey(n *models.Node) string {
	return strings.Join(n.FullPath, "/")
}

func matchesFilter(node *models.Node, filter string) bool {
	return strings.Contains(strings.ToLower(node.Name), strings.ToLower(filter))
}

func hasMatch(node *models.Node, filter string) bool {
	for _, child := range node.Children {
		if matchesFilter(child, filter) || hasMatch(child, filter) {
			return true
		}
	}
	return false
}
