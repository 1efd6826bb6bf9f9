// Package models defines the plain data structures shared by the grammar,
// the renderers and the CLI: the command tree, help bundles and parsed
// invocations.
package models

import "strings"

// ParamInfo describes one declared parameter of a command.
type ParamInfo struct {
	Name        string `json:"name" yaml:"name"`
	Alias       string `json:"alias,omitempty" yaml:"alias,omitempty"`
	Kind        string `json:"kind" yaml:"kind"`
	Shorthand   string `json:"shorthand,omitempty" yaml:"shorthand,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Optional    bool   `json:"optional" yaml:"optional"`
	Position    int    `json:"position,omitempty" yaml:"position,omitempty"` // 1-based, 0 when not positional
}

// Node represents a command or subcommand in the grammar hierarchy.
type Node struct {
	Name        string      `json:"name" yaml:"name"`
	FullPath    []string    `json:"full_path" yaml:"full_path"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Mode        string      `json:"mode" yaml:"mode"`
	Aliases     []string    `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Params      []ParamInfo `json:"params,omitempty" yaml:"params,omitempty"`
	Children    []*Node     `json:"children,omitempty" yaml:"children,omitempty"`
}

// FullCommand returns the full command string (e.g., "config prefix set").
func (n *Node) FullCommand() string {
	if len(n.FullPath) == 0 {
		return n.Name
	}
	return strings.Join(n.FullPath, " ")
}

// IsLeaf returns true if this node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// HasParams returns true if this node declares parameters.
func (n *Node) HasParams() bool {
	return len(n.Params) > 0
}

// Find searches for a child node by name.
func (n *Node) Find(name string) *Node {
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Lookup follows path segments down from n.
func (n *Node) Lookup(path ...string) *Node {
	cur := n
	for _, seg := range path {
		if cur = cur.Find(seg); cur == nil {
			return nil
		}
	}
	return cur
}

// Walk calls fn for each node in the tree (depth-first pre-order).
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := &Node{
		Name:        n.Name,
		FullPath:    append([]string(nil), n.FullPath...),
		Description: n.Description,
		Mode:        n.Mode,
		Aliases:     append([]string(nil), n.Aliases...),
		Params:      append([]ParamInfo(nil), n.Params...),
	}
	for _, child := range n.Children {
		c.Children = append(c.Children, child.Clone())
	}
	return c
}

// CommandHelp is the read-only help bundle of one command.
type CommandHelp struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Mode        string      `json:"mode" yaml:"mode"`
	Subcommands []string    `json:"subcommands" yaml:"subcommands"`
	Params      []ParamInfo `json:"params" yaml:"params"`
}

// Invocation is the display form of a parsed command.
type Invocation struct {
	Command string         `json:"command" yaml:"command"`
	Path    []string       `json:"path" yaml:"path"`
	Root    string         `json:"root" yaml:"root"`
	Args    map[string]any `json:"args" yaml:"args"`
}
