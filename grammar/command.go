// Package grammar holds the declarative command table: which commands and
// subcommands exist, how each parses its arguments and which parameters it
// accepts. A Registry is built once at start-up and is read-only after that,
// so one registry can back any number of parsers.
package grammar

import (
	"sort"
	"strings"

	"github.com/aallbrig/hawkbot/models"
	"github.com/aallbrig/hawkbot/params"
)

const noDescription = "No description available"

type paramEntry struct {
	name string
	spec params.Spec
}

// Command is the grammar of one command or subcommand.
type Command struct {
	// Name is the full path, e.g. "config prefix set".
	Name string
	Path []string
	// Root is the first path segment; Parent is the full name of the
	// enclosing command, empty for top-level commands.
	Root        string
	Parent      string
	Mode        Mode
	Description string

	subcommands map[string]struct{}
	params      []paramEntry
	names       map[string]string // name or alias -> canonical name
	positional  []string
}

func newCommand(name string, mode Mode) *Command {
	path := strings.Fields(name)
	c := &Command{
		Name:        strings.Join(path, " "),
		Path:        path,
		Mode:        mode,
		Description: noDescription,
		subcommands: make(map[string]struct{}),
		names:       make(map[string]string),
	}
	if len(path) > 0 {
		c.Root = path[0]
		c.Parent = strings.Join(path[:len(path)-1], " ")
	}
	return c
}

func (c *Command) String() string { return c.Name }

// Subcommand reports whether token names a direct subcommand and returns
// the subcommand's full name.
func (c *Command) Subcommand(token string) (string, bool) {
	if _, ok := c.subcommands[token]; !ok {
		return "", false
	}
	return c.Name + " " + token, true
}

// Subcommands returns the direct subcommand names, sorted.
func (c *Command) Subcommands() []string {
	out := make([]string, 0, len(c.subcommands))
	for s := range c.subcommands {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ParamNames returns canonical parameter names in registration order.
func (c *Command) ParamNames() []string {
	out := make([]string, len(c.params))
	for i, p := range c.params {
		out[i] = p.name
	}
	return out
}

// Spec returns the declaration of a parameter by canonical name.
func (c *Command) Spec(name string) (params.Spec, bool) {
	for _, p := range c.params {
		if p.name == name {
			return p.spec, true
		}
	}
	return params.Spec{}, false
}

// NewParams builds a fresh instance of every declared parameter. Nothing
// is shared between calls.
func (c *Command) NewParams() map[string]params.Param {
	out := make(map[string]params.Param, len(c.params))
	for _, p := range c.params {
		out[p.name] = params.New(p.spec)
	}
	return out
}

// LookupName resolves an explicit parameter name or alias to the canonical
// name. It returns "" when nothing matches.
func (c *Command) LookupName(name string) string {
	return c.names[name]
}

// MatchShorthand returns the first parameter, in registration order, whose
// kind declares a shorthand that token matches.
func (c *Command) MatchShorthand(token string) string {
	for _, p := range c.params {
		if p.spec.Kind.Shorthand() == "" {
			continue
		}
		if p.spec.Kind.Test(token) {
			return p.name
		}
	}
	return ""
}

// AtPosition returns the parameter bound by the i-th positional argument
// (0-based). Lexical commands have no positions.
func (c *Command) AtPosition(i int) string {
	if !c.Mode.Positional() || i < 0 || i >= len(c.positional) {
		return ""
	}
	return c.positional[i]
}

// ParamInfo describes the declared parameters in registration order.
func (c *Command) ParamInfo() []models.ParamInfo {
	out := make([]models.ParamInfo, 0, len(c.params))
	for _, p := range c.params {
		info := models.ParamInfo{
			Name:        p.name,
			Alias:       p.spec.Alias,
			Kind:        p.spec.Kind.String(),
			Shorthand:   p.spec.Kind.Shorthand(),
			Description: params.New(p.spec).Help(),
			Optional:    p.spec.Optional,
		}
		for i, name := range c.positional {
			if name == p.name {
				info.Position = i + 1
			}
		}
		out = append(out, info)
	}
	return out
}

// Help returns the help bundle: description, sorted subcommands and the
// parameters sorted by name.
func (c *Command) Help() models.CommandHelp {
	ps := c.ParamInfo()
	sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
	return models.CommandHelp{
		Name:        c.Name,
		Description: c.Description,
		Mode:        c.Mode.String(),
		Subcommands: c.Subcommands(),
		Params:      ps,
	}
}
