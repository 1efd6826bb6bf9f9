package grammar

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aallbrig/hawkbot/models"
	"github.com/aallbrig/hawkbot/params"
)

// Entry is one line of a grammar table: a command definition or an alias.
type Entry interface {
	entryName() string
}

// Def is a command definition under construction. Build it with Define and
// the chained methods, then hand it to New.
type Def struct {
	name        string
	mode        Mode
	description string
	subcommands []string
	params      []paramEntry
}

// Define starts a command definition. The mode defaults to lexical.
func Define(name string, mode ...Mode) *Def {
	d := &Def{name: strings.Join(strings.Fields(name), " "), mode: ModeLexical}
	if len(mode) > 0 {
		d.mode = mode[0]
	}
	return d
}

func (d *Def) entryName() string { return d.name }

// Describe sets the help description.
func (d *Def) Describe(desc string) *Def {
	d.description = desc
	return d
}

// Subcommands declares direct subcommand names (single segments).
func (d *Def) Subcommands(names ...string) *Def {
	d.subcommands = append(d.subcommands, names...)
	return d
}

// Param declares a parameter. Parameters of positional and rest commands
// are bound in the order they are declared.
func (d *Def) Param(name string, kind params.Kind, opts ...params.Option) *Def {
	d.params = append(d.params, paramEntry{name: name, spec: params.NewSpec(kind, opts...)})
	return d
}

type aliasEntry struct {
	alias, target string
}

func (a aliasEntry) entryName() string { return a.alias }

// Alias maps a short command name onto another command path.
func Alias(alias, target string) Entry {
	return aliasEntry{alias: alias, target: target}
}

// Registry maps command paths and aliases to command grammars.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]string
	order    []string
}

// New builds and validates a registry. Every problem found is reported in
// the returned (joined) error.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
	var errs []error
	taken := make(map[string]bool)

	for _, e := range entries {
		name := e.entryName()
		if name == "" {
			errs = append(errs, errors.New("entry with an empty name"))
			continue
		}
		if taken[name] {
			errs = append(errs, fmt.Errorf("%q is registered twice", name))
			continue
		}
		taken[name] = true

		switch e := e.(type) {
		case aliasEntry:
			r.aliases[e.alias] = strings.Join(strings.Fields(e.target), " ")
		case *Def:
			cmd, err := build(e)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			r.commands[cmd.Name] = cmd
			r.order = append(r.order, cmd.Name)
		default:
			errs = append(errs, fmt.Errorf("unsupported entry %T", e))
		}
	}

	for alias, target := range r.aliases {
		if _, ok := r.commands[target]; !ok {
			errs = append(errs, fmt.Errorf("alias %q points to unknown command %q", alias, target))
		}
	}
	for _, name := range r.order {
		cmd := r.commands[name]
		if cmd.Parent != "" {
			if _, ok := r.commands[cmd.Parent]; !ok {
				errs = append(errs, fmt.Errorf("command %q has no parent command %q", name, cmd.Parent))
			}
		}
		for _, sub := range cmd.Subcommands() {
			full, _ := cmd.Subcommand(sub)
			if _, ok := r.commands[full]; !ok {
				errs = append(errs, fmt.Errorf("command %q lists unknown subcommand %q", name, full))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is New for static tables; it panics on an invalid grammar.
func MustNew(entries ...Entry) *Registry {
	r, err := New(entries...)
	if err != nil {
		panic(fmt.Sprintf("grammar: %v", err))
	}
	return r
}

func build(d *Def) (*Command, error) {
	if !d.mode.Valid() {
		return nil, fmt.Errorf("command %q: parsing mode %s is not valid", d.name, d.mode)
	}
	cmd := newCommand(d.name, d.mode)
	if d.description != "" {
		cmd.Description = d.description
	}

	var errs []error
	for _, sub := range d.subcommands {
		if sub == "" || strings.ContainsAny(sub, " \t") {
			errs = append(errs, fmt.Errorf("subcommand %q must be a single word", sub))
			continue
		}
		cmd.subcommands[sub] = struct{}{}
	}

	shorthands := make(map[params.Kind]string)
	optionalSeen := false
	for _, p := range d.params {
		spec := p.spec
		if !spec.OptionalSet {
			spec.Optional = d.mode == ModeLexical
		}
		if err := spec.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("param %q: %w", p.name, err))
			continue
		}
		if _, dup := cmd.names[p.name]; dup || p.name == "" {
			errs = append(errs, fmt.Errorf("param %q is declared twice or unnamed", p.name))
			continue
		}
		if spec.Alias != "" {
			if _, dup := cmd.names[spec.Alias]; dup || spec.Alias == p.name {
				errs = append(errs, fmt.Errorf("param alias %q is already taken", spec.Alias))
				continue
			}
		}
		if d.mode == ModeLexical && spec.Kind.Shorthand() != "" {
			if other, ok := shorthands[spec.Kind]; ok {
				errs = append(errs, fmt.Errorf("params %q and %q share the %s shorthand", other, p.name, spec.Kind))
				continue
			}
			shorthands[spec.Kind] = p.name
		}
		if d.mode.Positional() {
			if optionalSeen && !spec.Optional {
				errs = append(errs, fmt.Errorf("required positional param %q follows an optional one", p.name))
				continue
			}
			optionalSeen = optionalSeen || spec.Optional
			cmd.positional = append(cmd.positional, p.name)
		}

		cmd.names[p.name] = p.name
		if spec.Alias != "" {
			cmd.names[spec.Alias] = p.name
		}
		cmd.params = append(cmd.params, paramEntry{name: p.name, spec: spec})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("command %q: %w", d.name, err)
	}
	return cmd, nil
}

// ResolveAlias follows one alias indirection. A command name resolves to
// itself; an unknown name resolves to "".
func (r *Registry) ResolveAlias(name string) string {
	if _, ok := r.commands[name]; ok {
		return name
	}
	return r.aliases[name]
}

// FindBase looks a command up by path or alias. With resolveAliases each
// path prefix is resolved through one alias step, so "rq guess" finds
// "rquote guess".
func (r *Registry) FindBase(path string, resolveAliases bool) *Command {
	segments := strings.Fields(path)
	if len(segments) == 0 {
		return nil
	}
	base := strings.Join(segments, " ")
	if resolveAliases {
		base = r.ResolveAlias(segments[0])
		for _, seg := range segments[1:] {
			if base == "" {
				return nil
			}
			base = r.ResolveAlias(base + " " + seg)
		}
	}
	base = r.ResolveAlias(base)
	if base == "" {
		return nil
	}
	return r.commands[base]
}

// CommandNames lists the top-level commands in registration order.
func (r *Registry) CommandNames() []string {
	var out []string
	for _, name := range r.order {
		if !strings.Contains(name, " ") {
			out = append(out, name)
		}
	}
	return out
}

// Commands returns every command in registration order.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, len(r.order))
	for i, name := range r.order {
		out[i] = r.commands[name]
	}
	return out
}

// AliasesOf returns the aliases that point at the named command.
func (r *Registry) AliasesOf(name string) []string {
	var out []string
	for alias, target := range r.aliases {
		if target == name {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// Tree exports the grammar as a node hierarchy rooted at a synthetic node
// called root.
func (r *Registry) Tree(root string) *models.Node {
	top := &models.Node{Name: root, FullPath: []string{root}, Mode: ModeLexical.String()}
	for _, name := range r.CommandNames() {
		top.Children = append(top.Children, r.node(r.commands[name]))
	}
	return top
}

func (r *Registry) node(cmd *Command) *models.Node {
	n := &models.Node{
		Name:        cmd.Path[len(cmd.Path)-1],
		FullPath:    append([]string(nil), cmd.Path...),
		Description: cmd.Description,
		Mode:        cmd.Mode.String(),
		Aliases:     r.AliasesOf(cmd.Name),
		Params:      cmd.ParamInfo(),
	}
	for _, sub := range cmd.Subcommands() {
		full, _ := cmd.Subcommand(sub)
		if child, ok := r.commands[full]; ok {
			n.Children = append(n.Children, r.node(child))
		}
	}
	return n
}
