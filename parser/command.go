package parser

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/aallbrig/hawkbot/grammar"
	"github.com/aallbrig/hawkbot/models"
	"github.com/aallbrig/hawkbot/params"
)

// ErrArgNotFound is returned when a caller asks for a parameter the command
// does not declare.
var ErrArgNotFound = errors.New("argument not found")

// Command is a parsed command: the grammar it was bound to plus one fresh
// parameter instance per declared parameter.
type Command struct {
	Base *grammar.Command
	args map[string]params.Param
}

// Arg returns the parameter instance declared under name.
func (c *Command) Arg(name string) (params.Param, error) {
	if c == nil || c.Base == nil {
		return nil, fmt.Errorf("%w: %s in empty command", ErrArgNotFound, name)
	}
	p, ok := c.args[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in command %s", ErrArgNotFound, name, c.Base.Name)
	}
	return p, nil
}

// Get returns the parameter declared under name as its concrete type.
func Get[T params.Param](c *Command, name string) (T, error) {
	var zero T
	p, err := c.Arg(name)
	if err != nil {
		return zero, err
	}
	typed, ok := p.(T)
	if !ok {
		return zero, fmt.Errorf("argument %s of command %s is a %s, not %T", name, c.Base.Name, p.Kind(), zero)
	}
	return typed, nil
}

// Names returns the declared parameter names, sorted.
func (c *Command) Names() []string {
	out := make([]string, 0, len(c.args))
	for name := range c.args {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Missing lists required parameters that were not supplied.
func (c *Command) Missing() []string {
	var out []string
	for _, name := range c.Base.ParamNames() {
		p := c.args[name]
		if !p.Optional() && !p.IsSet() {
			out = append(out, name)
		}
	}
	return out
}

// Resolve resolves every supplied resolvable parameter against dir, except
// the ones named in skip. All failures are reported together.
func (c *Command) Resolve(dir params.Directory, skip ...string) error {
	var errs []error
	for _, name := range c.Names() {
		r, ok := c.args[name].(params.Resolvable)
		if !ok || !r.IsSet() || slices.Contains(skip, name) {
			continue
		}
		if err := r.Resolve(dir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Invocation returns the display form of the command.
func (c *Command) Invocation() models.Invocation {
	args := make(map[string]any, len(c.args))
	for name, p := range c.args {
		args[name] = p.Value()
	}
	return models.Invocation{
		Command: c.Base.Name,
		Path:    append([]string(nil), c.Base.Path...),
		Root:    c.Base.Root,
		Args:    args,
	}
}

func (c *Command) String() string {
	if c == nil || c.Base == nil {
		return "<command empty>"
	}
	var b strings.Builder
	b.WriteString("<command ")
	b.WriteString(c.Base.Name)
	for _, name := range c.Names() {
		if p := c.args[name]; p.IsSet() {
			fmt.Fprintf(&b, " %s=%v", name, p.Value())
		}
	}
	b.WriteString(">")
	return b.String()
}
