package params

import (
	"fmt"
	"strings"
)

// Arg is one raw argument handed to a parameter: either a bare token or
// the items of a bracket list literal such as users[hawk chance].
type Arg struct {
	Text   string
	Items  []string
	IsList bool
}

// Token wraps a bare token.
func Token(s string) Arg { return Arg{Text: s} }

// List wraps the items of a bracket literal.
func List(items ...string) Arg { return Arg{Items: items, IsList: true} }

// First returns the token itself, or the first list item.
func (a Arg) First() (string, bool) {
	if !a.IsList {
		return a.Text, true
	}
	if len(a.Items) == 0 {
		return "", false
	}
	return a.Items[0], true
}

func (a Arg) String() string {
	if a.IsList {
		return "[" + strings.Join(a.Items, " ") + "]"
	}
	return a.Text
}

// Param is a parsed parameter instance.
type Param interface {
	Kind() Kind
	Alias() string
	Optional() bool
	Help() string
	// Parse stores the typed form of arg. It returns a *ParseError when arg
	// is structurally invalid, or a feedback error for user mistakes that
	// deserve a direct answer.
	Parse(arg Arg) error
	// IsSet reports whether the parameter holds a value, either parsed or
	// defaulted.
	IsSet() bool
	// Value returns a plain representation for display and encoding.
	Value() any
}

// ParseError reports an argument that a parameter kind could not parse.
type ParseError struct {
	Kind Kind
	Arg  string
	Err  error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("argument could not be parsed by %s: %s", e.Kind, e.Arg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(k Kind, arg Arg, err error) error {
	return &ParseError{Kind: k, Arg: arg.String(), Err: err}
}

// base carries the registration metadata shared by every kind.
type base struct {
	kind     Kind
	alias    string
	optional bool
	help     string
}

func newBase(s Spec) base {
	help := s.Help
	if help == "" {
		help = s.Kind.defaultHelp()
	}
	return base{kind: s.Kind, alias: s.Alias, optional: s.Optional, help: help}
}

func (b *base) Kind() Kind     { return b.kind }
func (b *base) Alias() string  { return b.alias }
func (b *base) Optional() bool { return b.optional }
func (b *base) Help() string   { return b.help }
