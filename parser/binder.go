package parser

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aallbrig/hawkbot/grammar"
	"github.com/aallbrig/hawkbot/lexer"
	"github.com/aallbrig/hawkbot/params"
)

type stepKind int

const (
	stepBound stepKind = iota
	stepSwitched
	stepNoCommand
	stepUnknown
)

// step is the outcome of feeding one item to the binder.
type step struct {
	kind stepKind
	mode grammar.Mode // stepSwitched
	item string       // stepNoCommand, stepUnknown
}

func (s step) failed() bool {
	return s.kind == stepNoCommand || s.kind == stepUnknown
}

// binder accumulates one parse attempt.
type binder struct {
	registry *grammar.Registry
	log      zerolog.Logger

	base     *grammar.Command
	args     map[string]params.Param
	mode     grammar.Mode
	modeSet  bool
	argsSeen bool
	pos      int
}

// setBase binds cmd and reports a mode switch when cmd parses differently
// from the current command. The very first base always switches.
func (b *binder) setBase(cmd *grammar.Command) step {
	b.base = cmd
	b.args = cmd.NewParams()
	if b.modeSet && cmd.Mode == b.mode {
		return step{kind: stepBound}
	}
	b.mode, b.modeSet = cmd.Mode, true
	return step{kind: stepSwitched, mode: cmd.Mode}
}

// add interprets a bare word: the command name, a subcommand, or an
// argument.
func (b *binder) add(word string) (step, error) {
	if b.base == nil {
		cmd := b.registry.FindBase(word, false)
		if cmd == nil {
			return step{kind: stepNoCommand, item: word}, nil
		}
		return b.setBase(cmd), nil
	}

	if !b.argsSeen {
		if full, ok := b.base.Subcommand(word); ok {
			if cmd := b.registry.FindBase(full, false); cmd != nil {
				return b.setBase(cmd), nil
			}
		}
	}

	switch {
	case b.mode == grammar.ModeLexical:
		name := b.base.MatchShorthand(word)
		b.log.Debug().Str("name", name).Str("arg", word).Msg("shorthand arg")
		return b.bind(name, params.Token(word))
	case b.mode.Positional():
		return b.bindPositional(params.Token(word))
	}
	return step{}, fmt.Errorf("parsing mode %s is not valid", b.mode)
}

// addList binds a bracket list. In lexical mode the preceding word names
// the parameter; in positional modes the preceding word takes its own
// position and the list the next one.
func (b *binder) addList(name *lexer.Token, items []string) (step, error) {
	arg := params.List(items...)
	if b.base == nil {
		item := arg.String()
		if name != nil {
			item = name.Text + item
		}
		return step{kind: stepUnknown, item: item}, nil
	}

	switch {
	case b.mode == grammar.ModeLexical:
		if name == nil {
			return step{kind: stepUnknown, item: arg.String()}, nil
		}
		canonical := b.base.LookupName(name.Text)
		b.log.Debug().Str("name", canonical).Strs("arg", items).Msg("named arg")
		if canonical == "" {
			return step{kind: stepUnknown, item: name.Text + arg.String()}, nil
		}
		return b.bind(canonical, arg)

	case b.mode.Positional():
		if name != nil {
			res, err := b.bindPositional(params.Token(name.Text))
			if err != nil || res.failed() {
				return res, err
			}
		}
		return b.bindPositional(arg)
	}
	return step{}, fmt.Errorf("parsing mode %s is not valid", b.mode)
}

func (b *binder) bindPositional(arg params.Arg) (step, error) {
	name := b.base.AtPosition(b.pos)
	b.pos++
	b.log.Debug().Str("name", name).Str("arg", arg.String()).Msg("positional arg")
	return b.bind(name, arg)
}

func (b *binder) bind(name string, arg params.Arg) (step, error) {
	if name == "" {
		return step{kind: stepUnknown, item: arg.String()}, nil
	}
	b.argsSeen = true
	if err := b.args[name].Parse(arg); err != nil {
		return step{}, err
	}
	return step{kind: stepBound}, nil
}

func (b *binder) logFailure(s step) {
	switch s.kind {
	case stepNoCommand:
		b.log.Debug().Str("command", s.item).Msg("command not found")
	case stepUnknown:
		ev := b.log.Debug().Str("arg", s.item)
		if b.base != nil {
			ev = ev.Str("command", b.base.Name)
		}
		ev.Msg("unknown argument")
	}
}

func (b *binder) result() *Command {
	if b.base == nil {
		return nil
	}
	return &Command{Base: b.base, args: b.args}
}
