// Package parser binds a line of command text to a grammar entry and its
// typed parameters.
//
// The first word (or alias) picks the command. While no argument has been
// bound, further bare words may walk down into subcommands. Every other
// word is bound according to the current command's mode: by name or
// shorthand in lexical mode, by position in positional mode, or, in rest
// mode, the raw remainder of the line becomes one argument.
package parser

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aallbrig/hawkbot/grammar"
	"github.com/aallbrig/hawkbot/lexer"
	"github.com/aallbrig/hawkbot/params"
)

// Parser turns text into commands. A Parser owns one lexer, so Parse calls
// on the same Parser are serialized; use one Parser per goroutine for
// parallel parsing.
type Parser struct {
	registry *grammar.Registry
	log      zerolog.Logger

	mu    sync.Mutex
	lexer *lexer.Lexer
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for binding decisions.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Parser) { p.log = l }
}

// New returns a parser for reg.
func New(reg *grammar.Registry, opts ...Option) *Parser {
	p := &Parser{
		registry: reg,
		log:      log.Logger,
		lexer:    lexer.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the grammar the parser binds against.
func (p *Parser) Registry() *grammar.Registry { return p.registry }

// Parse parses one line of prefix-free command text.
//
// It returns (nil, nil) when the line is not a command: the first word is
// unknown, or some argument cannot be bound to any parameter. A parameter
// that rejects its argument returns the parameter's error (a
// *params.ParseError or a feedback error); tokenizer failures are returned
// wrapped.
func (p *Parser) Parse(line string) (*Command, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lexer.Reset(line)
	b := &binder{registry: p.registry, log: p.log}

	first, err := p.lexer.Next()
	if err != nil {
		return nil, fmt.Errorf("tokenize %q: %w", line, err)
	}
	if first.Kind != lexer.Word {
		p.log.Debug().Str("line", line).Msg("command not found")
		return nil, nil
	}

	pending, hasPending := first, true
	for {
		tok, err := p.lexer.Next()
		if err != nil {
			return nil, fmt.Errorf("tokenize %q: %w", line, err)
		}

		if tok.Kind == lexer.List {
			var name *lexer.Token
			if hasPending {
				name = &pending
			}
			res, err := b.addList(name, tok.Items)
			if err != nil {
				return nil, err
			}
			if res.failed() {
				b.logFailure(res)
				return nil, nil
			}
			hasPending = false
			continue
		}

		if hasPending {
			res, err := b.add(pending.Text)
			if err != nil {
				return nil, err
			}
			if res.failed() {
				b.logFailure(res)
				return nil, nil
			}
			if res.kind == stepSwitched {
				p.log.Debug().Str("command", b.base.Name).Stringer("mode", res.mode).Msg("parsing mode changed")
				if res.mode == grammar.ModeRest {
					if rest := p.lexer.Remainder(tok.Start); rest != "" {
						res, err := b.bindPositional(params.Token(rest))
						if err != nil {
							return nil, err
						}
						if res.failed() {
							b.logFailure(res)
							return nil, nil
						}
					}
					return b.result(), nil
				}
				profile, err := profileFor(res.mode)
				if err != nil {
					return nil, err
				}
				if profile != p.lexer.Profile() {
					p.lexer.SetProfile(profile)
					if tok.Kind != lexer.EOF {
						// scan the lookahead again under the new word characters
						p.lexer.Rewind(tok.Start)
						hasPending = false
						continue
					}
				}
			}
		}

		if tok.Kind == lexer.EOF {
			break
		}
		pending, hasPending = tok, true
	}
	return b.result(), nil
}

func profileFor(m grammar.Mode) (lexer.Profile, error) {
	switch m {
	case grammar.ModeLexical:
		return lexer.Lexical, nil
	case grammar.ModePositional:
		return lexer.Positional, nil
	}
	return 0, fmt.Errorf("parsing mode %s has no lexer profile", m)
}
