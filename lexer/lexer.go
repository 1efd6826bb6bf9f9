// Package lexer splits a command line into tokens the way a non-POSIX shell
// splitter does: no comments, three quote characters and a switchable set
// of word characters.
//
// Two profiles exist. The lexical profile breaks on brackets, quotes,
// commas, semicolons, parentheses and braces so that names, bracket lists
// and shorthand symbols stay apart. The positional profile keeps every
// printable character except quotes inside a word so URLs survive intact.
package lexer

import (
	"errors"
	"strings"
	"unicode"

	plexer "github.com/alecthomas/participle/v2/lexer"
)

// Profile selects the word character set.
type Profile int

const (
	Lexical Profile = iota
	Positional
)

func (p Profile) String() string {
	if p == Positional {
		return "positional"
	}
	return "lexical"
}

// Kind distinguishes plain tokens from bracket lists.
type Kind int

const (
	EOF Kind = iota
	Word
	List
)

// Token is one lexical item. Start is the byte offset of its first
// character, which lets the caller re-scan it under another profile.
type Token struct {
	Kind  Kind
	Text  string
	Items []string
	Start int
}

var (
	ErrUnterminatedQuote = errors.New("no closing quotation")
	ErrUnclosedList      = errors.New("list is missing a closing ]")
	ErrNestedList        = errors.New("lists cannot be nested")
)

// Both profiles share the rule names. A word may absorb quote characters
// once it has started; a token that opens with a quote runs to the same
// quote. Anything else is a one-character token.
const (
	space    = `[\s\v\x{85}\p{Z}]+`
	nonPrint = `\s\v\x{85}\p{Z}\p{C}`
)

var (
	lexicalRules = plexer.MustStateful(plexer.Rules{
		"Root": {
			{"Whitespace", space, nil},
			{"Word", "[^\"'`" + `(),;\[\]{}` + nonPrint + `][^(),;\[\]{}` + nonPrint + `]*`, nil},
			{"Quoted", `"[^"]*"|'[^']*'|` + "`[^`]*`", nil},
			{"Unterminated", "[\"'`]", nil},
			{"Char", `(?s).`, nil},
		},
	})
	positionalRules = plexer.MustStateful(plexer.Rules{
		"Root": {
			{"Whitespace", space, nil},
			{"Word", `[^"'` + nonPrint + `][^` + nonPrint + `]*`, nil},
			{"Quoted", `"[^"]*"|'[^']*'`, nil},
			{"Unterminated", `["']`, nil},
			{"Char", `(?s).`, nil},
		},
	})
)

type ruleSet struct {
	def          *plexer.StatefulDefinition
	whitespace   plexer.TokenType
	unterminated plexer.TokenType
}

func newRuleSet(def *plexer.StatefulDefinition) ruleSet {
	sym := def.Symbols()
	return ruleSet{def: def, whitespace: sym["Whitespace"], unterminated: sym["Unterminated"]}
}

var profiles = map[Profile]ruleSet{
	Lexical:    newRuleSet(lexicalRules),
	Positional: newRuleSet(positionalRules),
}

// Lexer is not safe for concurrent use; Reset it before every line.
type Lexer struct {
	input   string
	pos     int
	profile Profile

	// stream tokenizes input[base:] and is dropped whenever the profile or
	// scan position changes from outside.
	stream plexer.Lexer
	base   int
}

// New returns a lexer with no input.
func New() *Lexer {
	return &Lexer{}
}

// Reset replaces the input and restores the lexical profile and scan
// position, dropping anything left over from the previous line.
func (l *Lexer) Reset(input string) {
	l.input = input
	l.pos = 0
	l.profile = Lexical
	l.stream = nil
}

// SetProfile switches the word character set for subsequent tokens.
func (l *Lexer) SetProfile(p Profile) {
	if p != l.profile {
		l.profile = p
		l.stream = nil
	}
}

// Profile returns the active word character set.
func (l *Lexer) Profile() Profile { return l.profile }

// Rewind moves the scan position back to offset, usually a Token.Start.
func (l *Lexer) Rewind(offset int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(l.input) {
		offset = len(l.input)
	}
	l.pos = offset
	l.stream = nil
}

// Remainder returns the raw input from offset on, without tokenizing it.
// Trailing whitespace never belongs to the remainder, so "help   ping  "
// read from the offset of "ping" gives "ping". Leading and inner spacing
// is kept as typed.
func (l *Lexer) Remainder(offset int) string {
	if offset >= len(l.input) {
		return ""
	}
	if offset < 0 {
		offset = 0
	}
	return strings.TrimRightFunc(l.input[offset:], unicode.IsSpace)
}

// Next returns the next token. A lone "[" opens a list that runs to the
// next lone "]" and comes back as a single List token.
func (l *Lexer) Next() (Token, error) {
	tok, err := l.scan()
	if err != nil || tok.Kind != Word || tok.Text != "[" {
		return tok, err
	}

	list := Token{Kind: List, Start: tok.Start, Items: []string{}}
	for {
		item, err := l.scan()
		if err != nil {
			return Token{}, err
		}
		switch {
		case item.Kind == EOF:
			return Token{}, ErrUnclosedList
		case item.Text == "]":
			return list, nil
		case item.Text == "[":
			return Token{}, ErrNestedList
		}
		list.Items = append(list.Items, item.Text)
	}
}

// All drains the lexer. It is mostly useful for tests and debugging.
func (l *Lexer) All() ([]Token, error) {
	var out []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return out, err
		}
		if tok.Kind == EOF {
			return out, nil
		}
		out = append(out, tok)
	}
}

func (l *Lexer) scan() (Token, error) {
	rules := profiles[l.profile]
	if l.stream == nil {
		stream, err := rules.def.LexString("", l.input[l.pos:])
		if err != nil {
			return Token{}, err
		}
		l.stream, l.base = stream, l.pos
	}
	for {
		t, err := l.stream.Next()
		if err != nil {
			return Token{}, err
		}
		if t.EOF() {
			l.pos = len(l.input)
			return Token{Kind: EOF, Start: len(l.input)}, nil
		}
		start := l.base + t.Pos.Offset
		l.pos = start + len(t.Value)
		switch t.Type {
		case rules.whitespace:
			continue
		case rules.unterminated:
			l.pos = len(l.input)
			l.stream = nil
			return Token{}, ErrUnterminatedQuote
		}
		return Token{Kind: Word, Text: t.Value, Start: start}, nil
	}
}
