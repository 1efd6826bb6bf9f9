package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aallbrig/hawkbot/lexer"
)

func texts(t *testing.T, l *lexer.Lexer) []any {
	t.Helper()
	toks, err := l.All()
	require.NoError(t, err)
	out := make([]any, 0, len(toks))
	for _, tok := range toks {
		if tok.Kind == lexer.List {
			out = append(out, tok.Items)
			continue
		}
		out = append(out, tok.Text)
	}
	return out
}

func TestLexicalProfile(t *testing.T) {
	tests := []struct {
		input string
		want  []any
	}{
		{"gen x5 3->3", []any{"gen", "x5", "3->3"}},
		{"gen users[hawk chance lob]", []any{"gen", "users", []string{"hawk", "chance", "lob"}}},
		{`seed["initial text"]`, []any{"seed", []string{`"initial text"`}}},
		{`ms -cf c[convo images] "/regex (?P<pattern>.+)/"`,
			[]any{"ms", "-cf", "c", []string{"convo", "images"}, `"/regex (?P<pattern>.+)/"`}},
		{"count[-5]", []any{"count", []string{"-5"}}},
		{"a,b;c", []any{"a", ",", "b", ";", "c"}},
		{"it's", []any{"it's"}},
		{"  spaced   out  ", []any{"spaced", "out"}},
		{"u[]", []any{"u", []string{}}},
		{"café x2", []any{"café", "x2"}},
		{"`multi\nline`", []any{"`multi\nline`"}},
		{"", []any{}},
	}
	for _, tt := range tests {
		l := lexer.New()
		l.Reset(tt.input)
		assert.Equal(t, tt.want, texts(t, l), tt.input)
	}
}

func TestPositionalProfileKeepsURLs(t *testing.T) {
	l := lexer.New()
	l.Reset("https://drive.google.com/open?id=abc,def [x] {y}")
	l.SetProfile(lexer.Positional)
	assert.Equal(t, []any{"https://drive.google.com/open?id=abc,def", "[x]", "{y}"}, texts(t, l))
}

func TestQuotedTokensKeepQuotes(t *testing.T) {
	l := lexer.New()
	l.Reset(`'this is my seed' "a" ` + "`b c`")
	assert.Equal(t, []any{"'this is my seed'", `"a"`, "`b c`"}, texts(t, l))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{`"never closed`, lexer.ErrUnterminatedQuote},
		{"u[hawk chance", lexer.ErrUnclosedList},
		{"u[hawk [chance]]", lexer.ErrNestedList},
	}
	for _, tt := range tests {
		l := lexer.New()
		l.Reset(tt.input)
		_, err := l.All()
		assert.ErrorIs(t, err, tt.want, tt.input)
	}
}

func TestRewindAndRemainder(t *testing.T) {
	l := lexer.New()
	l.Reset("help command with subcommands  ")

	first, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, "help", first.Text)

	second, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, 5, second.Start)
	assert.Equal(t, "command with subcommands", l.Remainder(second.Start))

	l.Rewind(second.Start)
	l.SetProfile(lexer.Positional)
	again, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, "command", again.Text)

	next, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, "with", next.Text)
	assert.Equal(t, "", l.Remainder(len("help command with subcommands  ")))
}

func TestResetClearsState(t *testing.T) {
	l := lexer.New()
	l.Reset("quote https://a/b")
	l.SetProfile(lexer.Positional)
	_, err := l.Next()
	require.NoError(t, err)

	l.Reset("x,y")
	assert.Equal(t, lexer.Lexical, l.Profile())
	assert.Equal(t, []any{"x", ",", "y"}, texts(t, l))
}

func TestWordsAbsorbQuotes(t *testing.T) {
	tests := []struct {
		profile lexer.Profile
		input   string
		want    []any
	}{
		{lexer.Lexical, `say"hi there"`, []any{`say"hi`, `there"`}},
		{lexer.Lexical, "a`b` c", []any{"a`b`", "c"}},
		{lexer.Lexical, "'q'tail", []any{"'q'", "tail"}},
		{lexer.Positional, "`code` https://x/y?a=\"b\"", []any{"`code`", `https://x/y?a="b"`}},
		{lexer.Positional, "`unclosed tick", []any{"`unclosed", "tick"}},
		{lexer.Positional, `'spaced url' next`, []any{"'spaced url'", "next"}},
	}
	for _, tt := range tests {
		l := lexer.New()
		l.Reset(tt.input)
		l.SetProfile(tt.profile)
		assert.Equal(t, tt.want, texts(t, l), tt.input)
	}
}

func TestPositionalUnterminatedQuote(t *testing.T) {
	l := lexer.New()
	l.Reset(`quote "https://a/b`)
	l.SetProfile(lexer.Positional)
	_, err := l.All()
	assert.ErrorIs(t, err, lexer.ErrUnterminatedQuote)
}

func TestRemainderDropsTrailingSpace(t *testing.T) {
	input := "help   ping  \t"
	l := lexer.New()
	l.Reset(input)
	toks, err := l.All()
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, 7, toks[1].Start)
	assert.Equal(t, "ping", l.Remainder(toks[1].Start))
	assert.Equal(t, "help   ping", l.Remainder(0))
}

func TestTokenStartsAreByteOffsets(t *testing.T) {
	l := lexer.New()
	l.Reset("café, x2")
	toks, err := l.All()
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, []int{0, 5, 7}, []int{toks[0].Start, toks[1].Start, toks[2].Start})
}
