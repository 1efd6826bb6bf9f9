package params

import "errors"

// String holds a free text value.
type String struct {
	base
	Val string
	set bool
}

// Parse stores the token, or the first item of a list.
func (p *String) Parse(arg Arg) error {
	v, ok := arg.First()
	if !ok {
		return parseErr(p.kind, arg, errors.New("empty list"))
	}
	p.Val = v
	p.set = true
	return nil
}

func (p *String) IsSet() bool { return p.set }
func (p *String) Value() any  { return p.Val }

// QuotedString holds a quote-delimited value. Quote is the quote character
// used; a backtick marks multiline text. Regex is set when the text was
// wrapped in slashes inside the quotes ("/pattern/").
type QuotedString struct {
	base
	Val   string
	Quote string
	Regex bool
}

func (p *QuotedString) Parse(arg Arg) error {
	token, ok := arg.First()
	if !ok {
		return parseErr(p.kind, arg, errors.New("empty list"))
	}
	quote, regex, inner, ok := splitQuoted(token)
	if !ok {
		return parseErr(p.kind, arg, nil)
	}
	p.Val, p.Quote, p.Regex = inner, quote, regex
	return nil
}

// Multiline reports whether the value was given in the multiline quote.
func (p *QuotedString) Multiline() bool { return p.Quote == "`" }

func (p *QuotedString) IsSet() bool { return p.Quote != "" }

func (p *QuotedString) Value() any {
	if !p.IsSet() {
		return nil
	}
	return map[string]any{"value": p.Val, "quote": p.Quote, "regex": p.Regex}
}

// Choice holds one value out of a fixed set. Values outside the set are
// ignored and the previous value is kept.
type Choice struct {
	base
	Val     string
	choices []string
}

func newChoice(b base, choices []string, def string) *Choice {
	return &Choice{base: b, Val: def, choices: append([]string(nil), choices...)}
}

func (p *Choice) Parse(arg Arg) error {
	v, ok := arg.First()
	if ok && contains(p.choices, v) {
		p.Val = v
	}
	return nil
}

// Choices returns the legal values.
func (p *Choice) Choices() []string { return append([]string(nil), p.choices...) }

func (p *Choice) IsSet() bool { return p.Val != "" }

func (p *Choice) Value() any {
	if p.Val == "" {
		return nil
	}
	return p.Val
}
