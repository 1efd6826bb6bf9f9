package params

import (
	"sort"
	"strings"

	"github.com/aallbrig/hawkbot/feedback"
)

// Flags is a set of single-letter switches checked against a per-command
// allow-list.
type Flags struct {
	base
	letters map[rune]bool
	allowed map[rune]bool
}

func newFlags(b base, allowed string) *Flags {
	f := &Flags{base: b, letters: map[rune]bool{}, allowed: map[rune]bool{}}
	for _, r := range allowed {
		f.allowed[r] = true
	}
	return f
}

// Parse accepts "-abc" or a list of letters such as flags[a c]. Letters
// outside the allow-list produce a feedback error naming exactly those
// letters.
func (p *Flags) Parse(arg Arg) error {
	token := arg.Text
	if arg.IsList {
		token = "-" + strings.Join(arg.Items, "")
	}
	m := flagsRe.FindStringSubmatch(token)
	if m == nil {
		return parseErr(p.kind, arg, nil)
	}

	seen := map[rune]bool{}
	var unknown []string
	for _, r := range m[1] {
		if seen[r] {
			continue
		}
		seen[r] = true
		if !p.allowed[r] {
			unknown = append(unknown, string(r))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return feedback.Errorf("Flags %s are not recognized", strings.Join(unknown, ", "))
	}
	p.letters = seen
	return nil
}

// Has reports whether letter was given.
func (p *Flags) Has(letter rune) bool { return p.letters[letter] }

// Letters returns the given letters in sorted order.
func (p *Flags) Letters() []string {
	out := make([]string, 0, len(p.letters))
	for r := range p.letters {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

func (p *Flags) IsSet() bool { return len(p.letters) > 0 }
func (p *Flags) Value() any  { return p.Letters() }
