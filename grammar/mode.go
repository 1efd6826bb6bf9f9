package grammar

import "fmt"

// Mode is the parsing mode a command declares for its arguments.
type Mode int

const (
	// ModeLexical binds arguments by name or shorthand, in any order.
	ModeLexical Mode = iota
	// ModePositional binds arguments strictly in declaration order.
	ModePositional
	// ModeRest takes the rest of the line verbatim as one argument.
	ModeRest
)

var modeNames = [...]string{
	ModeLexical:    "lexical",
	ModePositional: "positional",
	ModeRest:       "rest",
}

func (m Mode) String() string {
	if m.Valid() {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is a declared mode.
func (m Mode) Valid() bool {
	return m >= ModeLexical && m <= ModeRest
}

// Positional reports whether arguments are bound by position.
func (m Mode) Positional() bool {
	return m == ModePositional || m == ModeRest
}

// ParseMode maps a mode name back to its value.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("unknown parsing mode %q", s)
}
