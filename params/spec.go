package params

import (
	"errors"
	"fmt"
)

// Spec describes how to construct a parameter. It is the static half of a
// grammar entry; New turns it into a fresh Param for every parse.
type Spec struct {
	Kind     Kind
	Alias    string
	Help     string
	Optional bool

	// OptionalSet records that Optional was given explicitly. Otherwise the
	// grammar decides from the command's parsing mode.
	OptionalSet bool

	Choices []string
	Default string

	Min          *int
	Max          *int
	DefaultCount *int

	AllowedFlags string
}

// Option configures a Spec.
type Option func(*Spec)

// WithAlias registers a short name for the parameter.
func WithAlias(alias string) Option {
	return func(s *Spec) { s.Alias = alias }
}

// WithHelp overrides the kind's default description.
func WithHelp(help string) Option {
	return func(s *Spec) { s.Help = help }
}

// Optional marks the parameter as optional (or not), overriding the
// mode-dependent default.
func Optional(optional bool) Option {
	return func(s *Spec) {
		s.Optional = optional
		s.OptionalSet = true
	}
}

// Choices sets the legal values of a choice parameter.
func Choices(values ...string) Option {
	return func(s *Spec) { s.Choices = append([]string(nil), values...) }
}

// Default sets the initial value of a choice parameter.
func Default(value string) Option {
	return func(s *Spec) { s.Default = value }
}

// Min sets the lower clamp of a count parameter.
func Min(n int) Option {
	return func(s *Spec) { s.Min = &n }
}

// Max sets the upper clamp of a count parameter.
func Max(n int) Option {
	return func(s *Spec) { s.Max = &n }
}

// DefaultCount sets the value a count parameter starts with.
func DefaultCount(n int) Option {
	return func(s *Spec) { s.DefaultCount = &n }
}

// AllowedFlags sets the letters a flags parameter accepts.
func AllowedFlags(letters string) Option {
	return func(s *Spec) { s.AllowedFlags = letters }
}

// NewSpec builds a Spec for kind with opts applied.
func NewSpec(kind Kind, opts ...Option) Spec {
	s := Spec{Kind: kind}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Validate checks that the options given fit the kind.
func (s Spec) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("unknown parameter kind %d", int(s.Kind))
	}
	var errs []error
	if s.Kind != KindChoice {
		if len(s.Choices) > 0 || s.Default != "" {
			errs = append(errs, fmt.Errorf("choices/default only apply to choice parameters, not %s", s.Kind))
		}
	} else {
		if len(s.Choices) == 0 {
			errs = append(errs, errors.New("choice parameter needs at least one choice"))
		}
		if s.Default != "" && !contains(s.Choices, s.Default) {
			errs = append(errs, fmt.Errorf("default %q is not one of the choices", s.Default))
		}
	}
	if s.Kind != KindCount && (s.Min != nil || s.Max != nil || s.DefaultCount != nil) {
		errs = append(errs, fmt.Errorf("min/max/default count only apply to count parameters, not %s", s.Kind))
	}
	if s.Min != nil && s.Max != nil && *s.Min > *s.Max {
		errs = append(errs, fmt.Errorf("min %d is greater than max %d", *s.Min, *s.Max))
	}
	if s.Kind != KindFlags && s.AllowedFlags != "" {
		errs = append(errs, fmt.Errorf("allowed flags only apply to flags parameters, not %s", s.Kind))
	}
	for _, r := range s.AllowedFlags {
		if r < 'a' || r > 'z' {
			errs = append(errs, fmt.Errorf("flag %q is not a lowercase letter", r))
		}
	}
	return errors.Join(errs...)
}

// New constructs a fresh parameter instance from s.
func New(s Spec) Param {
	b := newBase(s)
	switch s.Kind {
	case KindString:
		return &String{base: b}
	case KindQuotedString:
		return &QuotedString{base: b}
	case KindChoice:
		return newChoice(b, s.Choices, s.Default)
	case KindLimit:
		return &Limit{base: b}
	case KindCount:
		return newCount(b, s.Min, s.Max, s.DefaultCount)
	case KindFlags:
		return newFlags(b, s.AllowedFlags)
	case KindUsers:
		return &Users{resolvable: resolvable{base: b}}
	case KindChannels:
		return &Channels{resolvable: resolvable{base: b}}
	case KindMessageURL:
		return &MessageURL{base: b}
	}
	panic(fmt.Sprintf("params: no constructor for kind %s", s.Kind))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
