package params

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Limit is a min->max range where either bound may be missing.
type Limit struct {
	base
	Min *int
	Max *int
	set bool
}

// Parse accepts the shorthand "5->10", "5->", "->10" or a two item list.
func (p *Limit) Parse(arg Arg) error {
	var lo, hi string
	if arg.IsList {
		if len(arg.Items) != 2 {
			return parseErr(p.kind, arg, fmt.Errorf("want 2 items, got %d", len(arg.Items)))
		}
		lo, hi = arg.Items[0], arg.Items[1]
	} else {
		m := limitRe.FindStringSubmatch(arg.Text)
		if m == nil {
			return parseErr(p.kind, arg, nil)
		}
		lo, hi = m[1], m[2]
	}
	min, err := optionalInt(lo)
	if err != nil {
		return parseErr(p.kind, arg, err)
	}
	max, err := optionalInt(hi)
	if err != nil {
		return parseErr(p.kind, arg, err)
	}
	p.Min, p.Max, p.set = min, max, true
	return nil
}

func (p *Limit) IsSet() bool { return p.set }

func (p *Limit) Value() any {
	return map[string]any{"min": derefOrNil(p.Min), "max": derefOrNil(p.Max)}
}

// Count is a repeat count clamped to optional bounds.
type Count struct {
	base
	N     int
	valid bool
	min   *int
	max   *int
}

func newCount(b base, min, max, def *int) *Count {
	c := &Count{base: b, min: min, max: max}
	switch {
	case def != nil:
		c.N, c.valid = *def, true
	case min != nil:
		c.N, c.valid = *min, true
	}
	return c
}

// Parse accepts the shorthand "x5" (a bare "x" keeps the current value) or
// a one item list. The result is clamped into the configured bounds, so a
// zero or negative request comes back as the minimum.
func (p *Count) Parse(arg Arg) error {
	var digits string
	if arg.IsList {
		if len(arg.Items) == 0 {
			return parseErr(p.kind, arg, fmt.Errorf("empty list"))
		}
		digits = arg.Items[0]
	} else {
		m := countRe.FindStringSubmatch(arg.Text)
		if m == nil {
			return parseErr(p.kind, arg, nil)
		}
		digits = m[1]
	}
	if digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil {
			bound, ok := p.overflowBound(digits, err)
			if !ok {
				return parseErr(p.kind, arg, err)
			}
			n = bound
		}
		p.N, p.valid = n, true
	}
	if p.valid {
		if p.min != nil && p.N < *p.min {
			p.N = *p.min
		}
		if p.max != nil && p.N > *p.max {
			p.N = *p.max
		}
	}
	return nil
}

// overflowBound maps a count too large for an int onto the bound on its
// side of zero.
func (p *Count) overflowBound(digits string, err error) (int, bool) {
	if !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	bound := p.max
	if strings.HasPrefix(digits, "-") {
		bound = p.min
	}
	if bound == nil {
		return 0, false
	}
	return *bound, true
}

// Get returns the count and whether one is known.
func (p *Count) Get() (int, bool) { return p.N, p.valid }

func (p *Count) IsSet() bool { return p.valid }

func (p *Count) Value() any {
	if !p.valid {
		return nil
	}
	return p.N
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func derefOrNil(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
