package params

import (
	"errors"
	"strings"

	"github.com/aallbrig/hawkbot/feedback"
)

// Entity is a user or channel known to the chat service.
type Entity struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Bot  bool   `json:"bot,omitempty" yaml:"bot,omitempty"`
}

// Directory is the live roster resolvable parameters are matched against.
// The parser never sees one; handlers resolve after parsing.
type Directory interface {
	Members() []Entity
	Channels() []Entity
}

// Resolvable is implemented by parameters holding raw names that still
// need to be matched against a Directory.
type Resolvable interface {
	Param
	Resolve(dir Directory) error
	Resolved() bool
}

// resolvable holds the raw names and, once resolved, the matching entities.
// Names never guess positionally: Kind.Test is always false for these.
type resolvable struct {
	base
	raw      []string
	entities []Entity
	resolved bool
}

// Parse stores raw names only.
func (p *resolvable) Parse(arg Arg) error {
	if arg.IsList {
		p.raw = append([]string(nil), arg.Items...)
	} else {
		p.raw = []string{arg.Text}
	}
	p.entities = nil
	p.resolved = false
	return nil
}

func (p *resolvable) resolve(candidates []Entity, noun string, skipBots bool) error {
	var (
		found []Entity
		errs  []error
	)
	for _, name := range p.raw {
		needle := strings.ToLower(name)
		var match *Entity
		for i := range candidates {
			c := candidates[i]
			if skipBots && c.Bot {
				continue
			}
			if strings.Contains(strings.ToLower(c.Name), needle) {
				match = &c
				break
			}
		}
		if match == nil {
			errs = append(errs, feedback.Errorf("%s %q could not be found", noun, name))
			continue
		}
		found = append(found, *match)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	p.entities = found
	p.resolved = true
	return nil
}

// Raw returns the names as typed.
func (p *resolvable) Raw() []string { return append([]string(nil), p.raw...) }

// Resolved reports whether Resolve succeeded.
func (p *resolvable) Resolved() bool { return p.resolved }

// Entities returns the resolved entities.
func (p *resolvable) Entities() []Entity { return append([]Entity(nil), p.entities...) }

// IDs returns the ids of the resolved entities.
func (p *resolvable) IDs() []string {
	ids := make([]string, 0, len(p.entities))
	for _, e := range p.entities {
		ids = append(ids, e.ID)
	}
	return ids
}

// Names returns the resolved names, or the raw names before resolution.
func (p *resolvable) Names() []string {
	if !p.resolved {
		return p.Raw()
	}
	names := make([]string, 0, len(p.entities))
	for _, e := range p.entities {
		names = append(names, e.Name)
	}
	return names
}

func (p *resolvable) IsSet() bool { return len(p.raw) > 0 }
func (p *resolvable) Value() any  { return p.Names() }

// Users is a list of user names. Bots are never matched.
type Users struct {
	resolvable
}

func (p *Users) Resolve(dir Directory) error {
	return p.resolve(dir.Members(), "User", true)
}

// Channels is a list of channel names.
type Channels struct {
	resolvable
}

func (p *Channels) Resolve(dir Directory) error {
	return p.resolve(dir.Channels(), "Channel", false)
}
