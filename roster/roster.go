// Package roster supplies the users and channels that resolvable command
// parameters are matched against in a local session.
package roster

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/aallbrig/hawkbot/params"
)

// Roster is a static entity directory.
type Roster struct {
	Users       []params.Entity `yaml:"users"`
	ChannelList []params.Entity `yaml:"channels"`
}

// Members implements params.Directory.
func (r *Roster) Members() []params.Entity { return r.Users }

// Channels implements params.Directory.
func (r *Roster) Channels() []params.Entity { return r.ChannelList }

// User returns the user with the given id.
func (r *Roster) User(id string) (params.Entity, bool) {
	return find(r.Users, id)
}

// Channel returns the channel with the given id.
func (r *Roster) Channel(id string) (params.Entity, bool) {
	return find(r.ChannelList, id)
}

// ChannelByName returns the first channel whose name equals name,
// ignoring case.
func (r *Roster) ChannelByName(name string) (params.Entity, bool) {
	for _, c := range r.ChannelList {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return params.Entity{}, false
}

func find(list []params.Entity, id string) (params.Entity, bool) {
	for _, e := range list {
		if e.ID == id {
			return e, true
		}
	}
	return params.Entity{}, false
}

// Parse decodes a YAML roster and checks that ids are present and unique.
func Parse(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Load reads a roster file. An empty path yields the demo roster.
func Load(path string) (*Roster, error) {
	if path == "" {
		return Demo(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return Parse(data)
}

// Marshal encodes the roster as YAML.
func (r *Roster) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

func (r *Roster) validate() error {
	for kind, list := range map[string][]params.Entity{"user": r.Users, "channel": r.ChannelList} {
		seen := make(map[string]bool, len(list))
		for _, e := range list {
			if e.ID == "" || e.Name == "" {
				return fmt.Errorf("%s entry needs both id and name: %+v", kind, e)
			}
			if seen[e.ID] {
				return fmt.Errorf("duplicate %s id %q", kind, e.ID)
			}
			seen[e.ID] = true
		}
	}
	return nil
}

// Demo is the built-in roster used when none is configured.
func Demo() *Roster {
	return &Roster{
		Users: []params.Entity{
			{ID: "100", Name: "Hawkbot", Bot: true},
			{ID: "101", Name: "you"},
			{ID: "102", Name: "hawk"},
			{ID: "103", Name: "chance"},
			{ID: "104", Name: "lob"},
		},
		ChannelList: []params.Entity{
			{ID: "200", Name: "general"},
			{ID: "201", Name: "deities"},
			{ID: "202", Name: "convo"},
			{ID: "203", Name: "images"},
		},
	}
}
