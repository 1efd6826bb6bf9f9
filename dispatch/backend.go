package dispatch

import (
	"context"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Request is work handed to the services that sit outside the bot: the
// message database, the generators and the chat transport.
type Request interface {
	Kind() string
}

// Backend executes requests. Implementations talk to the real services;
// DryRun only describes what would be sent.
type Backend interface {
	Handle(ctx context.Context, req Request) (Reply, error)
}

// GenerateRequest asks for generated messages.
type GenerateRequest struct {
	GuildID    string   `yaml:"guild_id"`
	Algorithm  string   `yaml:"algorithm"`
	UserIDs    []string `yaml:"user_ids,omitempty"`
	ChannelID  string   `yaml:"channel_id,omitempty"`
	MinWords   *int     `yaml:"min_words,omitempty"`
	MaxWords   *int     `yaml:"max_words,omitempty"`
	Count      int      `yaml:"count"`
	Blueprints []string `yaml:"blueprints,omitempty"`
}

func (GenerateRequest) Kind() string { return "generate" }

// QuoteRequest asks for random quotes. Guess hides the authors.
type QuoteRequest struct {
	GuildID   string   `yaml:"guild_id"`
	Guess     bool     `yaml:"guess"`
	UserIDs   []string `yaml:"user_ids,omitempty"`
	ChannelID string   `yaml:"channel_id,omitempty"`
	MinWords  *int     `yaml:"min_words,omitempty"`
	MaxWords  *int     `yaml:"max_words,omitempty"`
	Count     int      `yaml:"count"`
}

func (QuoteRequest) Kind() string { return "random quote" }

// ImageRequest asks for random previously shared images.
type ImageRequest struct {
	GuildID   string   `yaml:"guild_id"`
	UserIDs   []string `yaml:"user_ids,omitempty"`
	ChannelID string   `yaml:"channel_id,omitempty"`
	Count     int      `yaml:"count"`
}

func (ImageRequest) Kind() string { return "random image" }

// StatsRequest asks how many messages match a pattern. Pattern is the
// final regular expression; Phrase is what the user typed.
type StatsRequest struct {
	GuildID       string   `yaml:"guild_id"`
	Plot          bool     `yaml:"plot"`
	UserIDs       []string `yaml:"user_ids,omitempty"`
	ChannelIDs    []string `yaml:"channel_ids,omitempty"`
	Phrase        string   `yaml:"phrase"`
	Regex         bool     `yaml:"regex"`
	Pattern       string   `yaml:"pattern"`
	CaseSensitive bool     `yaml:"case_sensitive"`
	Anywhere      bool     `yaml:"anywhere"`
}

func (StatsRequest) Kind() string { return "message stats" }

// LinkQuoteRequest quotes one message, or a range of messages of one
// channel.
type LinkQuoteRequest struct {
	GuildID       string `yaml:"guild_id"`
	ChannelID     uint64 `yaml:"channel_id"`
	FromMessageID uint64 `yaml:"from_message_id"`
	ToMessageID   uint64 `yaml:"to_message_id,omitempty"`
	QuotedBy      string `yaml:"quoted_by"`
}

func (LinkQuoteRequest) Kind() string { return "quote" }

// PortalRequest links two channels.
type PortalRequest struct {
	GuildID       string `yaml:"guild_id"`
	FromChannelID string `yaml:"from_channel_id"`
	ToChannelID   string `yaml:"to_channel_id"`
}

func (PortalRequest) Kind() string { return "portal" }

// AdminRequest is an owner-only maintenance task.
type AdminRequest struct {
	GuildID    string   `yaml:"guild_id"`
	Action     string   `yaml:"action"`
	ChannelIDs []string `yaml:"channel_ids,omitempty"`
}

func (AdminRequest) Kind() string { return "admin" }

// DryRun is a Backend that answers every request with its YAML encoding.
type DryRun struct{}

func (DryRun) Handle(_ context.Context, req Request) (Reply, error) {
	data, err := yaml.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("encode %s request: %w", req.Kind(), err)
	}
	return Reply{Body: "would send " + req.Kind() + ":\n" + string(data)}, nil
}
