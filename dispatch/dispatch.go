// Package dispatch turns chat messages into replies: it strips the guild's
// command prefix, parses the rest, resolves names and routes the command
// to its handler.
package dispatch

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aallbrig/hawkbot/config"
	"github.com/aallbrig/hawkbot/feedback"
	"github.com/aallbrig/hawkbot/params"
	"github.com/aallbrig/hawkbot/parser"
	"github.com/aallbrig/hawkbot/store"
)

// InternalErrorText replaces the message of any error that is not meant
// for the user.
const InternalErrorText = "An error has occurred."

// Message is an incoming chat message.
type Message struct {
	GuildID   string
	ChannelID string
	AuthorID  string
	Content   string
}

// Field is a titled section of a reply.
type Field struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Reply is what the bot answers with. Error marks feedback and failures.
type Reply struct {
	Title  string  `yaml:"title,omitempty" json:"title,omitempty"`
	Body   string  `yaml:"body,omitempty" json:"body,omitempty"`
	Fields []Field `yaml:"fields,omitempty" json:"fields,omitempty"`
	Error  bool    `yaml:"error,omitempty" json:"error,omitempty"`
}

// String renders the reply as plain text.
func (r Reply) String() string {
	var parts []string
	if r.Title != "" {
		parts = append(parts, r.Title)
	}
	if r.Body != "" {
		parts = append(parts, r.Body)
	}
	for _, f := range r.Fields {
		parts = append(parts, f.Name+"\n"+f.Value)
	}
	return strings.Join(parts, "\n\n")
}

// Store is the persistent state the dispatcher needs.
type Store interface {
	Prefix(guildID string) (string, bool, error)
	SetPrefix(guildID, prefix string) error
	ResetPrefix(guildID string) error
	PinsChannel(guildID string) (string, error)
	SetPinsChannel(guildID, channelID string) error
	DownloadBlacklist(guildID string) ([]string, error)
	AddToDownloadBlacklist(guildID string, channelIDs ...string) error
	RemoveFromDownloadBlacklist(guildID string, channelIDs ...string) error
	RecordCommand(e store.Entry) (store.Entry, error)
	LastCommand(guildID, channelID string) (*store.Entry, error)
}

// Call is a parsed command together with the message that carried it.
type Call struct {
	Message
	Line    string
	Command *parser.Command
}

// HandlerFunc answers one command.
type HandlerFunc func(ctx context.Context, call Call) (Reply, error)

// Dispatcher routes messages to command handlers. It is safe for
// concurrent use.
type Dispatcher struct {
	parser     *parser.Parser
	store      Store
	backend    Backend
	dir        params.Directory
	log        zerolog.Logger
	prefix     string
	owner      string
	intn       func(n int) int
	handlers   map[string]HandlerFunc
	repeatable map[string]bool

	mu       sync.RWMutex
	prefixes map[string]string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for internal failures and routing.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithBackend sets where data requests go. The default is DryRun.
func WithBackend(b Backend) Option {
	return func(d *Dispatcher) { d.backend = b }
}

// WithDirectory sets the users and channels names are resolved against.
func WithDirectory(dir params.Directory) Option {
	return func(d *Dispatcher) { d.dir = dir }
}

// WithPrefix sets the prefix used by guilds without a custom one.
func WithPrefix(prefix string) Option {
	return func(d *Dispatcher) { d.prefix = prefix }
}

// WithOwner sets the user allowed to run admin commands.
func WithOwner(id string) Option {
	return func(d *Dispatcher) { d.owner = id }
}

// WithRand replaces the random source used by vibe check.
func WithRand(intn func(n int) int) Option {
	return func(d *Dispatcher) { d.intn = intn }
}

// WithHandler registers or replaces the handler of a command. Handlers
// registered for a root command also serve its subcommands unless those
// have their own.
func WithHandler(name string, h HandlerFunc) Option {
	return func(d *Dispatcher) { d.handlers[name] = h }
}

type emptyDirectory struct{}

func (emptyDirectory) Members() []params.Entity  { return nil }
func (emptyDirectory) Channels() []params.Entity { return nil }

// New creates a Dispatcher.
func New(p *parser.Parser, s Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		parser:   p,
		store:    s,
		backend:  DryRun{},
		dir:      emptyDirectory{},
		log:      log.Logger,
		prefix:   config.DefaultPrefix,
		intn:     rand.IntN,
		prefixes: make(map[string]string),
		repeatable: map[string]bool{
			"generate":     true,
			"rquote":       true,
			"rquote guess": true,
			"rimage":       true,
		},
	}
	d.handlers = d.builtin()
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Prefix returns the command prefix of a guild, loading it once from the
// store.
func (d *Dispatcher) Prefix(guildID string) (string, error) {
	d.mu.RLock()
	prefix, ok := d.prefixes[guildID]
	d.mu.RUnlock()
	if ok {
		return prefix, nil
	}
	custom, set, err := d.store.Prefix(guildID)
	if err != nil {
		return "", err
	}
	prefix = d.prefix
	if set {
		prefix = custom
	}
	d.cachePrefix(guildID, prefix)
	return prefix, nil
}

func (d *Dispatcher) cachePrefix(guildID, prefix string) {
	d.mu.Lock()
	d.prefixes[guildID] = prefix
	d.mu.Unlock()
}

// Handle answers msg. It returns nil when the message is not meant for the
// bot or the command produced no reply.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) *Reply {
	prefix, err := d.Prefix(msg.GuildID)
	if err != nil {
		d.log.Error().Err(err).Str("guild", msg.GuildID).Msg("loading prefix failed")
		return errorReply(InternalErrorText)
	}
	line, ok := strings.CutPrefix(msg.Content, prefix)
	if !ok {
		return nil
	}
	return d.run(ctx, msg, line)
}

func (d *Dispatcher) run(ctx context.Context, msg Message, line string) *Reply {
	cmd, err := d.parser.Parse(line)
	if err != nil {
		d.log.Debug().Err(err).Str("line", line).Msg("command rejected")
		return errorReply(err.Error())
	}
	if cmd == nil {
		return nil
	}
	logger := d.log.With().Str("command", cmd.Base.Name).Str("guild", msg.GuildID).Logger()

	if cmd.Base.Root == "admin" && msg.AuthorID != d.owner {
		logger.Debug().Str("author", msg.AuthorID).Msg("admin command from non-owner ignored")
		return nil
	}
	h := d.handler(cmd)
	if h == nil {
		logger.Warn().Msg("no handler registered")
		return nil
	}
	if missing := cmd.Missing(); len(missing) > 0 {
		return errorReply("Missing required argument: " + strings.Join(missing, ", "))
	}

	reply, err := h(ctx, Call{Message: msg, Line: line, Command: cmd})
	if err != nil {
		var pe *params.ParseError
		if feedback.Is(err) || errors.As(err, &pe) {
			return errorReply(err.Error())
		}
		logger.Error().Err(err).Msg("command failed")
		return errorReply(InternalErrorText)
	}

	if d.repeatable[cmd.Base.Name] {
		_, err := d.store.RecordCommand(store.Entry{
			GuildID:   msg.GuildID,
			ChannelID: msg.ChannelID,
			AuthorID:  msg.AuthorID,
			Command:   cmd.Base.Name,
			Line:      line,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("recording command failed")
		}
	}
	if reply.Title == "" && reply.Body == "" && len(reply.Fields) == 0 {
		return nil
	}
	return &reply
}

func (d *Dispatcher) handler(cmd *parser.Command) HandlerFunc {
	if h, ok := d.handlers[cmd.Base.Name]; ok {
		return h
	}
	return d.handlers[cmd.Base.Root]
}

func errorReply(msg string) *Reply {
	return &Reply{Body: msg, Error: true}
}
