// Package cmd implements the hawkbot CLI commands.
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aallbrig/hawkbot/config"
	"github.com/aallbrig/hawkbot/dispatch"
	"github.com/aallbrig/hawkbot/grammar"
	"github.com/aallbrig/hawkbot/params"
	"github.com/aallbrig/hawkbot/parser"
	"github.com/aallbrig/hawkbot/render"
	"github.com/aallbrig/hawkbot/roster"
	"github.com/aallbrig/hawkbot/store"
	"github.com/aallbrig/hawkbot/tui"
)

var (
	cfgInteractive bool
	cfgDebug       bool
	cfgNoColor     bool
	cfgOutput      string
	cfgPrefix      string
	cfgOwner       string
	cfgGuild       string
	cfgChannel     string
	cfgUser        string
	cfgRoster      string
	cfgDataDir     string
	cfgWorkers     int
)

// flagKeys maps persistent flags to their config keys.
var flagKeys = map[string]string{
	"no-color": "no_color",
	"output":   "output",
	"prefix":   "prefix",
	"owner":    "owner_id",
	"guild":    "guild",
	"channel":  "channel",
	"user":     "user",
	"roster":   "roster",
	"data-dir": "data_dir",
	"workers":  "workers",
}

const rootLong = `hawkbot parses chat messages against the bot's command grammar and
answers them like the bot would.

Without a subcommand, every line read from stdin is sent as a chat message
from the configured user, guild and channel. Lines must start with the
command prefix.

Examples:
  echo 'hb gen u[me] x3' | hawkbot     # one message from stdin
  hawkbot -i                           # interactive console
  hawkbot parse 'rq guess 5->10'       # show how a line binds
  hawkbot grammar --depth=1            # the command tree`

// NewRootCmd returns a fresh root command with flags reset to defaults.
func NewRootCmd() *cobra.Command {
	def := config.DefaultConfig()
	c := &cobra.Command{
		Use:           "hawkbot",
		Short:         "Parse and answer hawkbot chat commands",
		Long:          rootLong,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runConsole,
		Version:       versionString(),
	}
	c.SetVersionTemplate("{{.Version}}\n")
	f := c.PersistentFlags()
	f.BoolVarP(&cfgInteractive, "interactive", "i", false, "Launch interactive TUI")
	f.BoolVar(&cfgDebug, "debug", false, "Enable debug logging")
	f.BoolVar(&cfgNoColor, "no-color", false, "Disable color output")
	f.StringVar(&cfgOutput, "output", def.Output, "Output format: text, json, yaml")
	f.StringVar(&cfgPrefix, "prefix", def.Prefix, "Command prefix of guilds without a custom one")
	f.StringVar(&cfgOwner, "owner", "", "User allowed to run admin commands (default: the session user)")
	f.StringVar(&cfgGuild, "guild", def.Guild, "Guild the session talks in")
	f.StringVar(&cfgChannel, "channel", def.Channel, "Channel name or id the session talks in")
	f.StringVar(&cfgUser, "user", def.User, "User name or id the session talks as")
	f.StringVar(&cfgRoster, "roster", "", "YAML file with users and channels (default: built-in demo)")
	f.StringVar(&cfgDataDir, "data-dir", def.DataDir, "Directory of the settings and history database")
	f.IntVar(&cfgWorkers, "workers", def.Workers, "Parsers used by batch")

	c.AddCommand(newVersionCmd(), newParseCmd(), newBatchCmd(), newGrammarCmd(), newHistoryCmd())
	return c
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig merges .env, hawkbot.yaml, HAWKBOT_* variables and flags, then
// sets up logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	v := config.NewViper()
	for name, key := range flagKeys {
		if fl := cmd.Flags().Lookup(name); fl != nil {
			if err := v.BindPFlag(key, fl); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	cfg.Output, _ = config.ParseOutput(cfg.Output)

	logLevel := cfg.Level()
	if cfgDebug {
		logLevel = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(logLevel)
	return cfg, nil
}

func newRenderer(cfg *config.Config) *render.Renderer {
	opts := render.DefaultOptions()
	opts.Output = cfg.Output
	opts.NoColor = cfg.NoColor
	opts.Colors = cfg.Colors
	return render.New(opts)
}

// session is everything a chat session needs: persistent settings, the
// entity directory and a dispatcher speaking as the configured user.
type session struct {
	store  *store.Store
	parser *parser.Parser
	disp   *dispatch.Dispatcher
	who    dispatch.Message
}

func openSession(cfg *config.Config) (*session, error) {
	r, err := roster.Load(cfg.Roster)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	who := dispatch.Message{
		GuildID:   cfg.Guild,
		ChannelID: entityID(r.Channels(), cfg.Channel),
		AuthorID:  entityID(r.Members(), cfg.User),
	}
	owner := who.AuthorID
	if cfg.OwnerID != "" {
		owner = entityID(r.Members(), cfg.OwnerID)
	}

	p := parser.New(grammar.Hawkbot(), parser.WithLogger(log.Logger))
	d := dispatch.New(p, st,
		dispatch.WithPrefix(cfg.Prefix),
		dispatch.WithOwner(owner),
		dispatch.WithDirectory(r),
		dispatch.WithLogger(log.Logger),
	)
	log.Debug().
		Str("guild", who.GuildID).
		Str("channel", who.ChannelID).
		Str("author", who.AuthorID).
		Str("owner", owner).
		Msg("session opened")
	return &session{store: st, parser: p, disp: d, who: who}, nil
}

func (s *session) Close() error { return s.store.Close() }

// entityID maps a name or id to an id. Unknown keys are used as ids.
func entityID(list []params.Entity, key string) string {
	for _, e := range list {
		if e.ID == key {
			return e.ID
		}
	}
	for _, e := range list {
		if strings.EqualFold(e.Name, key) {
			return e.ID
		}
	}
	return key
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if cfgInteractive {
		return tui.Run(tui.NewModel(grammar.Hawkbot(), s.parser, s.disp, s.who, cfg))
	}

	r := newRenderer(cfg)
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		msg := s.who
		msg.Content = line
		reply := s.disp.Handle(cmd.Context(), msg)
		if reply == nil {
			log.Debug().Str("line", line).Msg("no reply")
			continue
		}
		if err := r.Reply(out, *reply); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read messages: %w", err)
	}
	return nil
}
