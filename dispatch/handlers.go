package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/aallbrig/hawkbot/feedback"
	"github.com/aallbrig/hawkbot/params"
	"github.com/aallbrig/hawkbot/parser"
)

var gdriveRe = regexp.MustCompile(`^https://drive\.google\.com/(?:file/d/|open\?id=)([^/]+)`)

var vibes = []string{
	"immaculate", "chaotic", "sleepy", "feral", "cozy", "unhinged", "crunchy",
	"power move", "***continental***", "moist", "radiant", "suspicious",
}

func (d *Dispatcher) builtin() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"ping":       d.ping,
		"help":       d.help,
		"config":     d.config,
		"admin":      d.admin,
		"again":      d.again,
		"cleanse":    d.cleanse,
		"quote":      d.quote,
		"portal":     d.portal,
		"gdrive":     d.gdrive,
		"vibe check": d.vibeCheck,
		"generate":   d.generate,
		"rquote":     d.randomQuote,
		"rimage":     d.randomImage,
		"mstats":     d.messageStats,
	}
}

func (d *Dispatcher) ping(context.Context, Call) (Reply, error) {
	return Reply{Body: ":)"}, nil
}

func (d *Dispatcher) help(_ context.Context, call Call) (Reply, error) {
	reg := d.parser.Registry()
	arg, err := parser.Get[*params.String](call.Command, "command")
	if err != nil {
		return Reply{}, err
	}
	if !arg.IsSet() {
		body := "Available commands\n- " + strings.Join(reg.CommandNames(), "\n- ") +
			"\n\nType `help <command>` to see help for that command."
		return Reply{Title: "Hawkbot help", Body: body}, nil
	}

	base := reg.FindBase(strings.TrimSpace(arg.Val), true)
	if base == nil {
		return Reply{Title: "This command doesn't exist", Body: "≳⋄≲"}, nil
	}
	h := base.Help()
	subcommands := "None"
	if len(h.Subcommands) > 0 {
		quoted := make([]string, len(h.Subcommands))
		for i, s := range h.Subcommands {
			quoted[i] = "`" + s + "`"
		}
		subcommands = strings.Join(quoted, ", ")
	}
	reply := Reply{Title: base.Name, Body: h.Description, Fields: []Field{{Name: "Subcommands", Value: subcommands}}}
	for _, p := range h.Params {
		title := p.Name
		if p.Alias != "" {
			title += "/" + p.Alias
		}
		if p.Shorthand != "" {
			title += "  [" + p.Shorthand + "]"
		}
		if p.Optional {
			title += "  *(optional)*"
		}
		reply.Fields = append(reply.Fields, Field{Name: title, Value: p.Description})
	}
	return reply, nil
}

func (d *Dispatcher) config(_ context.Context, call Call) (Reply, error) {
	path := call.Command.Base.Path
	if len(path) == 1 {
		return d.configSummary(call.GuildID)
	}
	switch path[1] {
	case "pins_channel":
		return d.configPinsChannel(call)
	case "prefix":
		return d.configPrefix(call)
	case "download_channels_blacklist":
		return d.configBlacklist(call)
	}
	return Reply{}, fmt.Errorf("unhandled config command %s", call.Command.Base.Name)
}

func (d *Dispatcher) configSummary(guildID string) (Reply, error) {
	prefix, err := d.Prefix(guildID)
	if err != nil {
		return Reply{}, err
	}
	pins, err := d.store.PinsChannel(guildID)
	if err != nil {
		return Reply{}, err
	}
	blacklist, err := d.store.DownloadBlacklist(guildID)
	if err != nil {
		return Reply{}, err
	}
	pinsName := "None"
	if pins != "" {
		pinsName = "#" + d.channelName(pins)
	}
	return Reply{
		Title: "Hawkbot settings",
		Fields: []Field{
			{Name: "Prefix", Value: `"` + prefix + `"`},
			{Name: "Pins channel", Value: pinsName},
			{Name: "Download blacklisted channels", Value: d.channelNames(blacklist)},
		},
	}, nil
}

func (d *Dispatcher) configPinsChannel(call Call) (Reply, error) {
	action, err := parser.Get[*params.Choice](call.Command, "action")
	if err != nil {
		return Reply{}, err
	}
	switch action.Val {
	case "set":
		if err := d.store.SetPinsChannel(call.GuildID, call.ChannelID); err != nil {
			return Reply{}, err
		}
		return Reply{Title: "Pins channel set"}, nil
	case "remove":
		if err := d.store.SetPinsChannel(call.GuildID, ""); err != nil {
			return Reply{}, err
		}
		return Reply{Title: "Pins channel removed"}, nil
	}
	id, err := d.store.PinsChannel(call.GuildID)
	if err != nil {
		return Reply{}, err
	}
	name := "None"
	if id != "" {
		name = "#" + d.channelName(id)
	}
	return Reply{Title: "Current pins channel", Body: name}, nil
}

func (d *Dispatcher) configPrefix(call Call) (Reply, error) {
	switch call.Command.Base.Name {
	case "config prefix set":
		arg, err := parser.Get[*params.QuotedString](call.Command, "prefix")
		if err != nil {
			return Reply{}, err
		}
		if arg.Val == "" {
			return Reply{}, feedback.New("The prefix can't be empty.")
		}
		if err := d.store.SetPrefix(call.GuildID, arg.Val); err != nil {
			return Reply{}, err
		}
		d.cachePrefix(call.GuildID, arg.Val)
		return Reply{Title: "Changed command prefix to " + arg.Val}, nil
	case "config prefix reset":
		if err := d.store.ResetPrefix(call.GuildID); err != nil {
			return Reply{}, err
		}
		d.cachePrefix(call.GuildID, d.prefix)
		return Reply{Title: `Reset command prefix to "` + d.prefix + `"`}, nil
	}
	prefix, err := d.Prefix(call.GuildID)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Title: "Current prefix", Body: `"` + prefix + `"`}, nil
}

func (d *Dispatcher) configBlacklist(call Call) (Reply, error) {
	action, err := parser.Get[*params.Choice](call.Command, "action")
	if err != nil {
		return Reply{}, err
	}
	switch action.Val {
	case "add":
		if err := d.store.AddToDownloadBlacklist(call.GuildID, call.ChannelID); err != nil {
			return Reply{}, err
		}
		return Reply{Title: "Added this channel to the download blacklist"}, nil
	case "remove":
		if err := d.store.RemoveFromDownloadBlacklist(call.GuildID, call.ChannelID); err != nil {
			return Reply{}, err
		}
		return Reply{Title: "Removed this channel from the download blacklist"}, nil
	}
	ids, err := d.store.DownloadBlacklist(call.GuildID)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Title: "Download blacklisted channels", Body: d.channelNames(ids)}, nil
}

func (d *Dispatcher) admin(ctx context.Context, call Call) (Reply, error) {
	req := AdminRequest{GuildID: call.GuildID}
	switch call.Command.Base.Name {
	case "admin init guild":
		req.Action = "init guild"
	case "admin chain":
		req.Action = "chain"
	case "admin download":
		req.Action = "download"
		ids, err := d.downloadChannels(call)
		if err != nil {
			return Reply{}, err
		}
		req.ChannelIDs = ids
	default:
		return Reply{}, feedback.Errorf("Pick one of: %s", strings.Join(call.Command.Base.Subcommands(), ", "))
	}
	return d.backend.Handle(ctx, req)
}

// downloadChannels returns the requested channels, or every channel that
// is not blacklisted.
func (d *Dispatcher) downloadChannels(call Call) ([]string, error) {
	channels, err := d.resolvedChannels(call.Command, "channels")
	if err != nil || channels != nil {
		return channels, err
	}
	blacklist, err := d.store.DownloadBlacklist(call.GuildID)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, c := range d.dir.Channels() {
		if !slices.Contains(blacklist, c.ID) {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (d *Dispatcher) again(ctx context.Context, call Call) (Reply, error) {
	last, err := d.store.LastCommand(call.GuildID, call.ChannelID)
	if err != nil {
		return Reply{}, err
	}
	if last == nil {
		return Reply{}, feedback.New("There is no command to repeat in this channel.")
	}
	d.log.Debug().Str("line", last.Line).Msg("repeating command")
	if reply := d.run(ctx, call.Message, last.Line); reply != nil {
		return *reply, nil
	}
	return Reply{}, nil
}

func (d *Dispatcher) cleanse(context.Context, Call) (Reply, error) {
	return Reply{Body: "```." + strings.Repeat("\n", 50) + ".```"}, nil
}

// DirectLink turns a Google Drive share link into a direct download link.
func DirectLink(url string) (string, bool) {
	m := gdriveRe.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return "https://drive.google.com/uc?export=download&id=" + m[1], true
}

func (d *Dispatcher) gdrive(_ context.Context, call Call) (Reply, error) {
	url, err := parser.Get[*params.String](call.Command, "url")
	if err != nil {
		return Reply{}, err
	}
	link, ok := DirectLink(url.Val)
	if !ok {
		return Reply{}, feedback.New("This isn't a Google Drive share link.")
	}
	return Reply{Body: link}, nil
}

func (d *Dispatcher) quote(ctx context.Context, call Call) (Reply, error) {
	url1, err := parser.Get[*params.MessageURL](call.Command, "url1")
	if err != nil {
		return Reply{}, err
	}
	url2, err := parser.Get[*params.MessageURL](call.Command, "url2")
	if err != nil {
		return Reply{}, err
	}
	req := LinkQuoteRequest{
		GuildID:       call.GuildID,
		ChannelID:     url1.ChannelID,
		FromMessageID: url1.MessageID,
		QuotedBy:      d.userName(call.AuthorID),
	}
	if url2.IsSet() {
		if url1.ChannelID != url2.ChannelID {
			return Reply{}, feedback.New("Messages must be from the same channel.")
		}
		req.ToMessageID = url2.MessageID
	}
	reply, err := d.backend.Handle(ctx, req)
	if err != nil {
		return Reply{}, err
	}
	reply.Fields = append(reply.Fields, Field{Name: "Quoted by", Value: req.QuotedBy})
	return reply, nil
}

func (d *Dispatcher) portal(ctx context.Context, call Call) (Reply, error) {
	channels, err := d.resolvedChannels(call.Command, "channel")
	if err != nil {
		return Reply{}, err
	}
	if len(channels) == 0 {
		return Reply{}, feedback.New("Pick a channel to open the portal to, like `portal c[general]`.")
	}
	reply, err := d.backend.Handle(ctx, PortalRequest{
		GuildID:       call.GuildID,
		FromChannelID: call.ChannelID,
		ToChannelID:   channels[0],
	})
	if err != nil {
		return Reply{}, err
	}
	reply.Title = "Portal to " + d.channelName(channels[0])
	return reply, nil
}

func (d *Dispatcher) vibeCheck(context.Context, Call) (Reply, error) {
	return Reply{Body: "vibe: " + vibes[d.intn(len(vibes))]}, nil
}

func (d *Dispatcher) generate(ctx context.Context, call Call) (Reply, error) {
	cmd := call.Command
	algorithm, err := parser.Get[*params.Choice](cmd, "algorithm")
	if err != nil {
		return Reply{}, err
	}
	switch algorithm.Val {
	case "1", "original", "markov":
	default:
		return Reply{}, feedback.Errorf("This algorithm (%s) does not exist", algorithm.Val)
	}

	req := GenerateRequest{GuildID: call.GuildID, Algorithm: algorithm.Val}
	var names []string
	users, err := parser.Get[*params.Users](cmd, "users")
	if err != nil {
		return Reply{}, err
	}
	if isMe(users) {
		req.UserIDs = []string{call.AuthorID}
		names = []string{d.userName(call.AuthorID)}
		err = cmd.Resolve(d.dir, "users")
	} else {
		err = cmd.Resolve(d.dir)
		req.UserIDs, names = users.IDs(), users.Names()
	}
	if err != nil {
		return Reply{}, err
	}
	if req.ChannelID, err = d.firstChannel(cmd); err != nil {
		return Reply{}, err
	}
	if req.MinWords, req.MaxWords, err = limitOf(cmd); err != nil {
		return Reply{}, err
	}
	if req.Count, err = countOf(cmd); err != nil {
		return Reply{}, err
	}
	blueprint, err := parser.Get[*params.QuotedString](cmd, "blueprint")
	if err != nil {
		return Reply{}, err
	}
	if blueprint.IsSet() {
		if blueprint.Multiline() {
			req.Blueprints = strings.Split(blueprint.Val, "\n")
		} else {
			req.Blueprints = []string{blueprint.Val}
		}
	}

	reply, err := d.backend.Handle(ctx, req)
	if err != nil {
		return Reply{}, err
	}
	if len(names) == 0 {
		for _, u := range d.dir.Members() {
			if !u.Bot {
				names = append(names, u.Name)
			}
		}
	}
	reply.Title = mergeNames(names) + " once said..."
	return reply, nil
}

func (d *Dispatcher) randomQuote(ctx context.Context, call Call) (Reply, error) {
	cmd := call.Command
	req := QuoteRequest{GuildID: call.GuildID, Guess: cmd.Base.Name == "rquote guess"}
	if err := cmd.Resolve(d.dir); err != nil {
		return Reply{}, err
	}
	if !req.Guess {
		users, err := parser.Get[*params.Users](cmd, "users")
		if err != nil {
			return Reply{}, err
		}
		if users.IsSet() {
			req.UserIDs = users.IDs()
		}
	}
	var err error
	if req.ChannelID, err = d.firstChannel(cmd); err != nil {
		return Reply{}, err
	}
	if req.MinWords, req.MaxWords, err = limitOf(cmd); err != nil {
		return Reply{}, err
	}
	if req.Count, err = countOf(cmd); err != nil {
		return Reply{}, err
	}
	reply, err := d.backend.Handle(ctx, req)
	if err != nil {
		return Reply{}, err
	}
	if req.Guess {
		reply.Title = "???"
	}
	return reply, nil
}

func (d *Dispatcher) randomImage(ctx context.Context, call Call) (Reply, error) {
	cmd := call.Command
	if err := cmd.Resolve(d.dir); err != nil {
		return Reply{}, err
	}
	users, err := parser.Get[*params.Users](cmd, "users")
	if err != nil {
		return Reply{}, err
	}
	req := ImageRequest{GuildID: call.GuildID}
	if users.IsSet() {
		req.UserIDs = users.IDs()
	}
	if req.ChannelID, err = d.firstChannel(cmd); err != nil {
		return Reply{}, err
	}
	if req.Count, err = countOf(cmd); err != nil {
		return Reply{}, err
	}
	return d.backend.Handle(ctx, req)
}

// SearchPattern builds the regular expression mstats searches with. Plain
// phrases are escaped; unless anywhere is set the match must sit on word
// boundaries.
func SearchPattern(text string, regex, anywhere bool) string {
	pattern := text
	if !regex {
		pattern = regexp.QuoteMeta(pattern)
	}
	if !anywhere {
		pattern = `\b` + pattern + `\b`
	}
	return pattern
}

func (d *Dispatcher) messageStats(ctx context.Context, call Call) (Reply, error) {
	cmd := call.Command
	pattern, err := parser.Get[*params.QuotedString](cmd, "pattern")
	if err != nil {
		return Reply{}, err
	}
	if !pattern.IsSet() {
		return Reply{}, feedback.New(`Give a quoted phrase to search for, like "hello" or "/hel+o/".`)
	}
	flags, err := parser.Get[*params.Flags](cmd, "flags")
	if err != nil {
		return Reply{}, err
	}
	if err := cmd.Resolve(d.dir); err != nil {
		return Reply{}, err
	}
	users, err := parser.Get[*params.Users](cmd, "users")
	if err != nil {
		return Reply{}, err
	}
	channels, err := parser.Get[*params.Channels](cmd, "channels")
	if err != nil {
		return Reply{}, err
	}

	req := StatsRequest{
		GuildID:       call.GuildID,
		Plot:          cmd.Base.Name == "mstats plot",
		Phrase:        pattern.Val,
		Regex:         pattern.Regex,
		CaseSensitive: flags.Has('c'),
		Anywhere:      flags.Has('a'),
	}
	if users.IsSet() {
		req.UserIDs = users.IDs()
	}
	if channels.IsSet() {
		req.ChannelIDs = channels.IDs()
	}
	req.Pattern = SearchPattern(pattern.Val, pattern.Regex, req.Anywhere)
	if _, err := regexp.Compile(req.Pattern); err != nil {
		return Reply{}, feedback.Errorf("Invalid regex pattern /%s/", pattern.Val)
	}

	reply, err := d.backend.Handle(ctx, req)
	if err != nil {
		return Reply{}, err
	}
	if !req.Plot {
		if req.Regex {
			reply.Title = "Stats for regex pattern /" + pattern.Val + "/"
		} else {
			reply.Title = `Stats for phrase "` + pattern.Val + `"`
		}
	}
	return reply, nil
}

func isMe(users *params.Users) bool {
	raw := users.Raw()
	return len(raw) == 1 && raw[0] == "me"
}

func (d *Dispatcher) resolvedChannels(cmd *parser.Command, name string) ([]string, error) {
	channels, err := parser.Get[*params.Channels](cmd, name)
	if err != nil || !channels.IsSet() {
		return nil, err
	}
	if !channels.Resolved() {
		if err := channels.Resolve(d.dir); err != nil {
			return nil, err
		}
	}
	return channels.IDs(), nil
}

func (d *Dispatcher) firstChannel(cmd *parser.Command) (string, error) {
	ids, err := d.resolvedChannels(cmd, "channels")
	if err != nil || len(ids) == 0 {
		return "", err
	}
	return ids[0], nil
}

func limitOf(cmd *parser.Command) (min, max *int, err error) {
	limit, err := parser.Get[*params.Limit](cmd, "limit")
	if err != nil {
		return nil, nil, err
	}
	return limit.Min, limit.Max, nil
}

func countOf(cmd *parser.Command) (int, error) {
	count, err := parser.Get[*params.Count](cmd, "count")
	if err != nil {
		return 0, err
	}
	if n, ok := count.Get(); ok {
		return n, nil
	}
	return 1, nil
}

func (d *Dispatcher) userName(id string) string {
	for _, u := range d.dir.Members() {
		if u.ID == id {
			return u.Name
		}
	}
	return id
}

func (d *Dispatcher) channelName(id string) string {
	for _, c := range d.dir.Channels() {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

func (d *Dispatcher) channelNames(ids []string) string {
	if len(ids) == 0 {
		return "None"
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = d.channelName(id)
	}
	return strings.Join(names, ", ")
}

func mergeNames(names []string) string {
	switch len(names) {
	case 0:
		return "Someone"
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " & " + names[len(names)-1]
}
