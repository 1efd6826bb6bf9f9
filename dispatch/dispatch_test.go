package dispatch_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aallbrig/hawkbot/dispatch"
	"github.com/aallbrig/hawkbot/grammar"
	"github.com/aallbrig/hawkbot/parser"
	"github.com/aallbrig/hawkbot/roster"
	"github.com/aallbrig/hawkbot/store"
)

const (
	guild   = "1"
	channel = "200"
	author  = "101"
	owner   = "102"
)

type recorder struct {
	requests []dispatch.Request
	err      error
}

func (r *recorder) Handle(_ context.Context, req dispatch.Request) (dispatch.Reply, error) {
	r.requests = append(r.requests, req)
	if r.err != nil {
		return dispatch.Reply{}, r.err
	}
	return dispatch.Reply{Body: "ok: " + req.Kind()}, nil
}

func (r *recorder) last(t *testing.T) dispatch.Request {
	t.Helper()
	require.NotEmpty(t, r.requests, "no request reached the backend")
	return r.requests[len(r.requests)-1]
}

type fixture struct {
	d       *dispatch.Dispatcher
	backend *recorder
	store   *store.Store
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, opts ...dispatch.Option) *fixture {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f := &fixture{backend: &recorder{}, store: s, logs: &bytes.Buffer{}}
	base := []dispatch.Option{
		dispatch.WithBackend(f.backend),
		dispatch.WithDirectory(roster.Demo()),
		dispatch.WithOwner(owner),
		dispatch.WithLogger(zerolog.New(f.logs)),
	}
	f.d = dispatch.New(parser.New(grammar.Hawkbot()), s, append(base, opts...)...)
	return f
}

func (f *fixture) send(content string) *dispatch.Reply {
	return f.sendAs(author, content)
}

func (f *fixture) sendAs(user, content string) *dispatch.Reply {
	return f.d.Handle(context.Background(), dispatch.Message{
		GuildID: guild, ChannelID: channel, AuthorID: user, Content: content,
	})
}

func TestIgnoresMessagesWithoutPrefix(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.send("ping"))
	assert.Nil(t, f.send("hb"))
	assert.Nil(t, f.send("hb not a command"))
	assert.Nil(t, f.send("hb [list]"))
}

func TestPing(t *testing.T) {
	f := newFixture(t)
	reply := f.send("hb ping")
	require.NotNil(t, reply)
	assert.Equal(t, ":)", reply.Body)
	assert.False(t, reply.Error)
}

func TestParseErrorsAreShown(t *testing.T) {
	f := newFixture(t)
	reply := f.send(`hb gen "never closed`)
	require.NotNil(t, reply)
	assert.True(t, reply.Error)
	assert.NotEqual(t, dispatch.InternalErrorText, reply.Body)

	reply = f.send("hb quote https://example.com/not/a/message")
	require.NotNil(t, reply)
	assert.True(t, reply.Error)
}

func TestMissingRequiredArgument(t *testing.T) {
	f := newFixture(t)
	reply := f.send("hb quote")
	require.NotNil(t, reply)
	assert.True(t, reply.Error)
	assert.Equal(t, "Missing required argument: url1", reply.Body)
}

func TestHelp(t *testing.T) {
	f := newFixture(t)

	reply := f.send("hb help")
	require.NotNil(t, reply)
	assert.Equal(t, "Hawkbot help", reply.Title)
	assert.True(t, strings.HasPrefix(reply.Body, "Available commands\n- ping\n- help\n"))
	assert.True(t, strings.HasSuffix(reply.Body, "Type `help <command>` to see help for that command."))

	reply = f.send("hb help gen")
	require.NotNil(t, reply)
	assert.Equal(t, "generate", reply.Title)
	assert.Equal(t, dispatch.Field{Name: "Subcommands", Value: "None"}, reply.Fields[0])
	titles := make([]string, 0, len(reply.Fields))
	for _, field := range reply.Fields[1:] {
		titles = append(titles, field.Name)
	}
	assert.Contains(t, titles, "algorithm/a  *(optional)*")
	assert.Contains(t, titles, "count  [x3]  *(optional)*")

	reply = f.send("hb help rquote")
	require.NotNil(t, reply)
	assert.Equal(t, "`guess`", reply.Fields[0].Value)

	reply = f.send("hb help nope")
	require.NotNil(t, reply)
	assert.Equal(t, "This command doesn't exist", reply.Title)
}

func TestConfigPrefix(t *testing.T) {
	f := newFixture(t)

	reply := f.send("hb config prefix")
	require.NotNil(t, reply)
	assert.Equal(t, `"hb "`, reply.Body)

	reply = f.send(`hb config prefix set "h!"`)
	require.NotNil(t, reply)
	assert.Equal(t, "Changed command prefix to h!", reply.Title)

	assert.Nil(t, f.send("hb ping"), "old prefix no longer works")
	reply = f.send("h!ping")
	require.NotNil(t, reply)
	assert.Equal(t, ":)", reply.Body)

	stored, ok, err := f.store.Prefix(guild)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "h!", stored)

	reply = f.send("h!config prefix reset")
	require.NotNil(t, reply)
	assert.Equal(t, `Reset command prefix to "hb "`, reply.Title)
	require.NotNil(t, f.send("hb ping"))
}

func TestPrefixIsLoadedFromStore(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetPrefix(guild, "!"))
	prefix, err := f.d.Prefix(guild)
	require.NoError(t, err)
	assert.Equal(t, "!", prefix)

	other, err := f.d.Prefix("other guild")
	require.NoError(t, err)
	assert.Equal(t, "hb ", other)
}

func TestConfigPinsChannel(t *testing.T) {
	f := newFixture(t)

	reply := f.send("hb config pins_channel")
	require.NotNil(t, reply)
	assert.Equal(t, "Current pins channel", reply.Title)
	assert.Equal(t, "None", reply.Body)

	reply = f.send("hb config pins_channel set")
	require.NotNil(t, reply)
	assert.Equal(t, "Pins channel set", reply.Title)

	reply = f.send("hb config pins_channel")
	require.NotNil(t, reply)
	assert.Equal(t, "#general", reply.Body)

	reply = f.send("hb config pins_channel remove")
	require.NotNil(t, reply)
	assert.Equal(t, "Pins channel removed", reply.Title)
	id, err := f.store.PinsChannel(guild)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestConfigDownloadBlacklist(t *testing.T) {
	f := newFixture(t)

	reply := f.send("hb config download_channels_blacklist add")
	require.NotNil(t, reply)
	assert.Equal(t, "Added this channel to the download blacklist", reply.Title)

	reply = f.send("hb config download_channels_blacklist")
	require.NotNil(t, reply)
	assert.Equal(t, "general", reply.Body)

	reply = f.send("hb config")
	require.NotNil(t, reply)
	assert.Equal(t, "Hawkbot settings", reply.Title)
	assert.Equal(t, dispatch.Field{Name: "Download blacklisted channels", Value: "general"}, reply.Fields[2])

	require.NotNil(t, f.send("hb config download_channels_blacklist remove"))
	ids, err := f.store.DownloadBlacklist(guild)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAdminIsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.send("hb admin chain"))
	assert.Empty(t, f.backend.requests)

	require.NotNil(t, f.sendAs(owner, "hb admin chain"))
	assert.Equal(t, dispatch.AdminRequest{GuildID: guild, Action: "chain"}, f.backend.last(t))
}

func TestAdminDownloadSkipsBlacklist(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddToDownloadBlacklist(guild, "201", "203"))

	require.NotNil(t, f.sendAs(owner, "hb admin download"))
	req := f.backend.last(t).(dispatch.AdminRequest)
	assert.Equal(t, []string{"200", "202"}, req.ChannelIDs)

	require.NotNil(t, f.sendAs(owner, "hb admin download c[deities]"))
	req = f.backend.last(t).(dispatch.AdminRequest)
	assert.Equal(t, []string{"201"}, req.ChannelIDs)
}

func TestCleanse(t *testing.T) {
	reply := newFixture(t).send("hb cleanse")
	require.NotNil(t, reply)
	assert.Equal(t, "```."+strings.Repeat("\n", 50)+".```", reply.Body)
}

func TestGdrive(t *testing.T) {
	f := newFixture(t)
	reply := f.send("hb gdrive https://drive.google.com/file/d/abc123/view?usp=sharing")
	require.NotNil(t, reply)
	assert.Equal(t, "https://drive.google.com/uc?export=download&id=abc123", reply.Body)

	reply = f.send("hb gdrive https://example.com/file")
	require.NotNil(t, reply)
	assert.True(t, reply.Error)
}

func TestDirectLink(t *testing.T) {
	link, ok := dispatch.DirectLink("https://drive.google.com/open?id=xyz")
	assert.True(t, ok)
	assert.Equal(t, "https://drive.google.com/uc?export=download&id=xyz", link)

	_, ok = dispatch.DirectLink("see https://drive.google.com/open?id=xyz")
	assert.False(t, ok)
}

func TestQuote(t *testing.T) {
	f := newFixture(t)
	reply := f.send("hb quote https://discord.com/channels/1/2/3 https://discord.com/channels/1/2/9")
	require.NotNil(t, reply)
	assert.Equal(t, dispatch.LinkQuoteRequest{
		GuildID: guild, ChannelID: 2, FromMessageID: 3, ToMessageID: 9, QuotedBy: "you",
	}, f.backend.last(t))

	reply = f.send("hb quote https://discord.com/channels/1/2/3 https://discord.com/channels/1/5/9")
	require.NotNil(t, reply)
	assert.True(t, reply.Error)
	assert.Equal(t, "Messages must be from the same channel.", reply.Body)
}

func TestPortal(t *testing.T) {
	f := newFixture(t)
	reply := f.send("hb portal c[convo]")
	require.NotNil(t, reply)
	assert.Equal(t, "Portal to convo", reply.Title)
	assert.Equal(t, dispatch.PortalRequest{GuildID: guild, FromChannelID: channel, ToChannelID: "202"}, f.backend.last(t))

	reply = f.send("hb portal")
	require.NotNil(t, reply)
	assert.True(t, reply.Error)
}

func TestVibeCheck(t *testing.T) {
	f := newFixture(t, dispatch.WithRand(func(int) int { return 0 }))
	reply := f.send("hb vc")
	require.NotNil(t, reply)
	assert.Equal(t, "vibe: immaculate", reply.Body)
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)

	reply := f.send(`hb gen u[hawk lob] c[deities] 5->10 x3 "once upon"`)
	require.NotNil(t, reply)
	assert.Equal(t, "hawk & lob once said...", reply.Title)
	req := f.backend.last(t).(dispatch.GenerateRequest)
	assert.Equal(t, "original", req.Algorithm)
	assert.Equal(t, []string{"102", "104"}, req.UserIDs)
	assert.Equal(t, "201", req.ChannelID)
	require.NotNil(t, req.MinWords)
	require.NotNil(t, req.MaxWords)
	assert.Equal(t, 5, *req.MinWords)
	assert.Equal(t, 10, *req.MaxWords)
	assert.Equal(t, 3, req.Count)
	assert.Equal(t, []string{"once upon"}, req.Blueprints)

	reply = f.send("hb gen u[me]")
	require.NotNil(t, reply)
	assert.Equal(t, "you once said...", reply.Title)
	assert.Equal(t, []string{author}, f.backend.last(t).(dispatch.GenerateRequest).UserIDs)

	require.NotNil(t, f.send("hb gen `first\nsecond`"))
	req = f.backend.last(t).(dispatch.GenerateRequest)
	assert.Equal(t, []string{"first", "second"}, req.Blueprints)
	assert.Equal(t, 1, req.Count)
}

func TestGenerateFeedback(t *testing.T) {
	f := newFixture(t)

	reply := f.send("hb gen a[madlibs]")
	require.NotNil(t, reply)
	assert.True(t, reply.Error)
	assert.Equal(t, "This algorithm (madlibs) does not exist", reply.Body)

	reply = f.send("hb gen u[nobody]")
	require.NotNil(t, reply)
	assert.True(t, reply.Error)
	assert.Contains(t, reply.Body, `"nobody" could not be found`)
	assert.Empty(t, f.backend.requests)
}

func TestRandomQuote(t *testing.T) {
	f := newFixture(t)

	require.NotNil(t, f.send("hb rq u[chance] ->4 x2"))
	req := f.backend.last(t).(dispatch.QuoteRequest)
	assert.False(t, req.Guess)
	assert.Equal(t, []string{"103"}, req.UserIDs)
	assert.Nil(t, req.MinWords)
	assert.Equal(t, 2, req.Count)

	reply := f.send("hb rq guess c[images]")
	require.NotNil(t, reply)
	assert.Equal(t, "???", reply.Title)
	req = f.backend.last(t).(dispatch.QuoteRequest)
	assert.True(t, req.Guess)
	assert.Empty(t, req.UserIDs)
	assert.Equal(t, "203", req.ChannelID)
}

func TestRandomImage(t *testing.T) {
	f := newFixture(t)
	require.NotNil(t, f.send("hb ri x9"))
	assert.Equal(t, dispatch.ImageRequest{GuildID: guild, Count: 5}, f.backend.last(t))
}

func TestMessageStats(t *testing.T) {
	f := newFixture(t)

	reply := f.send(`hb ms -c c[convo images] "what's up"`)
	require.NotNil(t, reply)
	assert.Equal(t, `Stats for phrase "what's up"`, reply.Title)
	req := f.backend.last(t).(dispatch.StatsRequest)
	assert.True(t, req.CaseSensitive)
	assert.False(t, req.Anywhere)
	assert.Equal(t, []string{"202", "203"}, req.ChannelIDs)
	assert.Equal(t, `\bwhat's up\b`, req.Pattern)

	reply = f.send(`hb ms plot -a "/hel+o/"`)
	require.NotNil(t, reply)
	req = f.backend.last(t).(dispatch.StatsRequest)
	assert.True(t, req.Plot)
	assert.Equal(t, "hel+o", req.Pattern)

	reply = f.send(`hb ms "/(unclosed/"`)
	require.NotNil(t, reply)
	assert.True(t, reply.Error)

	reply = f.send("hb ms")
	require.NotNil(t, reply)
	assert.True(t, reply.Error)
}

func TestSearchPattern(t *testing.T) {
	assert.Equal(t, `\ba\.b\b`, dispatch.SearchPattern("a.b", false, false))
	assert.Equal(t, `a.b`, dispatch.SearchPattern("a.b", true, true))
	assert.Equal(t, `a\.b`, dispatch.SearchPattern("a.b", false, true))
}

func TestAgain(t *testing.T) {
	f := newFixture(t)

	reply := f.send("hb again")
	require.NotNil(t, reply)
	assert.True(t, reply.Error)

	require.NotNil(t, f.send("hb rq x2"))
	require.NotNil(t, f.send("hb ping"))
	reply = f.send("hb again")
	require.NotNil(t, reply)
	assert.Len(t, f.backend.requests, 2)
	assert.Equal(t, f.backend.requests[0], f.backend.requests[1])

	last, err := f.store.LastCommand(guild, channel)
	require.NoError(t, err)
	assert.Equal(t, "rquote", last.Command)
	assert.Equal(t, "rq x2", last.Line)
}

func TestInternalErrorsAreHidden(t *testing.T) {
	f := newFixture(t)
	f.backend.err = errors.New("database is on fire")

	reply := f.send("hb ri")
	require.NotNil(t, reply)
	assert.True(t, reply.Error)
	assert.Equal(t, dispatch.InternalErrorText, reply.Body)
	assert.Contains(t, f.logs.String(), "database is on fire")

	entries, err := f.store.History(10)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed commands are not recorded")
}

func TestWithHandler(t *testing.T) {
	f := newFixture(t, dispatch.WithHandler("ping", func(context.Context, dispatch.Call) (dispatch.Reply, error) {
		return dispatch.Reply{Body: "pong"}, nil
	}))
	reply := f.send("hb ping")
	require.NotNil(t, reply)
	assert.Equal(t, "pong", reply.Body)
}

func TestDryRun(t *testing.T) {
	reply, err := dispatch.DryRun{}.Handle(context.Background(), dispatch.ImageRequest{GuildID: "7", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, "would send random image:\nguild_id: \"7\"\ncount: 2\n", reply.Body)
}

func TestReplyString(t *testing.T) {
	r := dispatch.Reply{Title: "T", Body: "B", Fields: []dispatch.Field{{Name: "N", Value: "V"}}}
	assert.Equal(t, "T\n\nB\n\nN\nV", r.String())
}
