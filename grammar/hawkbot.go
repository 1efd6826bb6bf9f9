package grammar

import (
	"sync"

	"github.com/aallbrig/hawkbot/params"
)

const flagsHelp = "Use letter `a` to find the pattern anywhere (like inside another word) " +
	"and letter `c` to make search case-sensitive"

// Hawkbot returns the bot's command grammar. The registry is built on first
// use and shared afterwards.
var Hawkbot = sync.OnceValue(func() *Registry {
	return MustNew(HawkbotTable()...)
})

// HawkbotTable returns the entries of the bot's grammar. Tests build
// variants of it.
func HawkbotTable() []Entry {
	return []Entry{
		Define("ping").
			Describe("Ping Hawkbot to see if he's awake"),

		Define("help", ModeRest).
			Describe("View all Hawkbot commands, or see details about a specific command").
			Param("command", params.KindString,
				params.Optional(true),
				params.WithHelp("A command to get help for")),

		Define("config").
			Describe("Configure Hawkbot's settings on this server").
			Subcommands("pins_channel", "prefix", "download_channels_blacklist"),
		Define("config pins_channel", ModePositional).
			Describe("Lets Hawkbot post custom pinned messages in a specific channel (in case another " +
				"channel has run out of pins slots). Run without arguments to show which channel is set.").
			Param("action", params.KindChoice,
				params.Choices("set", "remove"),
				params.Optional(true),
				params.WithHelp("`set` this channel as the pins channel or `remove` the pins channel.")),
		Define("config prefix").
			Describe("Show the prefix used for Hawkbot commands").
			Subcommands("set", "reset"),
		Define("config prefix set", ModePositional).
			Describe("Set the prefix used for Hawkbot commands").
			Param("prefix", params.KindQuotedString),
		Define("config prefix reset").
			Describe("Reset the prefix used for Hawkbot commands to default"),
		Define("config download_channels_blacklist", ModePositional).
			Describe("Blacklist certain channels from being downloaded to Hawkbot's message database. " +
				"Run without arguments to see which channels are currently blacklisted.").
			Param("action", params.KindChoice,
				params.Choices("add", "remove"),
				params.Optional(true),
				params.WithHelp("`add` or `remove` this channel to/from the blacklist")),

		Define("admin").
			Describe("Admin commands which can only be run by the bot owner").
			Subcommands("init", "download", "chain"),
		Define("admin init").
			Subcommands("guild"),
		Define("admin init guild").
			Describe("Initialize guild database tables"),
		Define("admin download").
			Describe("Download messages to Hawkbot's database (to enable usage of other commands " +
				"like `admin chain` and `rquote`)").
			Param("channels", params.KindChannels, params.WithAlias("c")),
		Define("admin chain").
			Describe("Create markov chain to enable usage of `gen`"),

		Define("again").
			Describe("Run the previous command again"),
		Define("cleanse").
			Describe("Send a long, blank message to hide a particularly cursed message"),
		Define("quote", ModePositional).
			Describe("Quote a previously sent message (or optionally a range of messages from `url1` to `url2`)").
			Param("url1", params.KindMessageURL).
			Param("url2", params.KindMessageURL, params.Optional(true)),
		Define("portal").
			Describe("Create a portal to another channel (i.e. if the chat has gone off-topic)").
			Param("channel", params.KindChannels, params.WithAlias("c")),
		Define("gdrive", ModePositional).
			Describe("Get a direct link to a Google Drive file (so you can play the file with a music bot, for example)").
			Param("url", params.KindString, params.WithHelp("Google Drive file share link")),

		Alias("vc", "vibe check"),
		Define("vibe").
			Subcommands("check"),
		Define("vibe check").
			Describe("how are u vibin?"),

		Alias("gen", "generate"),
		Define("generate").
			Describe("Generate a message based on what users have said before").
			Param("algorithm", params.KindChoice,
				params.WithAlias("a"),
				params.Choices("1", "original", "markov", "2", "madlibs"),
				params.Default("original"),
				params.WithHelp("`original`/`markov`/`1` is the original Markov-chain-based algorithm, "+
					"`madlibs`/`2` is a new Mad-Libs-inspired algorithm (uses part-of-speech tagging)")).
			Param("users", params.KindUsers, params.WithAlias("u")).
			Param("channels", params.KindChannels, params.WithAlias("c")).
			Param("limit", params.KindLimit, params.WithHelp("Limit the number of generated words")).
			Param("count", params.KindCount, params.Min(1), params.Max(25)).
			Param("blueprint", params.KindQuotedString,
				params.WithHelp("A quoted string to base all generations off of")),

		Alias("rq", "rquote"),
		Define("rquote").
			Describe("Bring up a random quote from past messages on the server").
			Subcommands("guess").
			Param("users", params.KindUsers, params.WithAlias("u")).
			Param("channels", params.KindChannels, params.WithAlias("c")).
			Param("limit", params.KindLimit, params.WithHelp("Limit the number of words in the quote")).
			Param("count", params.KindCount, params.Min(1), params.Max(5)),
		Define("rquote guess").
			Describe("Same as rquote, but hides the authors' names until the question mark reaction is clicked. " +
				"Play with your friends and guess who wrote each message!").
			Param("channels", params.KindChannels, params.WithAlias("c")).
			Param("limit", params.KindLimit, params.WithHelp("Limit the number of words in the quote")).
			Param("count", params.KindCount, params.Min(1), params.Max(5)),

		Alias("ri", "rimage"),
		Define("rimage").
			Describe("Bring up a random image that's been shared on this server before").
			Param("users", params.KindUsers, params.WithAlias("u")).
			Param("channels", params.KindChannels, params.WithAlias("c")).
			Param("count", params.KindCount, params.Min(1), params.Max(5)),

		Alias("ms", "mstats"),
		Define("mstats").
			Describe("Message statistics - see how many messages on this server contain a given phrase").
			Subcommands("plot").
			Param("users", params.KindUsers, params.WithAlias("u")).
			Param("channels", params.KindChannels, params.WithAlias("c")).
			Param("flags", params.KindFlags, params.AllowedFlags("ca"), params.WithHelp(flagsHelp)).
			Param("pattern", params.KindQuotedString,
				params.WithHelp("A quoted phrase or regex pattern to search for")),
		Define("mstats plot").
			Describe("Plot out instances of a phrase over time").
			Param("users", params.KindUsers, params.WithAlias("u")).
			Param("channels", params.KindChannels, params.WithAlias("c")).
			Param("flags", params.KindFlags, params.AllowedFlags("ca"), params.WithHelp(flagsHelp)).
			Param("pattern", params.KindQuotedString,
				params.WithHelp("A quoted phrase or regex pattern to search for")),
	}
}
