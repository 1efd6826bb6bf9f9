// Package params implements the closed set of command parameter kinds.
//
// Every kind knows how to recognise its own shorthand syntax (Kind.Test) and
// how to parse a raw argument into typed values (Param.Parse). Instances are
// built fresh for every parse from a Spec, so no state leaks between
// invocations.
package params

import (
	"regexp"
	"strings"
)

// Kind tags a parameter type.
type Kind int

const (
	KindString Kind = iota
	KindQuotedString
	KindChoice
	KindLimit
	KindCount
	KindFlags
	KindUsers
	KindChannels
	KindMessageURL
)

var kindNames = map[Kind]string{
	KindString:       "string",
	KindQuotedString: "quoted string",
	KindChoice:       "choice",
	KindLimit:        "limit",
	KindCount:        "count",
	KindFlags:        "flags",
	KindUsers:        "users",
	KindChannels:     "channels",
	KindMessageURL:   "message url",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

var (
	limitRe      = regexp.MustCompile(`^(\d+)?->(\d+)?$`)
	countRe      = regexp.MustCompile(`^x(\d+)?$`)
	flagsRe      = regexp.MustCompile(`^-([a-z]+)$`)
	messageURLRe = regexp.MustCompile(`^https://(?:(?:ptb|canary)\.)?discord(?:app)?\.com/channels/(\d+)/(\d+)/(\d+)$`)
)

// quoteChars are the quote characters understood by quoted strings. The
// backtick quote is the multiline quote.
const quoteChars = "'\"`"

// Shorthand returns a human-readable example of the kind's shorthand
// syntax, or "" when the kind can only be bound by name or position.
func (k Kind) Shorthand() string {
	switch k {
	case KindQuotedString:
		return `"some text"`
	case KindLimit:
		return "5->10 or 5-> or ->10"
	case KindCount:
		return "x3"
	case KindFlags:
		return "-abc"
	case KindMessageURL:
		return "https://discord.com/channels/<guild>/<channel>/<message>"
	}
	return ""
}

// Test reports whether token is written in this kind's shorthand syntax.
// Free strings and choices accept anything, so they are never consulted
// for disambiguation; entity lists accept nothing.
func (k Kind) Test(token string) bool {
	switch k {
	case KindString, KindChoice:
		return true
	case KindQuotedString:
		_, _, _, ok := splitQuoted(token)
		return ok
	case KindLimit:
		return limitRe.MatchString(token)
	case KindCount:
		return countRe.MatchString(token)
	case KindFlags:
		return flagsRe.MatchString(token)
	case KindMessageURL:
		return messageURLRe.MatchString(token)
	}
	return false
}

// defaultHelp is the description used when a parameter is registered
// without its own help text.
func (k Kind) defaultHelp() string {
	switch k {
	case KindString:
		return "A text string"
	case KindQuotedString:
		return "A quoted text string that may contain spaces"
	case KindLimit:
		return "Limit by a minimum and/or maximum value"
	case KindCount:
		return "Repeat a specific number of times"
	case KindFlags:
		return "Letter flags to alter command execution"
	case KindUsers:
		return "One or more users to filter by"
	case KindChannels:
		return "One or more channels to filter by"
	case KindMessageURL:
		return "A Discord message URL (right click message -> copy message link)"
	}
	return "No description"
}

// splitQuoted breaks a quote-delimited token into quote character, regex
// marker and inner text. A regex marker is a '/' directly inside both
// quotes.
func splitQuoted(token string) (quote string, regex bool, inner string, ok bool) {
	if len(token) < 2 {
		return "", false, "", false
	}
	q := token[:1]
	if !strings.Contains(quoteChars, q) || token[len(token)-1:] != q {
		return "", false, "", false
	}
	inner = token[1 : len(token)-1]
	if len(inner) >= 2 && inner[0] == '/' && inner[len(inner)-1] == '/' {
		return q, true, inner[1 : len(inner)-1], true
	}
	return q, false, inner, true
}
