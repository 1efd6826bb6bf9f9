package params

import (
	"errors"
	"strconv"
)

// MessageURL is a link to a chat message: /channels/<guild>/<channel>/<message>.
// It is unset until parsed, which lets optional positional links be tested
// for presence.
type MessageURL struct {
	base
	URL       string
	GuildID   uint64
	ChannelID uint64
	MessageID uint64
}

func (p *MessageURL) Parse(arg Arg) error {
	if arg.IsList {
		return parseErr(p.kind, arg, errors.New("lists are not accepted"))
	}
	m := messageURLRe.FindStringSubmatch(arg.Text)
	if m == nil {
		return parseErr(p.kind, arg, nil)
	}
	ids := make([]uint64, 3)
	for i, s := range m[1:4] {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return parseErr(p.kind, arg, err)
		}
		ids[i] = n
	}
	p.URL = arg.Text
	p.GuildID, p.ChannelID, p.MessageID = ids[0], ids[1], ids[2]
	return nil
}

func (p *MessageURL) IsSet() bool { return p.URL != "" }

func (p *MessageURL) Value() any {
	if !p.IsSet() {
		return nil
	}
	return map[string]any{
		"url":        p.URL,
		"guild_id":   p.GuildID,
		"channel_id": p.ChannelID,
		"message_id": p.MessageID,
	}
}
