package roster_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aallbrig/hawkbot/params"
	"github.com/aallbrig/hawkbot/roster"
)

const sample = `
users:
  - {id: "1", name: Hawkbot, bot: true}
  - {id: "2", name: HawkEye}
channels:
  - {id: "10", name: general}
`

func TestParse(t *testing.T) {
	r, err := roster.Parse([]byte(sample))
	require.NoError(t, err)
	assert.Len(t, r.Members(), 2)
	assert.True(t, r.Members()[0].Bot)

	ch, ok := r.ChannelByName("GENERAL")
	assert.True(t, ok)
	assert.Equal(t, "10", ch.ID)

	u, ok := r.User("2")
	assert.True(t, ok)
	assert.Equal(t, "HawkEye", u.Name)
	_, ok = r.Channel("99")
	assert.False(t, ok)
}

func TestParseRejectsBadRosters(t *testing.T) {
	_, err := roster.Parse([]byte("users:\n  - {id: \"1\", name: a}\n  - {id: \"1\", name: b}\n"))
	assert.ErrorContains(t, err, `duplicate user id "1"`)

	_, err = roster.Parse([]byte("channels:\n  - {name: general}\n"))
	assert.ErrorContains(t, err, "needs both id and name")

	_, err = roster.Parse([]byte("users: {"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	demo, err := roster.Load("")
	require.NoError(t, err)
	assert.Equal(t, roster.Demo(), demo)

	path := filepath.Join(t.TempDir(), "roster.yaml")
	data, err := demo.Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := roster.Load(path)
	require.NoError(t, err)
	assert.Equal(t, demo, loaded)

	_, err = roster.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRosterResolvesParams(t *testing.T) {
	p := params.New(params.NewSpec(params.KindUsers)).(*params.Users)
	require.NoError(t, p.Parse(params.List("hawk")))
	require.NoError(t, p.Resolve(roster.Demo()))
	assert.Equal(t, []string{"102"}, p.IDs(), "the bot account is skipped")
}
