// Package store provides SQLite-backed persistence for per-guild settings
// and the command history used by "again".
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// FileName is the database file created inside the data directory.
const FileName = "hawkbot.db"

// Store holds guild settings and command history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dir/hawkbot.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite3", filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("open sqlite3: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS guild_config (
	guild_id           TEXT PRIMARY KEY,
	prefix             TEXT,
	pins_channel       TEXT,
	download_blacklist TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS command_history (
	id         TEXT PRIMARY KEY,
	guild_id   TEXT NOT NULL,
	channel_id TEXT NOT NULL,
	author_id  TEXT NOT NULL,
	command    TEXT NOT NULL,
	line       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS command_history_channel
	ON command_history (guild_id, channel_id, created_at);
`

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Prefix returns the guild's custom prefix, if one is set.
func (s *Store) Prefix(guildID string) (string, bool, error) {
	var prefix sql.NullString
	err := s.db.QueryRow(`SELECT prefix FROM guild_config WHERE guild_id = ?`, guildID).Scan(&prefix)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get prefix: %w", err)
	}
	return prefix.String, prefix.Valid && prefix.String != "", nil
}

// SetPrefix stores a custom prefix for the guild.
func (s *Store) SetPrefix(guildID, prefix string) error {
	return s.upsert(guildID, "prefix", prefix)
}

// ResetPrefix drops the guild's custom prefix.
func (s *Store) ResetPrefix(guildID string) error {
	return s.upsert(guildID, "prefix", nil)
}

// PinsChannel returns the guild's pins channel id, or "" when unset.
func (s *Store) PinsChannel(guildID string) (string, error) {
	var ch sql.NullString
	err := s.db.QueryRow(`SELECT pins_channel FROM guild_config WHERE guild_id = ?`, guildID).Scan(&ch)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pins channel: %w", err)
	}
	return ch.String, nil
}

// SetPinsChannel sets the pins channel; an empty id removes it.
func (s *Store) SetPinsChannel(guildID, channelID string) error {
	if channelID == "" {
		return s.upsert(guildID, "pins_channel", nil)
	}
	return s.upsert(guildID, "pins_channel", channelID)
}

// DownloadBlacklist returns the blacklisted channel ids, sorted.
func (s *Store) DownloadBlacklist(guildID string) ([]string, error) {
	var data string
	err := s.db.QueryRow(`SELECT download_blacklist FROM guild_config WHERE guild_id = ?`, guildID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get download blacklist: %w", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("decode download blacklist: %w", err)
	}
	return ids, nil
}

// AddToDownloadBlacklist adds channel ids to the guild's blacklist.
func (s *Store) AddToDownloadBlacklist(guildID string, channelIDs ...string) error {
	return s.editBlacklist(guildID, func(set map[string]bool) {
		for _, id := range channelIDs {
			set[id] = true
		}
	})
}

// RemoveFromDownloadBlacklist removes channel ids from the guild's blacklist.
func (s *Store) RemoveFromDownloadBlacklist(guildID string, channelIDs ...string) error {
	return s.editBlacklist(guildID, func(set map[string]bool) {
		for _, id := range channelIDs {
			delete(set, id)
		}
	})
}

func (s *Store) editBlacklist(guildID string, edit func(map[string]bool)) error {
	current, err := s.DownloadBlacklist(guildID)
	if err != nil {
		return err
	}
	set := make(map[string]bool, len(current))
	for _, id := range current {
		set[id] = true
	}
	edit(set)
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.upsert(guildID, "download_blacklist", string(data))
}

// upsert sets one guild_config column. column is always a constant.
func (s *Store) upsert(guildID, column string, value any) error {
	q := fmt.Sprintf(`INSERT INTO guild_config (guild_id, %[1]s) VALUES (?, ?)
		ON CONFLICT (guild_id) DO UPDATE SET %[1]s = excluded.%[1]s`, column)
	if _, err := s.db.Exec(q, guildID, value); err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	return nil
}

// Entry is one recorded command.
type Entry struct {
	ID        string    `json:"id" yaml:"id"`
	GuildID   string    `json:"guild_id" yaml:"guild_id"`
	ChannelID string    `json:"channel_id" yaml:"channel_id"`
	AuthorID  string    `json:"author_id" yaml:"author_id"`
	Command   string    `json:"command" yaml:"command"`
	Line      string    `json:"line" yaml:"line"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// RecordCommand appends e to the history. ID and CreatedAt are filled in
// when empty.
func (s *Store) RecordCommand(e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO command_history (id, guild_id, channel_id, author_id, command, line, created_at) VALUES (?,?,?,?,?,?,?)`,
		e.ID, e.GuildID, e.ChannelID, e.AuthorID, e.Command, e.Line, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record command: %w", err)
	}
	return e, nil
}

// LastCommand returns the most recent command of a channel, or nil.
func (s *Store) LastCommand(guildID, channelID string) (*Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, guild_id, channel_id, author_id, command, line, created_at FROM command_history
		WHERE guild_id = ? AND channel_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("last command: %w", err)
	}
	entries, err := scanEntries(rows)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

// History returns up to limit entries, newest first.
func (s *Store) History(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, guild_id, channel_id, author_id, command, line, created_at FROM command_history
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return scanEntries(rows)
}

// ClearHistory removes every history entry and reports how many were
// removed.
func (s *Store) ClearHistory() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM command_history`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.GuildID, &e.ChannelID, &e.AuthorID, &e.Command, &e.Line, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(0, created)
		out = append(out, e)
	}
	return out, rows.Err()
}
