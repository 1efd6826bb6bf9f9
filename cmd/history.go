package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aallbrig/hawkbot/render"
	"github.com/aallbrig/hawkbot/store"
)

var (
	cfgHistoryClear bool
	cfgHistoryLimit int
)

func newHistoryCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "history",
		Short: "List recent repeatable commands",
		Long: `History lists the commands "again" can repeat, newest first.

Examples:
  hawkbot history               # last history_limit entries
  hawkbot history --limit=50
  hawkbot history --clear       # forget everything`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
	c.Flags().BoolVar(&cfgHistoryClear, "clear", false, "Remove all history entries")
	c.Flags().IntVar(&cfgHistoryLimit, "limit", 0, "Entries to show (default history_limit)")
	return c
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	if cfgHistoryClear {
		n, err := st.ClearHistory()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Cleared %s.\n", plural(n, "history entry", "history entries"))
		return nil
	}

	limit := cfg.HistoryLimit
	if cfgHistoryLimit > 0 {
		limit = cfgHistoryLimit
	}
	entries, err := st.History(limit)
	if err != nil {
		return err
	}
	if cfg.Output != "text" {
		return render.Encode(out, cfg.Output, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No history.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%-16s %s #%s  %s\n", humanize.Time(e.CreatedAt), e.GuildID, e.ChannelID, e.Line)
	}
	return nil
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return humanize.Comma(n) + " " + many
}
