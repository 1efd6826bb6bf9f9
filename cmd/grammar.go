package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aallbrig/hawkbot/grammar"
	"github.com/aallbrig/hawkbot/render"
)

var (
	cfgDepth        int
	cfgFilter       string
	cfgExclude      string
	cfgCommandsOnly bool
	cfgFullPath     bool
)

func newGrammarCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "grammar [command...]",
		Short: "Show the command tree, or the help of one command",
		Long: `Grammar renders every command with its aliases and parameters. With a
command name (aliases allowed) it prints that command's help instead.

Examples:
  hawkbot grammar
  hawkbot grammar --depth=1 --commands-only
  hawkbot grammar config prefix set
  hawkbot grammar --output=yaml gen`,
		RunE: runGrammar,
	}
	c.Flags().IntVar(&cfgDepth, "depth", -1, "Max tree depth (-1 = unlimited)")
	c.Flags().StringVar(&cfgFilter, "filter", "", "Only show commands matching pattern")
	c.Flags().StringVar(&cfgExclude, "exclude", "", "Exclude commands matching pattern")
	c.Flags().BoolVar(&cfgCommandsOnly, "commands-only", false, "Hide parameters")
	c.Flags().BoolVar(&cfgFullPath, "full-path", false, "Show full command paths")
	return c
}

func runGrammar(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg := grammar.Hawkbot()
	out := cmd.OutOrStdout()

	if len(args) > 0 {
		name := strings.Join(args, " ")
		base := reg.FindBase(name, true)
		if base == nil {
			return fmt.Errorf("unknown command %q", name)
		}
		return newRenderer(cfg).Help(out, base.Help())
	}

	opts := render.Options{
		MaxDepth:     cfgDepth,
		Filter:       cfgFilter,
		Exclude:      cfgExclude,
		CommandsOnly: cfgCommandsOnly,
		FullPath:     cfgFullPath,
		Output:       cfg.Output,
		NoColor:      cfg.NoColor,
		Colors:       cfg.Colors,
	}
	root := reg.Tree("hawkbot")
	if err := render.New(opts).Render(out, root); err != nil {
		return err
	}
	if cfg.Output == "text" {
		s := render.Collect(root)
		fmt.Fprintf(out, "\n%d commands, %d parameters, depth %d\n", s.Commands-1, s.Params, s.MaxDepth)
	}
	return nil
}
