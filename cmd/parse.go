package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aallbrig/hawkbot/grammar"
	"github.com/aallbrig/hawkbot/parser"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text...>",
		Short: "Parse one command line and print how it binds",
		Long: `Parse runs one line (without the command prefix) through the parser and
prints the resolved command and its argument values.

Examples:
  hawkbot parse gen u[me] x3
  hawkbot parse --output=json 'rimage u[hawk] x5'`,
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := parser.New(grammar.Hawkbot())
	line := strings.Join(args, " ")
	c, err := p.Parse(line)
	if err != nil {
		return fmt.Errorf("parse %q: %w", line, err)
	}

	out := cmd.OutOrStdout()
	if c == nil {
		fmt.Fprintln(out, "no command")
		return nil
	}
	if err := newRenderer(cfg).Invocation(out, c.Invocation()); err != nil {
		return err
	}
	if missing := c.Missing(); len(missing) > 0 && cfg.Output == "text" {
		fmt.Fprintln(out, "missing: "+strings.Join(missing, ", "))
	}
	return nil
}
