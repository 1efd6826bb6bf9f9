package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aallbrig/hawkbot/grammar"
	"github.com/aallbrig/hawkbot/models"
	"github.com/aallbrig/hawkbot/parser"
	"github.com/aallbrig/hawkbot/render"
)

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <file>",
		Short: "Parse every line of a file",
		Long: `Batch parses each non-empty line of a file (or stdin with "-") and
prints the results in input order. Lines starting with # are skipped.
Parsing is spread over --workers parsers.`,
		Args: cobra.ExactArgs(1),
		RunE: runBatch,
	}
}

// BatchResult is the outcome of parsing one line.
type BatchResult struct {
	Line       string             `json:"line" yaml:"line"`
	Invocation *models.Invocation `json:"invocation,omitempty" yaml:"invocation,omitempty"`
	Missing    []string           `json:"missing,omitempty" yaml:"missing,omitempty"`
	Error      string             `json:"error,omitempty" yaml:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open batch file: %w", err)
		}
		defer f.Close()
		in = f
	}
	lines, err := readLines(in)
	if err != nil {
		return err
	}

	results, err := ParseLines(cmd.Context(), lines, cfg.Workers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Output != "text" {
		return render.Encode(out, cfg.Output, results)
	}
	r := newRenderer(cfg)
	failed := 0
	for _, res := range results {
		fmt.Fprintln(out, "> "+res.Line)
		switch {
		case res.Error != "":
			failed++
			r.Error(out, "  error: "+res.Error)
		case res.Invocation == nil:
			fmt.Fprintln(out, "  no command")
		default:
			if err := r.Invocation(out, *res.Invocation); err != nil {
				return err
			}
			if len(res.Missing) > 0 {
				fmt.Fprintln(out, "  missing: "+strings.Join(res.Missing, ", "))
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d lines failed to parse", failed, len(results))
	}
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	return lines, nil
}

// ParseLines parses lines with the given number of workers, each owning a
// parser. Results keep the order of lines.
func ParseLines(ctx context.Context, lines []string, workers int) ([]BatchResult, error) {
	workers = max(min(workers, len(lines)), 1)
	results := make([]BatchResult, len(lines))
	jobs := make(chan int)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range lines {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for w := range workers {
		p := parser.New(grammar.Hawkbot())
		g.Go(func() error {
			n := 0
			for i := range jobs {
				results[i] = parseOne(p, lines[i])
				n++
			}
			log.Debug().Int("worker", w).Int("lines", n).Msg("batch worker done")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseOne(p *parser.Parser, line string) BatchResult {
	res := BatchResult{Line: line}
	c, err := p.Parse(line)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if c != nil {
		inv := c.Invocation()
		res.Invocation = &inv
		res.Missing = c.Missing()
	}
	return res
}
