package cmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aallbrig/hawkbot/cmd"
)

func runCmd(args ...string) (string, error) {
	return runCmdIn("", args...)
}

func runCmdIn(stdin string, args ...string) (string, error) {
	c := cmd.NewRootCmd()
	buf := &bytes.Buffer{}
	c.SetOut(buf)
	c.SetErr(buf)
	c.SetIn(strings.NewReader(stdin))
	c.SetArgs(args)
	err := c.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCmd("version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(out, "hawkbot ") {
		t.Errorf("version output = %q, want 'hawkbot ...'", out)
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := runCmd("--version")
	if err != nil {
		t.Fatalf("--version error: %v", err)
	}
	if !strings.Contains(out, "hawkbot") {
		t.Errorf("--version output = %q", out)
	}
}

func TestRootHelp(t *testing.T) {
	out, err := runCmd("--help")
	if err != nil {
		t.Fatalf("--help error: %v", err)
	}
	if !strings.Contains(out, "hawkbot") {
		t.Errorf("help output missing 'hawkbot': %q", out)
	}
}

func TestRootRejectsArgs(t *testing.T) {
	if _, err := runCmd("--data-dir", t.TempDir(), "stray"); err == nil {
		t.Error("expected error for positional argument")
	}
}

func TestConsole_Ping(t *testing.T) {
	out, err := runCmdIn("hb ping\nnot for the bot\n\n", "--data-dir", t.TempDir(), "--no-color")
	if err != nil {
		t.Fatalf("console error: %v", err)
	}
	if strings.TrimSpace(out) != ":)" {
		t.Errorf("console output = %q, want %q", out, ":)")
	}
}

func TestConsole_PrefixFlag(t *testing.T) {
	out, err := runCmdIn("hb ping\n! ping\n", "--data-dir", t.TempDir(), "--no-color", "--prefix", "! ")
	if err != nil {
		t.Fatalf("console error: %v", err)
	}
	if strings.Count(out, ":)") != 1 {
		t.Errorf("console output = %q, want one reply", out)
	}
}

func TestConsole_PrefixPersists(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCmdIn("hb config prefix set \"$ \"\n", "--data-dir", dir, "--no-color"); err != nil {
		t.Fatalf("console error: %v", err)
	}
	out, err := runCmdIn("$ ping\n", "--data-dir", dir, "--no-color")
	if err != nil {
		t.Fatalf("console error: %v", err)
	}
	if !strings.Contains(out, ":)") {
		t.Errorf("custom prefix not kept across sessions: %q", out)
	}
}

func TestConsole_EnvDataDir(t *testing.T) {
	t.Setenv("HAWKBOT_DATA_DIR", t.TempDir())
	t.Setenv("HAWKBOT_PREFIX", "? ")
	out, err := runCmdIn("? ping\n", "--no-color")
	if err != nil {
		t.Fatalf("console error: %v", err)
	}
	if !strings.Contains(out, ":)") {
		t.Errorf("console output = %q", out)
	}
}

func TestConsole_DryRunGenerate(t *testing.T) {
	out, err := runCmdIn("hb gen u[hawk] x2\n", "--data-dir", t.TempDir(), "--no-color")
	if err != nil {
		t.Fatalf("console error: %v", err)
	}
	for _, want := range []string{"hawk once said...", "would send generate", "count: 2", `- "102"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsole_FeedbackShown(t *testing.T) {
	out, err := runCmdIn("hb gdrive https://example.com/x\n", "--data-dir", t.TempDir(), "--no-color")
	if err != nil {
		t.Fatalf("console error: %v", err)
	}
	if !strings.Contains(out, "This isn't a Google Drive share link.") {
		t.Errorf("output = %q", out)
	}
}

func TestConsole_AdminOwner(t *testing.T) {
	dir := t.TempDir()
	out, err := runCmdIn("hb admin chain\n", "--data-dir", dir, "--no-color")
	if err != nil {
		t.Fatalf("console error: %v", err)
	}
	if !strings.Contains(out, "would send admin") {
		t.Errorf("session user should own the bot by default: %q", out)
	}

	out, err = runCmdIn("hb admin chain\n", "--data-dir", dir, "--no-color", "--owner", "hawk")
	if err != nil {
		t.Fatalf("console error: %v", err)
	}
	if out != "" {
		t.Errorf("non-owner admin command answered: %q", out)
	}
}

func TestConsole_JSON(t *testing.T) {
	out, err := runCmdIn("hb ping\n", "--data-dir", t.TempDir(), "--output=json")
	if err != nil {
		t.Fatalf("console error: %v", err)
	}
	if !strings.Contains(out, `"body": ":)"`) {
		t.Errorf("expected JSON reply, got: %q", out)
	}
}

func TestConsole_BadOutput(t *testing.T) {
	if _, err := runCmd("--data-dir", t.TempDir(), "--output=xml"); err == nil {
		t.Error("expected error for unknown output format")
	}
}

func TestParse_text(t *testing.T) {
	out, err := runCmd("parse", "--no-color", "gen", "u[me]", "x3")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	for _, want := range []string{"generate", "count: 3", "users: [me]"} {
		if !strings.Contains(out, want) {
			t.Errorf("parse output missing %q:\n%s", want, out)
		}
	}
}

func TestParse_json(t *testing.T) {
	out, err := runCmd("parse", "--output=json", "rimage x5")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if !strings.Contains(out, `"command": "rimage"`) {
		t.Errorf("expected JSON invocation, got: %q", out)
	}
}

func TestParse_noCommand(t *testing.T) {
	out, err := runCmd("parse", "nonsense words")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if strings.TrimSpace(out) != "no command" {
		t.Errorf("parse output = %q, want 'no command'", out)
	}
}

func TestParse_missing(t *testing.T) {
	out, err := runCmd("parse", "--no-color", "gdrive")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if !strings.Contains(out, "missing: url") {
		t.Errorf("parse output = %q", out)
	}
}

func TestParse_error(t *testing.T) {
	if _, err := runCmd("parse", "gen u[me"); err == nil {
		t.Error("expected error for unclosed list")
	}
}

func TestGrammar_tree(t *testing.T) {
	out, err := runCmd("grammar", "--no-color")
	if err != nil {
		t.Fatalf("grammar error: %v", err)
	}
	for _, want := range []string{"hawkbot", "generate (gen)", "pins_channel", "commands,"} {
		if !strings.Contains(out, want) {
			t.Errorf("grammar output missing %q", want)
		}
	}
}

func TestGrammar_depth(t *testing.T) {
	out, err := runCmd("grammar", "--no-color", "--depth=1")
	if err != nil {
		t.Fatalf("grammar error: %v", err)
	}
	if strings.Contains(out, "pins_channel") {
		t.Error("depth 1 should hide subcommands")
	}
}

func TestGrammar_help(t *testing.T) {
	out, err := runCmd("grammar", "--no-color", "gen")
	if err != nil {
		t.Fatalf("grammar error: %v", err)
	}
	if !strings.HasPrefix(out, "generate") || !strings.Contains(out, "Parameters:") {
		t.Errorf("grammar help output:\n%s", out)
	}
}

func TestGrammar_unknown(t *testing.T) {
	if _, err := runCmd("grammar", "nope"); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.txt")
	content := "# comment\nping\n\ngen x2\nnonsense\nrimage x2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runCmd("batch", "--no-color", "--workers=3", path)
	if err != nil {
		t.Fatalf("batch error: %v", err)
	}
	order := []string{"> ping", "> gen x2", "> nonsense", "> rimage x2"}
	last := -1
	for _, want := range order {
		i := strings.Index(out, want)
		if i < 0 || i < last {
			t.Fatalf("batch output out of order at %q:\n%s", want, out)
		}
		last = i
	}
	if strings.Contains(out, "comment") {
		t.Error("comment line was parsed")
	}
}

func TestBatch_stdinErrors(t *testing.T) {
	out, err := runCmdIn("ping\ngen u[me\n", "batch", "--no-color", "-")
	if err == nil {
		t.Fatal("expected error when a line fails to parse")
	}
	if !strings.Contains(out, "error:") {
		t.Errorf("batch output = %q", out)
	}
}

func TestParseLines_order(t *testing.T) {
	lines := []string{"ping", "cleanse", "vc", "nothing", "rimage x4"}
	results, err := cmd.ParseLines(context.Background(), lines, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(lines) {
		t.Fatalf("got %d results", len(results))
	}
	for i, res := range results {
		if res.Line != lines[i] {
			t.Errorf("results[%d].Line = %q, want %q", i, res.Line, lines[i])
		}
	}
	if results[2].Invocation == nil || results[2].Invocation.Command != "vibe check" {
		t.Errorf("alias vc not resolved: %+v", results[2])
	}
	if results[3].Invocation != nil {
		t.Errorf("nothing should not parse: %+v", results[3])
	}
}

func TestHistory(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCmdIn("hb gen x2\nhb ping\nhb rimage\n", "--data-dir", dir, "--no-color"); err != nil {
		t.Fatalf("console error: %v", err)
	}

	out, err := runCmd("history", "--data-dir", dir)
	if err != nil {
		t.Fatalf("history error: %v", err)
	}
	if !strings.Contains(out, "gen x2") || !strings.Contains(out, "rimage") {
		t.Errorf("history output:\n%s", out)
	}
	if strings.Contains(out, "ping") {
		t.Error("ping is not repeatable and should not be recorded")
	}
	if strings.Index(out, "rimage") > strings.Index(out, "gen x2") {
		t.Error("history should list newest first")
	}

	out, err = runCmd("history", "--data-dir", dir, "--clear")
	if err != nil {
		t.Fatalf("history --clear error: %v", err)
	}
	if !strings.Contains(out, "Cleared 2 history entries.") {
		t.Errorf("clear output = %q", out)
	}

	out, err = runCmd("history", "--data-dir", dir)
	if err != nil {
		t.Fatalf("history error: %v", err)
	}
	if strings.TrimSpace(out) != "No history." {
		t.Errorf("history after clear = %q", out)
	}
}
