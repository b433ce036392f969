package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"textnorm/internal/config"
	"textnorm/internal/logging"
)

func TestMain(m *testing.M) {
	logging.ConfigureTests()
	os.Exit(m.Run())
}

// run executes the CLI with a config whose native ending is LF.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvNewline, "")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(cfgPath, []byte("native = \"\\n\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", cfgPath, "--color", "off"}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestNormalizeStdin(t *testing.T) {
	out, _, err := run(t, "1\r\n2\n3\r4", "normalize", "--to", "crlf")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out != "1\r\n2\r\n3\r\n4" {
		t.Fatalf("got %q", out)
	}
}

func TestNormalizeDefaultsToNative(t *testing.T) {
	out, _, err := run(t, "a\r\nb\r", "normalize")
	if err != nil || out != "a\nb\n" {
		t.Fatalf("got %q, %v", out, err)
	}
}

func TestNormalizeBadTarget(t *testing.T) {
	if _, _, err := run(t, "", "normalize", "--to", "lfcr"); err == nil {
		t.Fatalf("expected error for unknown --to")
	}
}

func TestNormalizeCheckStdin(t *testing.T) {
	_, _, err := run(t, "a\r\n", "normalize", "--check", "--to", "lf")
	if !errors.Is(err, errWouldChange) {
		t.Fatalf("expected errWouldChange, got %v", err)
	}
	if _, _, err := run(t, "a\n", "normalize", "--check", "--to", "lf"); err != nil {
		t.Fatalf("normalized input should pass --check: %v", err)
	}
}

func TestNormalizeWriteFiles(t *testing.T) {
	p := writeTemp(t, "x.txt", "a\r\nb\r\n")
	_, errOut, err := run(t, "", "normalize", "--write", "--to", "lf", p)
	if err != nil {
		t.Fatalf("normalize --write: %v", err)
	}
	data, _ := os.ReadFile(p)
	if string(data) != "a\nb\n" {
		t.Fatalf("file = %q", data)
	}
	if !strings.Contains(errOut, "1 file(s), 1 changed, 1 written, 0 failed") {
		t.Fatalf("summary missing: %q", errOut)
	}
}

func TestNormalizeDiffDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := run(t, "", "normalize", "--diff", "--to", "lf", dir)
	if err != nil {
		t.Fatalf("normalize --diff: %v", err)
	}
	if !strings.Contains(out, `-x\r\n`) || !strings.Contains(out, `+x\n`) || strings.Contains(out, "b.txt") {
		t.Fatalf("unexpected diff:\n%s", out)
	}
}

func TestNormalizeWriteConflictsWithCheck(t *testing.T) {
	if _, _, err := run(t, "", "normalize", "--write", "--check", "x"); err == nil {
		t.Fatalf("expected flag conflict error")
	}
}

func TestSplit(t *testing.T) {
	out, _, err := run(t, "\r\n1\r\n2\n3\r4\r\n", "split")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	want := "1\t\n2\t1\n3\t2\n4\t3\n5\t4\n6\t\n"
	if out != want {
		t.Fatalf("got %q want %q", out, want)
	}
	out, _, err = run(t, "", "split", "--count")
	if err != nil || out != "1\n" {
		t.Fatalf("split --count on empty input = %q, %v", out, err)
	}
}

func TestPrefixAndIndent(t *testing.T) {
	out, _, err := run(t, "a\r\nb", "prefix", "--prefix", "X")
	if err != nil || out != "Xa\nXb" {
		t.Fatalf("prefix = %q, %v", out, err)
	}
	out, _, err = run(t, "a\rb\r", "indent")
	if err != nil || out != "  a\n  b\n  " {
		t.Fatalf("indent = %q, %v", out, err)
	}
}

func TestPrefixUsesConfigDefault(t *testing.T) {
	out, _, err := run(t, "a", "prefix")
	if err != nil || out != "> a" {
		t.Fatalf("prefix = %q, %v", out, err)
	}
}

func TestDetect(t *testing.T) {
	p := writeTemp(t, "mixed.txt", "a\r\nb\nc\r\n")
	out, _, err := run(t, "", "detect", p)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !strings.Contains(out, "\tcrlf\tlf=1 crlf=2 cr=0 mixed") {
		t.Fatalf("got %q", out)
	}
}

func TestEnv(t *testing.T) {
	out, _, err := run(t, "", "env")
	if err != nil {
		t.Fatalf("env: %v", err)
	}
	if !strings.Contains(out, `native:       lf "\n"`) {
		t.Fatalf("got %q", out)
	}
}

func TestBadColorMode(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"--color", "sometimes", "version"})
	root.SetOut(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error for bad --color")
	}
}

func TestSplitCountIsNotGrouped(t *testing.T) {
	out, _, err := run(t, strings.Repeat("x\r\n", 1500), "split", "--count")
	if err != nil || out != "1501\n" {
		t.Fatalf("split --count = %q, %v", out, err)
	}
	out, _, err = run(t, strings.Repeat("x\n", 1000), "split")
	if err != nil || !strings.Contains(out, "\n1000\tx\n1001\t\n") {
		t.Fatalf("line numbers grouped or missing (%d bytes), %v", len(out), err)
	}
}

func TestNormalizeDiffSummaryAndContext(t *testing.T) {
	p := writeTemp(t, "ctx.txt", "a\nb\nc\nd\ne\r\n")
	out, errOut, err := run(t, "", "normalize", "--diff", "--context", "1", "--to", "lf", p)
	if err != nil {
		t.Fatalf("normalize --diff: %v", err)
	}
	if strings.Contains(out, ` c\n`) || !strings.Contains(out, ` d\n`) {
		t.Fatalf("context not applied:\n%s", out)
	}
	if !strings.Contains(out, `-e\r\n`) || !strings.Contains(out, `+e\n`) {
		t.Fatalf("missing changed line:\n%s", out)
	}
	if !strings.Contains(errOut, "1 file(s), 1 changed, 0 written, 0 failed, +1/-1 lines") {
		t.Fatalf("summary = %q", errOut)
	}
}

func TestWriteDiffResetsBeforeNewline(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	writeDiff(&buf, "--- a/x\n+++ b/x\n@@ -1 +1 @@\n-x\\r\\n\n+x\\n\n")
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	for _, ln := range lines {
		reset := strings.HasPrefix(ln, "\x1b[0m") || strings.HasPrefix(ln, "\x1b[22m")
		if reset || !strings.HasPrefix(ln, "\x1b[") || !strings.HasSuffix(ln, "m") {
			t.Errorf("color spans a newline: %q", ln)
		}
	}
}
