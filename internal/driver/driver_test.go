package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"textnorm/internal/diff"
	"textnorm/internal/lineending"
	"textnorm/internal/logging"
	"textnorm/internal/textnorm"
)

func TestMain(m *testing.M) {
	logging.ConfigureTests()
	os.Exit(m.Run())
}

func normalizer(t *testing.T, native lineending.LineEnding) *textnorm.Normalizer {
	t.Helper()
	n, err := textnorm.New(native)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return n
}

func TestApplyModes(t *testing.T) {
	n := normalizer(t, lineending.CRLF)
	cases := []struct {
		name string
		opt  Options
		in   string
		want string
	}{
		{"normalize", Options{Mode: ModeNormalize, Target: lineending.LF}, "a\r\nb\rc", "a\nb\nc"},
		{"final newline", Options{Mode: ModeNormalize, Target: lineending.LF, FinalNewline: true}, "a\r\nb", "a\nb\n"},
		{"prefix", Options{Mode: ModePrefix, Prefix: "# "}, "a\nb", "# a\r\n# b"},
		{"indent", Options{Mode: ModeIndent}, "a\rb", "  a\r\n  b"},
		{"fix utf8", Options{Mode: ModeNormalize, Target: lineending.LF, FixUTF8: true}, "a\xff\r\n", "a�\n"},
	}
	for _, c := range cases {
		got, err := Apply(n, c.in, c.opt)
		if err != nil || got != c.want {
			t.Fatalf("%s: got %q, %v; want %q", c.name, got, err, c.want)
		}
	}
}

func TestApplyMissingTarget(t *testing.T) {
	n := normalizer(t, lineending.LF)
	if _, err := Apply(n, "a", Options{Mode: ModeNormalize}); !errors.Is(err, lineending.ErrMissingArgument) {
		t.Fatalf("expected missing argument, got %v", err)
	}
	if _, err := Apply(n, "a", Options{Mode: Mode(42)}); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestRunRewritesChangedFiles(t *testing.T) {
	dir := t.TempDir()
	crlf := filepath.Join(dir, "crlf.txt")
	lf := filepath.Join(dir, "lf.txt")
	missing := filepath.Join(dir, "missing.txt")
	if err := os.WriteFile(crlf, []byte("a\r\nb\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(lf, []byte("a\nb\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	n := normalizer(t, lineending.LF)
	results, err := Run(context.Background(), n, []string{crlf, lf, missing}, Options{
		Mode: ModeNormalize, Target: lineending.LF, Write: true, Diff: true, Jobs: 2,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if r := results[0]; !r.Changed || !r.Written || r.Err != nil || r.Before.CRLF != 2 || r.After.LF != 2 {
		t.Fatalf("crlf result: %+v", r)
	}
	if !strings.Contains(results[0].Diff, `-a\r\n`) {
		t.Fatalf("diff missing removed line:\n%s", results[0].Diff)
	}
	if r := results[1]; r.Changed || r.Written || r.Diff != "" {
		t.Fatalf("lf result: %+v", r)
	}
	if results[2].Err == nil {
		t.Fatalf("expected error for missing file")
	}

	data, err := os.ReadFile(crlf)
	if err != nil || string(data) != "a\nb\n" {
		t.Fatalf("file not rewritten: %q, %v", data, err)
	}
	info, err := os.Stat(crlf)
	if err != nil || info.Mode().Perm() != 0o600 {
		t.Fatalf("mode not preserved: %v, %v", info.Mode(), err)
	}

	s := Summarize(results)
	if s != (Summary{Files: 3, Changed: 1, Written: 1, Failed: 1}) {
		t.Fatalf("summary: %+v", s)
	}
}

func TestRunCheckOnlyLeavesFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x.txt")
	if err := os.WriteFile(p, []byte("a\rb"), 0o644); err != nil {
		t.Fatal(err)
	}
	results, err := Run(context.Background(), normalizer(t, lineending.LF), []string{p}, Options{Mode: ModeNormalize, Target: lineending.CRLF})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !results[0].Changed || results[0].Written {
		t.Fatalf("result: %+v", results[0])
	}
	if data, _ := os.ReadFile(p); string(data) != "a\rb" {
		t.Fatalf("file modified: %q", data)
	}
}

func TestRunCanceled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x.txt")
	if err := os.WriteFile(p, []byte("a\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, normalizer(t, lineending.LF), []string{p, p}, Options{Mode: ModeNormalize, Target: lineending.LF, Write: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if data, _ := os.ReadFile(p); string(data) != "a\r\n" {
		t.Fatalf("file rewritten after cancel: %q", data)
	}
}

func TestModeString(t *testing.T) {
	if ModePrefix.String() != "prefix" || Mode(9).String() != "Mode(9)" {
		t.Fatalf("unexpected mode names")
	}
}

func TestRunDiffOptionsLimitSize(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(p, []byte(strings.Repeat("line\r\n", 100)), 0o644); err != nil {
		t.Fatal(err)
	}
	results, err := Run(context.Background(), normalizer(t, lineending.LF), []string{p}, Options{
		Mode:        ModeNormalize,
		Target:      lineending.LF,
		Diff:        true,
		DiffOptions: diff.Options{MaxBytes: 64},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !results[0].Changed || !strings.Contains(results[0].Diff, "diff omitted (oversize)") {
		t.Fatalf("expected oversize placeholder, got %q", results[0].Diff)
	}
}
