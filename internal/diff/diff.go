// Package diff renders the effect of a rewrite as a unified diff.
// It uses github.com/pmezard/go-difflib/difflib for hunks and makes line
// endings visible, so an ending-only change shows up as a changed line.
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// Options controls patch generation behavior.
type Options struct {
	// MaxBytes is a guardrail on input size (old+new). When exceeded,
	// a minimal placeholder patch is returned and oversize=true.
	// 0 means "no limit".
	MaxBytes int

	// Context is the number of context lines in unified hunks.
	// If 0, default to 3.
	Context int

	// NoPrefix drops the "a/" and "b/" path prefixes.
	NoPrefix bool
}

// Unified produces a unified patch for before↦after of the file name.
// It returns "" when the texts are identical, and oversize=true when the
// placeholder was emitted instead.
func Unified(name, before, after string, opt Options) (body string, oversize bool) {
	if before == after {
		return "", false
	}
	aName, bName := "a/"+name, "b/"+name
	if opt.NoPrefix {
		aName, bName = name, name
	}
	if opt.MaxBytes > 0 && len(before)+len(after) > opt.MaxBytes {
		return omitted(aName, bName), true
	}

	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}

	u := difflib.UnifiedDiff{
		A:        visibleLines(before),
		B:        visibleLines(after),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil || s == "" {
		return omitted(aName, bName), false
	}
	return s, false
}

// visibleLines splits s after every line ending and spells the ending out
// ("\r\n" becomes `\r\n`), terminating each element with a plain "\n" for
// difflib.
func visibleLines(s string) []string {
	if s == "" {
		return []string{}
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			out = append(out, s[start:i]+`\n`+"\n")
			start = i + 1
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				out = append(out, s[start:i]+`\r\n`+"\n")
				i++
			} else {
				out = append(out, s[start:i]+`\r`+"\n")
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:]+"\n")
	}
	return out
}

// omitted returns a compact placeholder when size limits are exceeded.
func omitted(aName, bName string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted (oversize)\n", aName, bName)
}

// Stat counts added and removed lines in a unified patch body.
func Stat(body string) (added, removed int) {
	for _, ln := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(ln, "+++"), strings.HasPrefix(ln, "---"):
		case strings.HasPrefix(ln, "+"):
			added++
		case strings.HasPrefix(ln, "-"):
			removed++
		}
	}
	return added, removed
}
