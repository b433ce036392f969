// Package textnorm rewrites, splits and decorates line-oriented text.
//
// The input may contain any mixture of LF, CRLF and CR endings. Every
// function is pure; the only configuration is the native line ending held by
// a Normalizer, resolved once by the caller at start-up.
package textnorm

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"textnorm/internal/lineending"
)

// Normalize converts every line ending in value to target.
func Normalize(value string, target lineending.LineEnding) (string, error) {
	if !target.Valid() {
		return "", lineending.Missing("lineEnding")
	}
	return normalize(value, target), nil
}

// normalize collapses CRLF before lone CR so a CRLF pair is never read as
// CR followed by a stray LF.
func normalize(value string, le lineending.LineEnding) string {
	target := le.Representation()
	if target == "" {
		panic("textnorm: normalize to absent line ending")
	}
	if !strings.ContainsRune(value, '\r') && (target == "\n" || !strings.ContainsRune(value, '\n')) {
		return value
	}
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	if target != "\n" {
		value = strings.ReplaceAll(value, "\n", target)
	}
	return value
}

// SplitLines splits value into lines on any line ending. The result always
// holds at least one element; a leading or trailing ending yields an empty
// first or last element.
func SplitLines(value string) []string {
	return strings.Split(normalize(value, lineending.LF), "\n")
}

// Normalizer applies the operations that default to the native line ending.
type Normalizer struct {
	native lineending.LineEnding
}

// New returns a Normalizer bound to native.
func New(native lineending.LineEnding) (*Normalizer, error) {
	if !native.Valid() {
		return nil, fmt.Errorf("native line ending %v: %w", native, lineending.ErrUnknownValue)
	}
	return &Normalizer{native: native}, nil
}

// Native returns the line ending the Normalizer was built with. It panics
// when n was not created by New.
func (n *Normalizer) Native() lineending.LineEnding {
	if !n.native.Valid() {
		panic("textnorm: Normalizer used without New")
	}
	return n.native
}

// Normalize converts every line ending in value to the native one.
func (n *Normalizer) Normalize(value string) string {
	return normalize(value, n.Native())
}

// Prefix prepends prefix to every line of value, empty lines included, and
// joins the lines with the native ending whatever endings value used.
func (n *Normalizer) Prefix(value, prefix string) string {
	sep := n.Native().Representation()
	lines := SplitLines(value)
	var b strings.Builder
	b.Grow(len(value) + len(lines)*(len(prefix)+len(sep)))
	for i, ln := range lines {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(prefix)
		b.WriteString(ln)
	}
	return b.String()
}

// Indent prefixes every line with two spaces.
func (n *Normalizer) Indent(value string) string {
	return n.Prefix(value, "  ")
}

var invariant = message.NewPrinter(language.Und)

// FormatInvariant formats according to a fixed locale so the output does not
// depend on the host's regional settings. Numbers are never digit-grouped.
func FormatInvariant(format string, args ...any) string {
	plain := make([]any, len(args))
	for i, a := range args {
		switch a.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr,
			float32, float64, complex64, complex128:
			plain[i] = ungrouped{a}
		default:
			plain[i] = a
		}
	}
	return invariant.Sprintf(format, plain...)
}

// localeState is the printer state handed to formatters by message.Printer.
type localeState interface {
	fmt.State
	Language() language.Tag
}

// ungrouped formats a number without grouping separators: plain decimal
// integers go through number.Decimal, anything else through the fmt verbs.
type ungrouped struct{ v any }

func (u ungrouped) Format(s fmt.State, verb rune) {
	ls, ok := s.(localeState)
	if ok && isInteger(u.v) && (verb == 'd' || verb == 'v') && bare(s) {
		number.Decimal(u.v, number.NoSeparator()).Format(ls, verb)
		return
	}
	fmt.Fprintf(s, fmt.FormatString(s, verb), u.v)
}

func isInteger(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// bare reports whether the verb carries no width, precision or flags.
func bare(s fmt.State) bool {
	if _, ok := s.Width(); ok {
		return false
	}
	if _, ok := s.Precision(); ok {
		return false
	}
	for _, f := range "+-# 0" {
		if s.Flag(int(f)) {
			return false
		}
	}
	return true
}
