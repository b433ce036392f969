// Package lineending models the closed set of recognized line-ending
// sequences (LF, CRLF, CR) and lookups by their exact representation.
//
// Comparison is structural: a LineEnding equals any string holding the same
// bytes. The zero value, None, stands for an absent line ending.
package lineending

import (
	"fmt"
	"strings"
)

// LineEnding specifies a line ending style.
type LineEnding uint8

const (
	None LineEnding = iota // absent
	LF                     // Unix: \n
	CRLF                   // Windows: \r\n
	CR                     // Old Mac: \r
)

var all = [...]LineEnding{LF, CRLF, CR}

// All returns the canonical variants in declaration order.
func All() []LineEnding {
	out := make([]LineEnding, len(all))
	copy(out, all[:])
	return out
}

// Valid reports whether le is one of LF, CRLF or CR.
func (le LineEnding) Valid() bool {
	return le == LF || le == CRLF || le == CR
}

// Representation returns the exact character sequence of the line ending,
// or "" for None.
func (le LineEnding) Representation() string {
	switch le {
	case LF:
		return "\n"
	case CRLF:
		return "\r\n"
	case CR:
		return "\r"
	default:
		return ""
	}
}

// String returns the short name used in logs, flags and config files.
func (le LineEnding) String() string {
	switch le {
	case LF:
		return "lf"
	case CRLF:
		return "crlf"
	case CR:
		return "cr"
	case None:
		return "none"
	default:
		return fmt.Sprintf("LineEnding(%d)", uint8(le))
	}
}

// Equals reports whether s holds exactly the bytes of le.
// None never equals anything.
func (le LineEnding) Equals(s string) bool {
	return le.Valid() && le.Representation() == s
}

// EqualString is Equals with the operands swapped.
func EqualString(s string, le LineEnding) bool {
	return le.Equals(s)
}

// Equal compares line endings and raw strings in either order. Operands may
// be LineEnding, string or *string; nil, a nil *string, None and any other
// type compare unequal to everything.
func Equal(a, b any) bool {
	ra, ok := representationOf(a)
	if !ok {
		return false
	}
	rb, ok := representationOf(b)
	if !ok {
		return false
	}
	return ra == rb
}

func representationOf(v any) (string, bool) {
	switch t := v.(type) {
	case LineEnding:
		if !t.Valid() {
			return "", false
		}
		return t.Representation(), true
	case string:
		return t, true
	case *string:
		if t == nil {
			return "", false
		}
		return *t, true
	default:
		return "", false
	}
}

// Find returns the variant whose representation is exactly value. The empty
// string and unrecognized values are a normal negative result.
func Find(value string) (LineEnding, bool) {
	for _, le := range all {
		if le.Representation() == value {
			return le, true
		}
	}
	return None, false
}

// FindRef is Find for an optional value. A nil value is a missing argument,
// which is distinct from an empty or unrecognized one.
func FindRef(value *string) (LineEnding, bool, error) {
	if value == nil {
		return None, false, &ArgumentError{Name: "value"}
	}
	le, ok := Find(*value)
	return le, ok, nil
}

// Require is Find for callers that expect value to be a known line ending.
func Require(value string) (LineEnding, error) {
	le, ok := Find(value)
	if !ok {
		return None, &UnknownValueError{Value: value}
	}
	return le, nil
}

// FromNewline resolves the host's newline convention into a canonical variant.
func FromNewline(newline string) (LineEnding, error) {
	le, err := Require(newline)
	if err != nil {
		return None, fmt.Errorf("native newline: %w", err)
	}
	return le, nil
}

// MustFromNewline is FromNewline for process start-up; a host reporting an
// unknown newline sequence is a broken configuration contract.
func MustFromNewline(newline string) LineEnding {
	le, err := FromNewline(newline)
	if err != nil {
		panic(err)
	}
	return le
}

// ParseName accepts a short name (lf, crlf, cr; case-insensitive) or an
// escaped representation (\n, \r\n, \r).
func ParseName(name string) (LineEnding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lf", `\n`:
		return LF, nil
	case "crlf", `\r\n`:
		return CRLF, nil
	case "cr", `\r`:
		return CR, nil
	}
	if le, ok := Find(name); ok {
		return le, nil
	}
	return None, &UnknownValueError{Value: name}
}

// MarshalText encodes le by name.
func (le LineEnding) MarshalText() ([]byte, error) {
	if !le.Valid() {
		return nil, &UnknownValueError{Value: le.String()}
	}
	return []byte(le.String()), nil
}

// UnmarshalText decodes a name accepted by ParseName.
func (le *LineEnding) UnmarshalText(text []byte) error {
	v, err := ParseName(string(text))
	if err != nil {
		return err
	}
	*le = v
	return nil
}
