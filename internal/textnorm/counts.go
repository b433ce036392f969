package textnorm

import (
	"strings"

	"textnorm/internal/lineending"
)

// Counts holds how many endings of each kind a text contains.
type Counts struct {
	LF   int
	CRLF int
	CR   int
}

// Count tallies the line endings in value. A CRLF pair counts once.
func Count(value string) Counts {
	var c Counts
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '\r':
			if i+1 < len(value) && value[i+1] == '\n' {
				c.CRLF++
				i++
			} else {
				c.CR++
			}
		case '\n':
			c.LF++
		}
	}
	return c
}

// Total is the number of line endings.
func (c Counts) Total() int { return c.LF + c.CRLF + c.CR }

// Mixed reports whether more than one kind of ending is present.
func (c Counts) Mixed() bool {
	kinds := 0
	for _, n := range []int{c.LF, c.CRLF, c.CR} {
		if n > 0 {
			kinds++
		}
	}
	return kinds > 1
}

// Dominant returns the most frequent ending, preferring CRLF then CR on a
// tie, or None when the text has no endings.
func (c Counts) Dominant() lineending.LineEnding {
	if c.Total() == 0 {
		return lineending.None
	}
	if c.CRLF >= c.LF && c.CRLF >= c.CR {
		return lineending.CRLF
	}
	if c.CR >= c.LF {
		return lineending.CR
	}
	return lineending.LF
}

// EnsureTrailing appends le unless value is empty or already ends with a
// line ending.
func EnsureTrailing(value string, le lineending.LineEnding) (string, error) {
	if !le.Valid() {
		return "", lineending.Missing("lineEnding")
	}
	if value == "" || strings.HasSuffix(value, "\n") || strings.HasSuffix(value, "\r") {
		return value, nil
	}
	return value + le.Representation(), nil
}

// ToValidUTF8 replaces invalid byte sequences with the Unicode replacement
// character.
func ToValidUTF8(value string) string {
	return strings.ToValidUTF8(value, "�")
}
