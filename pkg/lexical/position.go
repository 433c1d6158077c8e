package lexical

import (
	"unicode/utf16"
	"unicode/utf8"
)

// CodePointLength counts Unicode code points in s.
func CodePointLength(s string) int {
	return utf8.RuneCountInString(s)
}

// UTF16Length counts the UTF-16 code units needed to encode s.
func UTF16Length(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// codeUnits is a string viewed as UTF-16, the unit flat text is sliced in.
type codeUnits []uint16

func toCodeUnits(s string) codeUnits {
	return utf16.Encode([]rune(s))
}

// width returns 2 when the unit at i opens a surrogate pair, else 1.
func (u codeUnits) width(i int) int {
	if i+1 < len(u) && utf16.IsSurrogate(rune(u[i])) && u[i] < 0xdc00 {
		return 2
	}
	return 1
}

// slice decodes units [from, to) back into a Go string.
func (u codeUnits) slice(from, to int) string {
	return string(utf16.Decode(u[from:to]))
}
