package textmatch

import (
	"fmt"

	"github.com/myschoolct/portal-assistant/internal/errors"
)

// Code is a four-character American Soundex code such as "R163".
type Code string

const codeLength = 4

// soundexDigits maps A..Z to their Soundex digit; 0 means "not coded"
// (vowels, H, W, Y).
var soundexDigits = [26]byte{
	'A' - 'A': 0, 'B' - 'A': '1', 'C' - 'A': '2', 'D' - 'A': '3',
	'E' - 'A': 0, 'F' - 'A': '1', 'G' - 'A': '2', 'H' - 'A': 0,
	'I' - 'A': 0, 'J' - 'A': '2', 'K' - 'A': '2', 'L' - 'A': '4',
	'M' - 'A': '5', 'N' - 'A': '5', 'O' - 'A': 0, 'P' - 'A': '1',
	'Q' - 'A': '2', 'R' - 'A': '6', 'S' - 'A': '2', 'T' - 'A': '3',
	'U' - 'A': 0, 'V' - 'A': '1', 'W' - 'A': 0, 'X' - 'A': '2',
	'Y' - 'A': 0, 'Z' - 'A': '2',
}

// PhoneticCode returns the American Soundex code of word.
//
// The first letter is kept and its own digit counts for collapsing, so
// "Pfister" is P236. H and W are transparent: equal digits on both sides
// of them collapse. Vowels and Y separate equal digits.
//
// Only ASCII letters are accepted; anything else yields an error matching
// errors.ErrInvalidInput.
func PhoneticCode(word string) (Code, error) {
	if word == "" {
		return "", errors.NewValidationError("word", "empty input")
	}
	for i := 0; i < len(word); i++ {
		if upper(word[i]) == 0 {
			return "", errors.NewValidationError("word", fmt.Sprintf("non-alphabetic character at byte %d in %q", i, word))
		}
	}

	out := make([]byte, 1, codeLength)
	out[0] = upper(word[0])
	prev := soundexDigits[out[0]-'A']

	for i := 1; i < len(word) && len(out) < codeLength; i++ {
		c := upper(word[i])
		d := soundexDigits[c-'A']
		switch {
		case c == 'H' || c == 'W':
			// transparent
		case d == 0:
			prev = 0
		case d != prev:
			out = append(out, d)
			prev = d
		}
	}
	for len(out) < codeLength {
		out = append(out, '0')
	}
	return Code(out), nil
}

// upper returns the uppercase form of an ASCII letter, or 0 for any other byte.
func upper(c byte) byte {
	switch {
	case c >= 'A' && c <= 'Z':
		return c
	case c >= 'a' && c <= 'z':
		return c - 'a' + 'A'
	}
	return 0
}
