package tokenize

import "unicode"

// hardSeparators are runes that end a phrase outright: sentence and
// clause boundaries. Everything else non-alphanumeric (space, comma,
// hyphen, quotes...) is a soft separator.
var hardSeparators = map[rune]bool{
	'.': true, '!': true, '?': true,
	'\n': true, '\r': true,
	';': true, ':': true,
	'(': true, ')': true, '[': true, ']': true, '{': true, '}': true,
}

// classifySeparator inspects a non-word segment and decides whether it
// behaves as a hard or soft separator for positional proximity.
func classifySeparator(s string) Kind {
	for _, r := range s {
		if hardSeparators[r] {
			return KindHardSeparator
		}
		if !unicode.IsSpace(r) && !unicode.IsPunct(r) {
			// Contains other content (e.g. a symbol run); treat as soft
			// so it never silently swallows proximity.
			return KindSoftSeparator
		}
	}
	return KindSoftSeparator
}
