package textmatch

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds s into the form every comparison works on: NFKC,
// lowercase, punctuation and symbols removed, whitespace runs collapsed
// to one space and trimmed. Letters of any script are kept.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	// Casers are stateful; one per call keeps Normalize goroutine-safe.
	s = cases.Lower(language.Und).String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// hasTerm reports whether normalized text s contains normalized term.
// Terms that begin or end with an ASCII letter or digit must sit on a word
// boundary, so "ok" does not match inside "book"; CJK terms match anywhere.
func hasTerm(s, term string) bool {
	return termIndex(s, term, 0) >= 0
}

// removeTerm blanks out every boundary-respecting occurrence of term.
func removeTerm(s, term string) string {
	if term == "" {
		return s
	}
	var b strings.Builder
	from := 0
	for {
		i := termIndex(s, term, from)
		if i < 0 {
			break
		}
		b.WriteString(s[from:i])
		b.WriteByte(' ')
		from = i + len(term)
	}
	b.WriteString(s[from:])
	return b.String()
}

func termIndex(s, term string, from int) int {
	if term == "" {
		return -1
	}
	for from <= len(s) {
		i := strings.Index(s[from:], term)
		if i < 0 {
			return -1
		}
		i += from
		if onBoundary(s, term, i) {
			return i
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		from = i + size
	}
	return -1
}

func onBoundary(s, term string, i int) bool {
	first, _ := utf8.DecodeRuneInString(term)
	last, _ := utf8.DecodeLastRuneInString(term)
	if isASCIIAlnum(first) && i > 0 {
		prev, _ := utf8.DecodeLastRuneInString(s[:i])
		if isASCIIAlnum(prev) {
			return false
		}
	}
	end := i + len(term)
	if isASCIIAlnum(last) && end < len(s) {
		next, _ := utf8.DecodeRuneInString(s[end:])
		if isASCIIAlnum(next) {
			return false
		}
	}
	return true
}

func isASCIIAlnum(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// ContainsTerm reports whether text contains term once both are
// normalized, honoring ASCII word boundaries.
func ContainsTerm(text, term string) bool {
	return hasTerm(Normalize(text), Normalize(term))
}
