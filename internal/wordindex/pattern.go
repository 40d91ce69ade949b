package wordindex

import (
	apperrors "github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/errors"
)

const (
	// MaxWordLen is the longest word the index stores.
	MaxWordLen   = 24
	alphabetSize = 26
)

// Blank marks an open position in a Pattern.
const Blank byte = 0

// Pattern holds one cell per position: a lowercase letter or Blank.
type Pattern []byte

func (p Pattern) String() string {
	out := make([]byte, len(p))
	for i, c := range p {
		if c == Blank {
			out[i] = '_'
		} else {
			out[i] = c
		}
	}
	return string(out)
}

// LetterCounts is a per-letter occurrence vector, index 0 being 'a'.
type LetterCounts [alphabetSize]uint8

// Len returns the number of letters counted.
func (lc LetterCounts) Len() int {
	n := 0
	for _, c := range lc {
		n += int(c)
	}
	return n
}

func countLetters(word string) LetterCounts {
	var lc LetterCounts
	for i := 0; i < len(word); i++ {
		idx := word[i] - 'a'
		if lc[idx] < 255 {
			lc[idx]++
		}
	}
	return lc
}

func isASCIIAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func toLower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// NormalizeWord lowercases a word-list line. ok is false when the line holds
// anything but ASCII letters or falls outside 1..MaxWordLen.
func NormalizeWord(line string) (string, bool) {
	if len(line) == 0 || len(line) > MaxWordLen {
		return "", false
	}
	buf := make([]byte, len(line))
	for i := 0; i < len(line); i++ {
		c := line[i]
		if !isASCIIAlpha(c) {
			return "", false
		}
		buf[i] = toLower(c)
	}
	return string(buf), true
}

// ParsePattern accepts letters (any case) and the blanks '_', '?' and '.'.
func ParsePattern(raw string) (Pattern, error) {
	if len(raw) == 0 || len(raw) > MaxWordLen {
		return nil, apperrors.Invalidf(apperrors.ErrInvalidPattern,
			"pattern must be between 1 and %d characters", MaxWordLen)
	}
	p := make(Pattern, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '_' || c == '?' || c == '.':
			p[i] = Blank
		case isASCIIAlpha(c):
			p[i] = toLower(c)
		default:
			return nil, apperrors.Invalidf(apperrors.ErrInvalidPattern,
				"pattern contains invalid character %q", rune(c))
		}
	}
	return p, nil
}

// ParseLetters parses a must/cannot-include list into unique lowercase
// letters in first-seen order.
func ParseLetters(raw string) ([]byte, error) {
	var seen [alphabetSize]bool
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if !isASCIIAlpha(c) {
			return nil, apperrors.Invalidf(apperrors.ErrInvalidLetters,
				"letters must be a-z, got %q", rune(c))
		}
		c = toLower(c)
		if seen[c-'a'] {
			continue
		}
		seen[c-'a'] = true
		out = append(out, c)
	}
	return out, nil
}

// ParseLetterBag counts the letters of an anagram bag whose size must equal
// expectedLen.
func ParseLetterBag(raw string, expectedLen int) (LetterCounts, error) {
	var lc LetterCounts
	if len(raw) != expectedLen {
		return lc, apperrors.Invalidf(apperrors.ErrInvalidLetters,
			"letters length %d does not match pattern length %d", len(raw), expectedLen)
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if !isASCIIAlpha(c) {
			return lc, apperrors.Invalidf(apperrors.ErrInvalidLetters,
				"letters must be a-z, got %q", rune(c))
		}
		lc[toLower(c)-'a']++
	}
	return lc, nil
}

// CheckBagCoversPattern fails when the fixed letters of p need more of some
// letter than bag holds.
func CheckBagCoversPattern(p Pattern, bag LetterCounts) error {
	var need LetterCounts
	for _, c := range p {
		if c == Blank {
			continue
		}
		need[c-'a']++
		if need[c-'a'] > bag[c-'a'] {
			return apperrors.Invalidf(apperrors.ErrInvalidPattern,
				"pattern requires letters not present in the bag")
		}
	}
	return nil
}

// ValidatePage rejects zero or negative paging input.
func ValidatePage(page, pageSize int) error {
	if page < 1 {
		return apperrors.Invalidf(apperrors.ErrInvalidPage, "page must be at least 1")
	}
	if pageSize < 1 {
		return apperrors.Invalidf(apperrors.ErrInvalidPage, "page_size must be at least 1")
	}
	return nil
}
