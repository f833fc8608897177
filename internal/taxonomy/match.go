package taxonomy

import "strings"

// isWordByte reports whether b can be part of a term, so that a term adjacent
// to it is not a whole-word match. "java" next to "script" or "c" next to "++"
// are therefore rejected.
func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' ||
		b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' ||
		b == '+' || b == '#' || b == '_' || b >= 0x80
}

// IndexTerm returns the byte offset of the first whole-word occurrence of term
// in text, or -1. Both are expected to be lower-case.
func IndexTerm(text, term string) int {
	if term == "" {
		return -1
	}
	offset := 0
	for {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(term)
		if bounded(text, term, start, end) {
			return start
		}
		offset = start + 1
	}
}

// CountTerm counts non-overlapping whole-word occurrences of term in text.
func CountTerm(text, term string) int {
	if term == "" {
		return 0
	}
	count := 0
	offset := 0
	for offset <= len(text)-len(term) {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(term)
		if bounded(text, term, start, end) {
			count++
			offset = end
			continue
		}
		offset = start + 1
	}
	return count
}

// ContainsTerm reports whether term occurs in text as a whole word.
func ContainsTerm(text, term string) bool {
	return IndexTerm(text, term) >= 0
}

// ContainsAny reports whether any of the terms occurs as a whole word.
func ContainsAny(text string, terms []string) bool {
	for _, term := range terms {
		if ContainsTerm(text, term) {
			return true
		}
	}
	return false
}

// MatchAll returns the terms found in text, in the order given.
func MatchAll(text string, terms []string) []string {
	var found []string
	for _, term := range terms {
		if ContainsTerm(text, term) {
			found = append(found, term)
		}
	}
	return found
}

// bounded checks the characters around text[start:end]. A term that itself
// starts or ends with a non-word character ("$", "401(k)") only needs the
// opposite side to be bounded.
func bounded(text, term string, start, end int) bool {
	if start > 0 && isWordByte(term[0]) && isWordByte(text[start-1]) {
		return false
	}
	if end < len(text) && isWordByte(term[len(term)-1]) && isWordByte(text[end]) {
		return false
	}
	return true
}
