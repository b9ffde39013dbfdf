package rewritesink

import (
	"strings"
)

// DefaultEmailReplacement replaces each email address found by redactEmail rule
const DefaultEmailReplacement = "REDACTED"

var (
	emailAddressChars [256]bool // allowed in local part and domain
	emailNameChars    [256]bool // allowed next to '@' and after the first dot of domain
)

func init() {
	for c := 0; c < 256; c++ {
		b := byte(c)
		alnum := (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
		emailNameChars[c] = alnum
		emailAddressChars[c] = alnum || b == '.' || b == '-' || b == '_'
	}
}

// redactEmails replaces email addresses in src. It returns src itself if nothing is found.
//
// Truncated addresses at the end are also replaced, e.g. "foo@google." and "foo@googl"
func redactEmails(src string, replacement string) (string, int) {
	at := findNextEmailAt(src, strings.IndexByte(src, '@'))
	if at == -1 {
		return src, 0
	}

	var dst strings.Builder
	dst.Grow(len(src))
	numRedacted := 0
	copied := 0
	for at != -1 {
		end := findEmailEnd(src, at)
		if end == -1 {
			at = findNextEmailAt(src, indexByteFrom(src, '@', at+1))
			continue
		}
		start := findEmailStart(src, at, copied)
		dst.WriteString(src[copied:start])
		dst.WriteString(replacement)
		numRedacted++
		copied = end
		at = findNextEmailAt(src, indexByteFrom(src, '@', end))
	}
	dst.WriteString(src[copied:])
	return dst.String(), numRedacted
}

// findNextEmailAt finds the first '@' from the given index which has name chars at both sides
func findNextEmailAt(src string, at int) int {
	for at != -1 {
		if at > 0 && at < len(src)-1 && emailNameChars[src[at-1]] && emailNameChars[src[at+1]] {
			return at
		}
		at = indexByteFrom(src, '@', at+1)
	}
	return -1
}

func indexByteFrom(src string, c byte, from int) int {
	if from >= len(src) {
		return -1
	}
	i := strings.IndexByte(src[from:], c)
	if i == -1 {
		return -1
	}
	return from + i
}

func findEmailStart(src string, at int, limit int) int {
	i := at - 1
	for i >= limit && emailAddressChars[src[i]] {
		i--
	}
	return i + 1
}

// findEmailEnd returns the end of domain after '@', or -1 if it's not an email address
func findEmailEnd(src string, at int) int {
	dot := -1
	for i := at + 1; i < len(src); i++ {
		c := src[i]
		if !emailAddressChars[c] {
			return -1
		}
		if c == '.' {
			dot = i
			break
		}
	}

	switch {
	case dot == -1: // e.g. foo.bar@google
		if looksLikeNumber(src[at+1:]) {
			return -1
		}
		return len(src)
	case dot == len(src)-1: // e.g. foo.bar@google.
		return len(src)
	case !emailNameChars[src[dot+1]]: // e.g. Trx@123456./
		return -1
	}

	end := dot + 2
	for end < len(src) && emailAddressChars[src[end]] {
		end++
	}
	if looksLikeNumber(src[at+1 : end]) {
		return -1
	}
	return end
}

// looksLikeNumber checks if s starts and ends with digits, e.g. "123.456"
func looksLikeNumber(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return first >= '0' && first <= '9' && last >= '0' && last <= '9'
}
