package stringutil

import (
	"regexp"
	"strings"
)

// atext from RFC 5322 section 3.2.3, as a dot-atom.
var dotAtomRegex = regexp.MustCompile("^[a-zA-Z0-9!#$%&'*+/=?^_`{|}~-]+(?:\\.[a-zA-Z0-9!#$%&'*+/=?^_`{|}~-]+)*$")

// SplitEmail splits s at its last '@'. It reports false when either side is empty.
func SplitEmail(s string) (local, domain string, ok bool) {
	i := strings.LastIndexByte(s, '@')
	if i <= 0 || i == len(s)-1 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// IsValidLocalPart checks an email local part: a dot-atom or a quoted string.
// With allowUnicode, characters outside ASCII are accepted as atext (RFC 6531).
func IsValidLocalPart(local string, allowUnicode bool) bool {
	if len(local) > 64 && !allowUnicode {
		return false
	}
	if strings.HasPrefix(local, `"`) {
		return isQuotedString(local)
	}
	if allowUnicode {
		var b strings.Builder
		for _, r := range local {
			if r > 0x7f {
				b.WriteByte('a')
				continue
			}
			b.WriteRune(r)
		}
		local = b.String()
	}
	return dotAtomRegex.MatchString(local)
}

func isQuotedString(s string) bool {
	if len(s) < 2 || !strings.HasSuffix(s, `"`) {
		return false
	}
	inner := s[1 : len(s)-1]
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case c == '\\':
			if i+1 >= len(inner) {
				return false
			}
			i++
		case c == '"' || c < 0x20 || c == 0x7f:
			return false
		}
	}
	return true
}
