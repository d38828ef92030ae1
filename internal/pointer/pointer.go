// Package pointer implements JSON Pointer (RFC 6901) reference tokens and the
// percent-encoding used when a pointer travels inside a URI fragment.
package pointer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/erraggy/jsonschema/jsonvalue"
)

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")
var tokenUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// Escape escapes a reference token: "~" becomes "~0" and "/" becomes "~1".
func Escape(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	return tokenEscaper.Replace(token)
}

// Unescape reverses Escape.
func Unescape(token string) string {
	if !strings.Contains(token, "~") {
		return token
	}
	return tokenUnescaper.Replace(token)
}

// Append adds an escaped token to a pointer.
func Append(ptr, token string) string {
	return ptr + "/" + Escape(token)
}

// AppendIndex adds an array index to a pointer.
func AppendIndex(ptr string, i int) string {
	return ptr + "/" + strconv.Itoa(i)
}

// Split returns the unescaped tokens of ptr. The empty pointer has no tokens.
func Split(ptr string) ([]string, error) {
	if ptr == "" {
		return nil, nil
	}
	if ptr[0] != '/' {
		return nil, fmt.Errorf("pointer: %q does not start with '/'", ptr)
	}
	parts := strings.Split(ptr[1:], "/")
	for i, p := range parts {
		parts[i] = Unescape(p)
	}
	return parts, nil
}

// Get evaluates ptr against doc.
func Get(doc any, ptr string) (any, bool) {
	tokens, err := Split(ptr)
	if err != nil {
		return nil, false
	}
	cur := doc
	for _, tok := range tokens {
		switch node := cur.(type) {
		case *jsonvalue.Object:
			v, ok := node.Get(tok)
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, ok := parseIndex(tok)
			if !ok || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

func parseIndex(tok string) (int, bool) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, false
	}
	i, err := strconv.Atoi(tok)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// fragmentSafe holds the characters encodeURI leaves untouched.
const fragmentSafe = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789" +
	";,/?:@&=+$-_.!~*'()#"

const upperhex = "0123456789ABCDEF"

// EncodeFragment percent-encodes s for use as a URI fragment. The set of
// characters left as is matches ECMAScript encodeURI.
func EncodeFragment(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(fragmentSafe, s[i]) < 0 {
			n++
		}
	}
	if n == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(fragmentSafe, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

// DecodeFragment percent-decodes s. Malformed escapes, and escapes that
// would produce invalid UTF-8, are left untouched.
func DecodeFragment(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			out = append(out, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		out = append(out, s[i])
	}
	if !utf8.Valid(out) {
		return s
	}
	return string(out)
}

// NormalizeFragment brings a fragment to canonical percent-encoded form so
// that "#/a%20b" and "#/a b" address the same table entry.
func NormalizeFragment(s string) string {
	return EncodeFragment(DecodeFragment(s))
}

// Fragment encodes a pointer as a URI fragment, without the leading '#'.
func Fragment(ptr string) string {
	return EncodeFragment(ptr)
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
