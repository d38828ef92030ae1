// Package uri implements the small subset of RFC 3986 needed to give every
// schema resource an absolute identity: splitting a reference into its
// components, resolving it against a base, and fragment handling.
package uri

import (
	"regexp"
	"strings"

	"github.com/erraggy/jsonschema/schemaerrors"
)

// rfc3986 is the splitting expression from RFC 3986 Appendix B.
var rfc3986 = regexp.MustCompile(`^(([^:/?#]+):)?(//([^/?#]*))?([^?#]*)(\?([^#]*))?(#(.*))?$`)

// URL is a parsed URI reference. Components that were absent in the source
// are distinguished from present-but-empty ones via the Has* flags.
type URL struct {
	Scheme    string
	Authority string
	Path      string
	Query     string
	Fragment  string

	HasScheme    bool
	HasAuthority bool
	HasQuery     bool
	HasFragment  bool
}

// Parse splits s into its components. Strings containing ASCII control
// characters are rejected.
func Parse(s string) (URL, error) {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c == 0x7f {
			return URL{}, &schemaerrors.InvalidURLError{URL: s, Message: "contains control characters"}
		}
	}
	m := rfc3986.FindStringSubmatch(s)
	if m == nil {
		return URL{}, &schemaerrors.InvalidURLError{URL: s, Message: "not a URI reference"}
	}
	u := URL{
		Scheme:       strings.ToLower(m[2]),
		HasScheme:    m[1] != "",
		Authority:    m[4],
		HasAuthority: m[3] != "",
		Path:         m[5],
		Query:        m[7],
		HasQuery:     m[6] != "",
		Fragment:     m[9],
		HasFragment:  m[8] != "",
	}
	return u, nil
}

// MustParse is like Parse but panics on error. For constants and tests.
func MustParse(s string) URL {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// IsAbsolute reports whether the URL carries a scheme.
func (u URL) IsAbsolute() bool {
	return u.HasScheme
}

// Href serializes the URL. An empty fragment is treated as absent, so
// "http://x/y#" and "http://x/y" have the same Href.
func (u URL) Href() string {
	var b strings.Builder
	if u.HasScheme {
		b.WriteString(u.Scheme)
		b.WriteByte(':')
	}
	if u.HasAuthority {
		b.WriteString("//")
		b.WriteString(u.Authority)
	}
	b.WriteString(u.Path)
	if u.HasQuery {
		b.WriteByte('?')
		b.WriteString(u.Query)
	}
	if u.HasFragment && u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.Fragment)
	}
	return b.String()
}

// String implements fmt.Stringer.
func (u URL) String() string {
	return u.Href()
}

// WithFragment returns a copy with the fragment replaced. An empty fragment
// removes it.
func (u URL) WithFragment(fragment string) URL {
	u.Fragment = fragment
	u.HasFragment = fragment != ""
	return u
}

// WithoutFragment returns a copy with the fragment removed.
func (u URL) WithoutFragment() URL {
	return u.WithFragment("")
}

// Resolve resolves ref against u following RFC 3986 section 5.2.2,
// including dot-segment removal.
func (u URL) Resolve(ref URL) URL {
	var t URL
	switch {
	case ref.HasScheme:
		t = ref
		t.Path = removeDotSegments(ref.Path)
	case ref.HasAuthority:
		t = ref
		t.Scheme, t.HasScheme = u.Scheme, u.HasScheme
		t.Path = removeDotSegments(ref.Path)
	default:
		t.Scheme, t.HasScheme = u.Scheme, u.HasScheme
		t.Authority, t.HasAuthority = u.Authority, u.HasAuthority
		switch {
		case ref.Path == "":
			t.Path = u.Path
			if ref.HasQuery {
				t.Query, t.HasQuery = ref.Query, true
			} else {
				t.Query, t.HasQuery = u.Query, u.HasQuery
			}
		case strings.HasPrefix(ref.Path, "/"):
			t.Path = removeDotSegments(ref.Path)
			t.Query, t.HasQuery = ref.Query, ref.HasQuery
		default:
			t.Path = removeDotSegments(merge(u, ref.Path))
			t.Query, t.HasQuery = ref.Query, ref.HasQuery
		}
	}
	t.Fragment, t.HasFragment = ref.Fragment, ref.HasFragment
	return t
}

// Resolve parses ref and base and resolves ref against base. The result
// must be absolute: a ref without a scheme requires an absolute base.
func Resolve(ref, base string) (URL, error) {
	r, err := Parse(ref)
	if err != nil {
		return URL{}, err
	}
	if r.HasScheme {
		return URL{}.Resolve(r), nil
	}
	if base == "" {
		return URL{}, &schemaerrors.InvalidURLError{URL: ref, Message: "relative reference without a base URI"}
	}
	b, err := Parse(base)
	if err != nil {
		return URL{}, err
	}
	if !b.HasScheme {
		return URL{}, &schemaerrors.InvalidURLError{URL: ref, Base: base, Message: "base URI is not absolute"}
	}
	return b.Resolve(r), nil
}

// ResolveString is Resolve returning the serialized result.
func ResolveString(ref, base string) (string, error) {
	u, err := Resolve(ref, base)
	if err != nil {
		return "", err
	}
	return u.Href(), nil
}

// SplitFragment returns s without its fragment, and the fragment itself.
func SplitFragment(s string) (string, string) {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

func merge(base URL, refPath string) string {
	if base.HasAuthority && base.Path == "" {
		return "/" + refPath
	}
	if i := strings.LastIndexByte(base.Path, '/'); i >= 0 {
		return base.Path[:i+1] + refPath
	}
	return refPath
}

// removeDotSegments implements RFC 3986 section 5.2.4.
func removeDotSegments(path string) string {
	if !strings.Contains(path, ".") {
		return path
	}
	var out []string
	in := path
	for in != "" {
		switch {
		case strings.HasPrefix(in, "../"):
			in = in[3:]
		case strings.HasPrefix(in, "./"):
			in = in[2:]
		case strings.HasPrefix(in, "/./"):
			in = in[2:]
		case in == "/.":
			in = "/"
		case strings.HasPrefix(in, "/../"):
			in = in[3:]
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case in == "/..":
			in = "/"
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case in == "." || in == "..":
			in = ""
		default:
			start := 0
			if in[0] == '/' {
				start = 1
			}
			end := strings.IndexByte(in[start:], '/')
			if end < 0 {
				end = len(in)
			} else {
				end += start
			}
			out = append(out, in[:end])
			in = in[end:]
		}
	}
	return strings.Join(out, "")
}
