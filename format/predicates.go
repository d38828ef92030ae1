package format

import (
	"net/netip"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/erraggy/jsonschema/internal/stringutil"
	"github.com/erraggy/jsonschema/internal/uri"
)

var (
	dateRegex     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	timeRegex     = regexp.MustCompile(`^(?i)(\d{2}):(\d{2}):(\d{2})(\.\d+)?(z|([+-])(\d{2}):(\d{2}))$`)
	durationRegex = regexp.MustCompile(`^P(?:(\d+Y)?(\d+M)?(\d+D)?(?:T(\d+H)?(\d+M)?(\d+S)?)?|\d+W)$`)
	schemeRegex   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*$`)
	labelRegex    = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9\-]{0,61}[A-Za-z0-9])?$`)
	templateRegex = regexp.MustCompile(`^(?:[^{}]|\{[+#./;?&=,!@|]?[A-Za-z0-9_%.]+(?::[1-9]\d{0,3}|\*)?(?:,[A-Za-z0-9_%.]+(?::[1-9]\d{0,3}|\*)?)*\})*$`)
	relPtrRegex   = regexp.MustCompile(`^(?:0|[1-9]\d*)(?:#|(?:/(?:[^~]|~[01])*)*)$`)
)

var daysInMonth = [...]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsDate checks an RFC 3339 full-date.
func IsDate(s string) bool {
	m := dateRegex.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > daysInMonth[month] {
		return false
	}
	if month == 2 && day == 29 && !isLeapYear(year) {
		return false
	}
	return true
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// IsTime checks an RFC 3339 full-time. A leap second is accepted only when
// it falls on 23:59:60 UTC.
func IsTime(s string) bool {
	m := timeRegex.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second, _ := strconv.Atoi(m[3])
	if hour > 23 || minute > 59 || second > 60 {
		return false
	}
	offH, offM := 0, 0
	if m[6] != "" {
		offH, _ = strconv.Atoi(m[7])
		offM, _ = strconv.Atoi(m[8])
		if offH > 23 || offM > 59 {
			return false
		}
		if m[6] == "+" {
			offH, offM = -offH, -offM
		}
	}
	if second == 60 {
		utc := ((hour*60+minute+offH*60+offM)%1440 + 1440) % 1440
		return utc == 23*60+59
	}
	return true
}

// IsDateTime checks an RFC 3339 date-time.
func IsDateTime(s string) bool {
	i := strings.IndexAny(s, "Tt")
	if i < 0 {
		return false
	}
	return IsDate(s[:i]) && IsTime(s[i+1:])
}

// IsDuration checks an ISO 8601 duration as profiled by RFC 3339 appendix A.
func IsDuration(s string) bool {
	if s == "P" || strings.HasSuffix(s, "T") || !durationRegex.MatchString(s) {
		return false
	}
	return true
}

// IsEmail checks an RFC 5321 mailbox: a dot-atom or quoted local part, and a
// hostname or bracketed IP literal.
func IsEmail(s string) bool {
	local, domain, ok := stringutil.SplitEmail(s)
	if !ok || !stringutil.IsValidLocalPart(local, false) {
		return false
	}
	return isMailDomain(domain, IsHostname)
}

// IsIDNEmail is IsEmail with internationalized local parts and domains.
func IsIDNEmail(s string) bool {
	local, domain, ok := stringutil.SplitEmail(s)
	if !ok || !stringutil.IsValidLocalPart(local, true) {
		return false
	}
	return isMailDomain(domain, IsIDNHostname)
}

func isMailDomain(domain string, host Predicate) bool {
	if strings.HasPrefix(domain, "[") && strings.HasSuffix(domain, "]") {
		lit := domain[1 : len(domain)-1]
		if v6, ok := strings.CutPrefix(lit, "IPv6:"); ok {
			return IsIPv6(v6)
		}
		return IsIPv4(lit)
	}
	return host(domain)
}

// IsHostname checks an RFC 1123 hostname.
func IsHostname(s string) bool {
	if s == "" || len(s) > 253 {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if !labelRegex.MatchString(label) {
			return false
		}
		if isReservedACE(label) && !isValidPunycodeLabel(label) {
			return false
		}
	}
	return true
}

// isReservedACE reports a label with "--" in the third and fourth positions.
func isReservedACE(label string) bool {
	return len(label) >= 4 && label[2:4] == "--"
}

func isValidPunycodeLabel(label string) bool {
	return strings.EqualFold(label[:2], "xn") && len(label) > 4
}

// IsIDNHostname checks an internationalized hostname. Labels must be in
// Unicode normalization form C and made of letters, marks, digits and
// hyphens.
func IsIDNHostname(s string) bool {
	if s == "" || !utf8.ValidString(s) || !norm.NFC.IsNormalString(s) {
		return false
	}
	s = strings.NewReplacer("。", ".", "．", ".", "｡", ".").Replace(s)
	if len(s) > 253 {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if !isIDNLabel(label) {
			return false
		}
	}
	return true
}

func isIDNLabel(label string) bool {
	n := utf8.RuneCountInString(label)
	if n == 0 || n > 63 {
		return false
	}
	if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
		return false
	}
	if isReservedACE(label) && !isValidPunycodeLabel(label) {
		return false
	}
	for i, r := range label {
		switch {
		case r == '-', unicode.IsLetter(r), unicode.IsDigit(r):
		case unicode.IsMark(r):
			if i == 0 {
				return false
			}
		case r == '·' || r == '͵' || r == '׳' || r == '״' || r == '・' || r == '‍':
		default:
			return false
		}
	}
	return true
}

// IsIPv4 checks a dotted-quad IPv4 address without leading zeros.
func IsIPv4(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}

// IsIPv6 checks an RFC 4291 IPv6 address without a zone.
func IsIPv6(s string) bool {
	if strings.ContainsRune(s, '%') {
		return false
	}
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is6()
}

// IsURI checks an absolute RFC 3986 URI.
func IsURI(s string) bool {
	return isURIReference(s, false, true)
}

// IsURIReference checks an RFC 3986 URI reference.
func IsURIReference(s string) bool {
	return isURIReference(s, false, false)
}

// IsIRI checks an absolute RFC 3987 IRI.
func IsIRI(s string) bool {
	return isURIReference(s, true, true)
}

// IsIRIReference checks an RFC 3987 IRI reference.
func IsIRIReference(s string) bool {
	return isURIReference(s, true, false)
}

func isURIReference(s string, allowUnicode, requireScheme bool) bool {
	if !utf8.ValidString(s) {
		return false
	}
	u, err := uri.Parse(s)
	if err != nil {
		return false
	}
	if requireScheme && !u.HasScheme {
		return false
	}
	if u.HasScheme && !schemeRegex.MatchString(u.Scheme) {
		return false
	}
	if !u.HasScheme && strings.Contains(strings.SplitN(u.Path, "/", 2)[0], ":") {
		return false
	}
	if u.HasAuthority && !isAuthority(u.Authority, allowUnicode) {
		return false
	}
	return allowedChars(u.Path, allowUnicode, "/:@") &&
		allowedChars(u.Query, allowUnicode, "/?:@") &&
		allowedChars(u.Fragment, allowUnicode, "/?:@")
}

func isAuthority(a string, allowUnicode bool) bool {
	if i := strings.LastIndexByte(a, '@'); i >= 0 {
		if !allowedChars(a[:i], allowUnicode, ":") {
			return false
		}
		a = a[i+1:]
	}
	if strings.HasPrefix(a, "[") {
		end := strings.IndexByte(a, ']')
		if end < 0 || !IsIPv6(a[1:end]) {
			return false
		}
		a = a[end+1:]
		if a == "" {
			return true
		}
		return a[0] == ':' && isDigits(a[1:])
	}
	if i := strings.LastIndexByte(a, ':'); i >= 0 {
		if !isDigits(a[i+1:]) {
			return false
		}
		a = a[:i]
	}
	return allowedChars(a, allowUnicode, "")
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

const unreservedSubDelims = "-._~!$&'()*+,;="

// allowedChars checks s against unreserved, sub-delims, percent escapes and
// the given extra characters.
func allowedChars(s string, allowUnicode bool, extra string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case strings.IndexByte(unreservedSubDelims, c) >= 0, strings.IndexByte(extra, c) >= 0:
		case c == '%':
			if i+2 >= len(s) || !isHexDigit(s[i+1]) || !isHexDigit(s[i+2]) {
				return false
			}
			i += 2
		case c >= 0x80 && allowUnicode:
		default:
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// IsURITemplate checks an RFC 6570 URI template (levels 1 through 4).
func IsURITemplate(s string) bool {
	return templateRegex.MatchString(s)
}

// IsUUID checks the hyphenated RFC 4122 form.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// IsRegex checks that s compiles as a regular expression.
func IsRegex(s string) bool {
	_, err := regexp.Compile(s)
	return err == nil
}

// IsJSONPointer checks an RFC 6901 JSON Pointer.
func IsJSONPointer(s string) bool {
	if s == "" {
		return true
	}
	if s[0] != '/' {
		return false
	}
	return validEscapes(s)
}

func validEscapes(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '~' && (i+1 >= len(s) || (s[i+1] != '0' && s[i+1] != '1')) {
			return false
		}
	}
	return true
}

// IsRelativeJSONPointer checks a relative JSON Pointer.
func IsRelativeJSONPointer(s string) bool {
	return relPtrRegex.MatchString(s)
}
