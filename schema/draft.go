package schema

import (
	"fmt"
	"strings"

	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// Draft identifies a published JSON Schema draft.
type Draft int

const (
	// DraftUnknown is the zero value: no draft was specified.
	DraftUnknown Draft = iota
	Draft4
	Draft7
	Draft201909
	Draft202012
)

// DefaultDraft is used when a schema carries no recognizable $schema.
const DefaultDraft = Draft202012

var draftNames = map[Draft]string{
	Draft4:      "draft4",
	Draft7:      "draft7",
	Draft201909: "draft2019-09",
	Draft202012: "draft2020-12",
}

// String returns the stable identifier of the draft ("draft4", "draft7",
// "draft2019-09", "draft2020-12").
func (d Draft) String() string {
	if s, ok := draftNames[d]; ok {
		return s
	}
	return "unknown"
}

// Drafts lists the supported drafts, oldest first.
func Drafts() []Draft {
	return []Draft{Draft4, Draft7, Draft201909, Draft202012}
}

// ParseDraft converts a user-supplied draft name. It accepts the String form
// as well as short forms like "4", "draft-07", "2019-09" and "2020-12".
func ParseDraft(s string) (Draft, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "4", "04", "draft4", "draft-04", "draft-4":
		return Draft4, nil
	case "6", "06", "draft6", "draft-06", "7", "07", "draft7", "draft-07", "draft-7":
		return Draft7, nil
	case "2019-09", "draft2019-09", "draft-2019-09", "2019":
		return Draft201909, nil
	case "2020-12", "draft2020-12", "draft-2020-12", "2020":
		return Draft202012, nil
	}
	return DraftUnknown, &schemaerrors.ConfigError{Option: "draft", Value: s, Message: "unknown draft"}
}

// DraftFromSchemaURI maps a $schema value to a draft. Both http and https
// forms are accepted, with or without a trailing empty fragment.
func DraftFromSchemaURI(s string) (Draft, bool) {
	s = strings.TrimSuffix(s, "#")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "https://"), "http://")
	switch s {
	case "json-schema.org/draft-04/schema":
		return Draft4, true
	case "json-schema.org/draft-06/schema", "json-schema.org/draft-07/schema":
		return Draft7, true
	case "json-schema.org/draft/2019-09/schema":
		return Draft201909, true
	case "json-schema.org/draft/2020-12/schema", "json-schema.org/schema":
		return Draft202012, true
	}
	return DraftUnknown, false
}

var metaSchemaURIs = map[Draft][]string{
	Draft4: {"http://json-schema.org/draft-04/schema"},
	Draft7: {"http://json-schema.org/draft-07/schema"},
	Draft201909: {
		"https://json-schema.org/draft/2019-09/schema",
		"https://json-schema.org/draft/2019-09/meta/core",
		"https://json-schema.org/draft/2019-09/meta/applicator",
		"https://json-schema.org/draft/2019-09/meta/validation",
		"https://json-schema.org/draft/2019-09/meta/meta-data",
		"https://json-schema.org/draft/2019-09/meta/format",
		"https://json-schema.org/draft/2019-09/meta/content",
	},
	Draft202012: {
		"https://json-schema.org/draft/2020-12/schema",
		"https://json-schema.org/draft/2020-12/meta/core",
		"https://json-schema.org/draft/2020-12/meta/applicator",
		"https://json-schema.org/draft/2020-12/meta/unevaluated",
		"https://json-schema.org/draft/2020-12/meta/validation",
		"https://json-schema.org/draft/2020-12/meta/meta-data",
		"https://json-schema.org/draft/2020-12/meta/format-annotation",
		"https://json-schema.org/draft/2020-12/meta/content",
	},
}

// MetaSchemaURI returns the URI of the draft's top-level meta-schema.
func (d Draft) MetaSchemaURI() string {
	if uris := metaSchemaURIs[d]; len(uris) > 0 {
		return uris[0]
	}
	return ""
}

// MetaSchemaURIs returns every document making up the draft's meta-schema,
// the top-level document first.
func (d Draft) MetaSchemaURIs() []string {
	return append([]string(nil), metaSchemaURIs[d]...)
}

// Detect returns the draft declared by the schema's $schema keyword, or
// fallback when it is absent or unrecognized.
func Detect(schema any, fallback Draft) Draft {
	obj, ok := schema.(*jsonvalue.Object)
	if !ok {
		return fallback
	}
	v, _ := obj.Get("$schema")
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	if d, ok := DraftFromSchemaURI(s); ok {
		return d
	}
	return fallback
}

// MarshalText implements encoding.TextMarshaler.
func (d Draft) MarshalText() ([]byte, error) {
	if _, ok := draftNames[d]; !ok {
		return nil, fmt.Errorf("schema: cannot marshal draft %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Draft) UnmarshalText(b []byte) error {
	parsed, err := ParseDraft(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
