// Package metaschema embeds the official meta-schemas of the supported
// drafts so they can be loaded without network access.
package metaschema

import (
	"context"
	"embed"
	"slices"
	"strings"

	"github.com/erraggy/jsonschema/fetch"
	"github.com/erraggy/jsonschema/schemaerrors"
)

//go:embed schemas
var files embed.FS

// documents maps a meta-schema URI, without scheme, to its embedded file.
var documents = map[string]string{
	"json-schema.org/draft-04/schema":                      "schemas/draft-04/schema.json",
	"json-schema.org/draft-07/schema":                      "schemas/draft-07/schema.json",
	"json-schema.org/draft/2019-09/schema":                 "schemas/2019-09/schema.json",
	"json-schema.org/draft/2019-09/meta/core":              "schemas/2019-09/meta/core.json",
	"json-schema.org/draft/2019-09/meta/applicator":        "schemas/2019-09/meta/applicator.json",
	"json-schema.org/draft/2019-09/meta/validation":        "schemas/2019-09/meta/validation.json",
	"json-schema.org/draft/2019-09/meta/meta-data":         "schemas/2019-09/meta/meta-data.json",
	"json-schema.org/draft/2019-09/meta/format":            "schemas/2019-09/meta/format.json",
	"json-schema.org/draft/2019-09/meta/content":           "schemas/2019-09/meta/content.json",
	"json-schema.org/draft/2020-12/schema":                 "schemas/2020-12/schema.json",
	"json-schema.org/draft/2020-12/meta/core":              "schemas/2020-12/meta/core.json",
	"json-schema.org/draft/2020-12/meta/applicator":        "schemas/2020-12/meta/applicator.json",
	"json-schema.org/draft/2020-12/meta/unevaluated":       "schemas/2020-12/meta/unevaluated.json",
	"json-schema.org/draft/2020-12/meta/validation":        "schemas/2020-12/meta/validation.json",
	"json-schema.org/draft/2020-12/meta/meta-data":         "schemas/2020-12/meta/meta-data.json",
	"json-schema.org/draft/2020-12/meta/format-annotation": "schemas/2020-12/meta/format-annotation.json",
	"json-schema.org/draft/2020-12/meta/content":           "schemas/2020-12/meta/content.json",
}

func key(uri string) string {
	uri = strings.TrimSuffix(uri, "#")
	return strings.TrimPrefix(strings.TrimPrefix(uri, "https://"), "http://")
}

// Lookup returns the embedded document for a meta-schema URI. http and https
// forms are both accepted.
func Lookup(uri string) ([]byte, bool) {
	name, ok := documents[key(uri)]
	if !ok {
		return nil, false
	}
	data, err := files.ReadFile(name)
	if err != nil {
		return nil, false
	}
	return data, true
}

// URIs returns the https form of every embedded meta-schema URI, sorted.
func URIs() []string {
	out := make([]string, 0, len(documents))
	for k := range documents {
		out = append(out, "https://"+k)
	}
	slices.Sort(out)
	return out
}

// Fetcher serves the embedded meta-schemas and delegates every other URI
// to next. A nil next fails for unknown URIs.
func Fetcher(next fetch.Fetcher) fetch.Fetcher {
	return fetch.FetcherFunc(func(ctx context.Context, uri string) ([]byte, error) {
		if data, ok := Lookup(uri); ok {
			return data, nil
		}
		if next == nil {
			return nil, &schemaerrors.FetchError{URI: uri, Message: "not an embedded meta-schema"}
		}
		return next.Fetch(ctx, uri)
	})
}
