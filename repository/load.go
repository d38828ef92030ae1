package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/erraggy/jsonschema/internal/uri"
	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/metaschema"
	"github.com/erraggy/jsonschema/schema"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// Load returns the schema at schemaURI, fetching and dereferencing its
// document first when the table does not hold it yet.
func (r *Repository) Load(ctx context.Context, schemaURI string) (any, error) {
	key, err := lookupKey(schemaURI)
	if err != nil {
		return nil, err
	}
	docURI, _ := uri.SplitFragment(key)
	if !r.table.Has(docURI) {
		if err := r.loadDocument(ctx, docURI); err != nil {
			return nil, err
		}
	}
	s, ok := r.table.Lookup(key)
	if !ok {
		return nil, &schemaerrors.UnresolvedRefError{Ref: schemaURI, AbsoluteRef: key}
	}
	return s, nil
}

// LoadReferenced fetches every document referenced by $ref, $dynamicRef or
// $recursiveRef but missing from the table, repeating until the table is
// closed under references. Fetches stop with a *schemaerrors.ResourceLimitError
// once the WithMaxDocuments limit is reached.
func (r *Repository) LoadReferenced(ctx context.Context) error {
	for {
		missing := r.missingDocuments()
		if len(missing) == 0 {
			return nil
		}
		for _, docURI := range missing {
			if err := ctx.Err(); err != nil {
				return err
			}
			if r.table.Has(docURI) {
				continue
			}
			if err := r.loadDocument(ctx, docURI); err != nil {
				return err
			}
		}
	}
}

// missingDocuments lists, in discovery order, the documents that reference
// targets point into but the table lacks.
func (r *Repository) missingDocuments() []string {
	var missing []string
	for _, docURI := range r.table.Documents() {
		root, ok := r.table.Lookup(docURI)
		if !ok {
			continue
		}
		for _, rec := range schema.CollectRefs(r.table, root) {
			switch rec.Property {
			case schema.PropertyRef, schema.PropertyDynamicRef, schema.PropertyRecursiveRef:
			default:
				continue
			}
			target, _ := uri.SplitFragment(rec.Absolute)
			if target == "" || r.table.Has(target) || slices.Contains(missing, target) {
				continue
			}
			missing = append(missing, target)
		}
	}
	return missing
}

// PreloadMetaSchema registers every document making up the meta-schema of
// draft. Embedded copies are used when available; anything else goes through
// the fetcher.
func (r *Repository) PreloadMetaSchema(ctx context.Context, draft schema.Draft) error {
	uris := draft.MetaSchemaURIs()
	if len(uris) == 0 {
		return &schemaerrors.ConfigError{Option: "draft", Value: draft, Message: "unsupported draft"}
	}
	for _, u := range uris {
		if r.table.Has(u) {
			continue
		}
		if err := r.loadDocument(ctx, u); err != nil {
			return err
		}
	}
	r.logger.Debug("preloaded meta-schema", "draft", draft.String())
	return nil
}

// loadDocument obtains the document at docURI and dereferences it.
func (r *Repository) loadDocument(ctx context.Context, docURI string) error {
	data, embedded := metaschema.Lookup(docURI)
	if !embedded {
		if r.fetcher == nil {
			return &schemaerrors.FetchError{URI: docURI, Message: "no fetcher configured"}
		}
		if r.fetched >= r.maxDocuments {
			return &schemaerrors.ResourceLimitError{
				ResourceType: "documents",
				Limit:        int64(r.maxDocuments),
				Actual:       int64(r.fetched + 1),
				Message:      "too many referenced documents",
			}
		}
		var err error
		data, err = r.fetcher.Fetch(ctx, docURI)
		if err != nil {
			r.logger.Warn("fetch failed", "uri", docURI, "error", err)
			return err
		}
		r.fetched++
	}

	doc, err := jsonvalue.DecodeDocument(data)
	if err != nil {
		var de *schemaerrors.DecodeError
		if errors.As(err, &de) && de.Source == "" {
			de.Source = docURI
		}
		return fmt.Errorf("repository: load %s: %w", docURI, err)
	}
	if err := r.DereferenceURI(docURI, doc); err != nil {
		return err
	}
	r.logger.Info("loaded document", "uri", docURI, "bytes", len(data), "embedded", embedded)
	return nil
}
