package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/erraggy/jsonschema/fetch"
	"github.com/erraggy/jsonschema/format"
	"github.com/erraggy/jsonschema/internal/pointer"
	"github.com/erraggy/jsonschema/internal/uri"
	"github.com/erraggy/jsonschema/jsonvalue"
	"github.com/erraggy/jsonschema/schema"
	"github.com/erraggy/jsonschema/schemaerrors"
	"github.com/erraggy/jsonschema/validator"
)

// Repository owns a lookup table shared by several dereferenced schemas and
// meta-schemas, and hands out validators bound to them.
//
// Dereference, Load and the other methods that add documents must not run
// concurrently with each other or with validation. Once populated, the
// validators it returns may be used from any number of goroutines.
type Repository struct {
	table        *schema.Table
	logger       schema.Logger
	fetcher      fetch.Fetcher
	formats      *format.Table
	defaultDraft schema.Draft
	maxDocuments int
	baseURI      string
	fetched      int
}

// New creates an empty Repository.
func New(opts ...Option) (*Repository, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Repository{
		table:        schema.NewTable(),
		logger:       cfg.logger,
		fetcher:      cfg.fetcher,
		formats:      cfg.formats,
		defaultDraft: cfg.defaultDraft,
		maxDocuments: cfg.maxDocuments,
		baseURI:      cfg.baseURI,
	}, nil
}

// Table returns the lookup table. It must be treated as read-only.
func (r *Repository) Table() *schema.Table {
	return r.table
}

// Dereference registers s and returns the URI it is known by. A schema with
// an $id is registered under it. Anonymous schemas are named after a hash of
// their content, so dereferencing an equal schema again yields the same URI.
// Dereferencing an already dereferenced object is a no-op.
//
// s may be a bool, a *jsonvalue.Object, or a tree of Go maps and slices.
func (r *Repository) Dereference(s any) (string, error) {
	s = jsonvalue.FromNative(s)
	if obj, ok := s.(*jsonvalue.Object); ok {
		if meta := r.table.Meta(obj); meta != nil {
			return meta.BaseURI, nil
		}
	}
	docURI, err := r.documentURI(s)
	if err != nil {
		return "", err
	}
	if err := r.DereferenceURI(docURI, s); err != nil {
		return "", err
	}
	return docURI, nil
}

// DereferenceURI registers s as the document retrieved from docURI.
func (r *Repository) DereferenceURI(docURI string, s any) error {
	s = jsonvalue.FromNative(s)
	switch s.(type) {
	case bool, *jsonvalue.Object:
	default:
		return &schemaerrors.ConfigError{
			Option:  "schema",
			Value:   jsonvalue.TypeOf(s),
			Message: "schema must be a boolean or an object",
		}
	}
	if err := schema.Dereference(r.table, s, docURI, r.logger); err != nil {
		return fmt.Errorf("repository: dereference %s: %w", docURI, err)
	}
	r.logger.Debug("dereferenced document", "uri", docURI)
	return nil
}

// documentURI picks the retrieval URI of a schema about to be dereferenced.
func (r *Repository) documentURI(s any) (string, error) {
	base := r.baseURI
	if base == "" {
		base = schema.DefaultBaseURI
	}
	if obj, ok := s.(*jsonvalue.Object); ok {
		if id, ok := schema.ID(obj); ok {
			resolved, err := uri.Resolve(id, base)
			if err != nil {
				return "", fmt.Errorf("repository: invalid $id: %w", err)
			}
			if pointer.NormalizeFragment(resolved.Fragment) == "" {
				return resolved.WithoutFragment().Href(), nil
			}
		}
	}

	data, err := jsonvalue.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("repository: encode schema: %w", err)
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, data)
	if r.baseURI == "" {
		return id.URN(), nil
	}
	return uri.ResolveString(id.String(), r.baseURI)
}

// draftOf returns the draft s is written in: its own $schema, then that of
// its enclosing resource, then the repository default.
func (r *Repository) draftOf(s any) schema.Draft {
	fallback := r.defaultDraft
	if obj, ok := s.(*jsonvalue.Object); ok {
		if meta := r.table.Meta(obj); meta != nil {
			if resource, found := r.table.Lookup(meta.BaseURI); found {
				fallback = schema.Detect(resource, fallback)
			}
		}
	}
	return schema.Detect(s, fallback)
}

// Validator dereferences s if needed and returns a validator bound to it.
// The draft comes from $schema unless opts override it.
func (r *Repository) Validator(s any, opts ...validator.Option) (*validator.Validator, error) {
	s = jsonvalue.FromNative(s)
	if obj, ok := s.(*jsonvalue.Object); ok && r.table.Meta(obj) == nil {
		if _, err := r.Dereference(obj); err != nil {
			return nil, err
		}
	}
	defaults := []validator.Option{
		validator.WithDraft(r.draftOf(s)),
		validator.WithFormats(r.formats),
	}
	return validator.New(r.table, s, append(defaults, opts...)...)
}

// ValidatorFor returns a validator bound to the schema registered at
// schemaURI, which may carry a fragment.
func (r *Repository) ValidatorFor(schemaURI string, opts ...validator.Option) (*validator.Validator, error) {
	key, err := lookupKey(schemaURI)
	if err != nil {
		return nil, err
	}
	s, ok := r.table.Lookup(key)
	if !ok {
		return nil, &schemaerrors.UnresolvedRefError{Ref: schemaURI, AbsoluteRef: key}
	}
	if _, isBool := s.(bool); isBool {
		opts = append([]validator.Option{validator.WithRootURI(key)}, opts...)
	}
	return r.Validator(s, opts...)
}

// lookupKey normalizes an absolute URI to its table key.
func lookupKey(raw string) (string, error) {
	u, err := uri.Parse(raw)
	if err != nil {
		return "", err
	}
	if !u.IsAbsolute() {
		return "", &schemaerrors.InvalidURLError{URL: raw, Message: "schema URI must be absolute"}
	}
	return u.WithFragment(pointer.NormalizeFragment(u.Fragment)).Href(), nil
}

// CheckSchema validates s against the meta-schema of its draft, loading the
// meta-schema first if needed. The result uses Basic output.
func (r *Repository) CheckSchema(s any) (*validator.OutputUnit, error) {
	s = jsonvalue.FromNative(s)
	draft := r.draftOf(s)
	if err := r.PreloadMetaSchema(context.Background(), draft); err != nil {
		return nil, err
	}
	v, err := r.ValidatorFor(draft.MetaSchemaURI(), validator.WithDraft(draft))
	if err != nil {
		return nil, err
	}
	return v.Validate(s)
}
