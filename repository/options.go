package repository

import (
	"github.com/erraggy/jsonschema/fetch"
	"github.com/erraggy/jsonschema/format"
	"github.com/erraggy/jsonschema/internal/uri"
	"github.com/erraggy/jsonschema/schema"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// DefaultMaxDocuments bounds the documents a Repository fetches.
const DefaultMaxDocuments = 100

// Option is a function that configures a Repository.
type Option func(*config) error

type config struct {
	logger       schema.Logger
	fetcher      fetch.Fetcher
	formats      *format.Table
	defaultDraft schema.Draft
	maxDocuments int
	baseURI      string
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		logger:       schema.NopLogger{},
		defaultDraft: schema.DefaultDraft,
		maxDocuments: DefaultMaxDocuments,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.formats == nil {
		cfg.formats = format.Default()
	}
	return cfg, nil
}

// WithLogger sets the logger for dereferencing and document loading.
// Default: schema.NopLogger
func WithLogger(l schema.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			l = schema.NopLogger{}
		}
		cfg.logger = l
		return nil
	}
}

// WithFetcher sets the collaborator used by Load, LoadReferenced and
// PreloadMetaSchema. Without one, only the embedded meta-schemas can be
// loaded.
func WithFetcher(f fetch.Fetcher) Option {
	return func(cfg *config) error {
		cfg.fetcher = f
		return nil
	}
}

// WithFormats sets the format table handed to every validator.
// Default: format.Default()
func WithFormats(t *format.Table) Option {
	return func(cfg *config) error {
		if t == nil {
			return &schemaerrors.ConfigError{Option: "WithFormats", Message: "format table must not be nil"}
		}
		cfg.formats = t
		return nil
	}
}

// WithDefaultDraft sets the draft assumed for schemas without $schema.
// Default: schema.DefaultDraft
func WithDefaultDraft(d schema.Draft) Option {
	return func(cfg *config) error {
		if d.MetaSchemaURI() == "" {
			return &schemaerrors.ConfigError{Option: "WithDefaultDraft", Value: d, Message: "unsupported draft"}
		}
		cfg.defaultDraft = d
		return nil
	}
}

// WithMaxDocuments limits how many documents the repository fetches.
// Embedded meta-schemas do not count.
// Default: DefaultMaxDocuments
func WithMaxDocuments(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return &schemaerrors.ConfigError{Option: "WithMaxDocuments", Value: n, Message: "must be positive"}
		}
		cfg.maxDocuments = n
		return nil
	}
}

// WithBaseURI sets the absolute URI against which relative $id values are
// resolved and under which anonymous schemas are named.
// Default: anonymous schemas get a urn:uuid URI and relative $id values
// resolve against schema.DefaultBaseURI
func WithBaseURI(base string) Option {
	return func(cfg *config) error {
		u, err := uri.Parse(base)
		if err != nil || !u.IsAbsolute() {
			return &schemaerrors.ConfigError{Option: "WithBaseURI", Value: base, Message: "must be an absolute URI", Cause: err}
		}
		cfg.baseURI = u.WithoutFragment().Href()
		return nil
	}
}
