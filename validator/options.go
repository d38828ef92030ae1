package validator

import (
	"github.com/erraggy/jsonschema/format"
	"github.com/erraggy/jsonschema/internal/uri"
	"github.com/erraggy/jsonschema/schema"
	"github.com/erraggy/jsonschema/schemaerrors"
)

// Option is a function that configures a Validator.
type Option func(*config) error

// config holds the settings of one Validator.
type config struct {
	draft           schema.Draft
	outputFormat    OutputFormat
	shortCircuit    *bool
	formatAssertion *bool
	formats         *format.Table
	annotations     bool
	rootURI         string
}

// applyOptions applies option functions and validates the result.
func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		outputFormat: Basic,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.annotations && cfg.outputFormat == Flag {
		return nil, &schemaerrors.ConfigError{
			Option:  "WithAnnotations",
			Value:   true,
			Message: "annotations require the basic output format",
		}
	}
	if cfg.formats == nil {
		cfg.formats = format.Default()
	}
	return cfg, nil
}

// WithDraft fixes the draft instead of detecting it from $schema.
func WithDraft(d schema.Draft) Option {
	return func(cfg *config) error {
		if d != schema.DraftUnknown {
			for _, known := range schema.Drafts() {
				if d == known {
					cfg.draft = d
					return nil
				}
			}
		}
		return &schemaerrors.ConfigError{Option: "WithDraft", Value: d, Message: "unsupported draft"}
	}
}

// WithOutputFormat selects Flag or Basic output.
// Default: Basic
func WithOutputFormat(f OutputFormat) Option {
	return func(cfg *config) error {
		if f != Flag && f != Basic {
			return &schemaerrors.ConfigError{Option: "WithOutputFormat", Value: f, Message: "unknown output format"}
		}
		cfg.outputFormat = f
		return nil
	}
}

// WithShortCircuit stops the properties and items loops at the first
// failure. Composite keywords always try every branch.
// Default: enabled for Flag output, disabled for Basic output
func WithShortCircuit(enabled bool) Option {
	return func(cfg *config) error {
		cfg.shortCircuit = &enabled
		return nil
	}
}

// WithFormatAssertion makes "format" an assertion instead of an annotation.
// Default: asserted for draft4 and draft7, annotation-only afterwards
func WithFormatAssertion(enabled bool) Option {
	return func(cfg *config) error {
		cfg.formatAssertion = &enabled
		return nil
	}
}

// WithFormats replaces the format table used by the "format" keyword.
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

// WithAnnotations collects annotation units from schemas that validated
// successfully. Requires Basic output.
// Default: false
func WithAnnotations(enabled bool) Option {
	return func(cfg *config) error {
		cfg.annotations = enabled
		return nil
	}
}

// WithRootURI sets the absolute URI a boolean root schema was dereferenced
// at. Object roots always report the URI recorded in their Meta.
// Default: schema.DefaultBaseURI
func WithRootURI(rootURI string) Option {
	return func(cfg *config) error {
		u, err := uri.Parse(rootURI)
		if err != nil || !u.IsAbsolute() {
			return &schemaerrors.ConfigError{Option: "WithRootURI", Value: rootURI, Message: "root URI must be absolute"}
		}
		cfg.rootURI = u.Href()
		return nil
	}
}
