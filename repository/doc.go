// Package repository manages a set of dereferenced JSON Schema documents and
// hands out validators bound to them.
//
// A Repository owns one lookup table. Schemas enter it through Dereference,
// DereferenceURI, Load, LoadReferenced or PreloadMetaSchema; every document
// is walked once and every subschema, anchor and $id becomes addressable by
// absolute URI. Validators created afterwards share that table.
//
// # Quick Start
//
//	repo, err := repository.New()
//	if err != nil {
//		return err
//	}
//	v, err := repo.Validator(doc)
//	if err != nil {
//		return err
//	}
//	result, err := v.Validate(instance)
//
// # Remote documents
//
// The repository performs no I/O of its own. Configure a fetch.Fetcher with
// WithFetcher, then call LoadReferenced to pull in every document reachable
// through references before validating. The official meta-schemas of all
// supported drafts are embedded and never fetched.
//
// # Resolving
//
// Resolve inlines every reference into a single self-contained tree, for
// consumers that cannot follow references themselves. Recursive schemas
// cannot be represented that way and are rejected.
//
// # Concurrency
//
// Methods that add documents must not run concurrently with each other or
// with validation. Validators are safe for concurrent use once the
// repository is fully populated.
package repository
