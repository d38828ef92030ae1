// Package schemaerrors provides structured error types for the jsonschema library.
//
// Import path: github.com/erraggy/jsonschema/schemaerrors
//
// The library keeps two disjoint error taxonomies. Validation failures are data:
// they are reported as validator.OutputUnit values and never surface as Go errors
// unless the caller explicitly asks for it via validator.(*Validator).Check.
// Everything in this package is the other taxonomy: fatal, structural problems
// with a schema document (or with the environment loading it) that abort the
// current operation.
//
// # Error Types
//
//   - [DuplicateSchemaURIError]: two different schemas claim the same absolute URI
//   - [DuplicateAnchorError]: two different schemas declare the same anchor in one resource
//   - [UnresolvedRefError]: a $ref target is not present in the lookup table
//   - [InvalidURLError]: a URI could not be made absolute
//   - [KeywordError]: a keyword carries a value of the wrong type or shape
//   - [ReferenceError]: full inlining failed, e.g. because of a true reference cycle
//   - [ResourceLimitError]: a configured limit (depth, documents, size) was exceeded
//   - [FetchError]: the byte-loading collaborator failed for a URI
//   - [DecodeError]: a JSON or YAML document could not be decoded
//   - [ConfigError]: invalid configuration or options
//   - [ValidationError]: an instance failed validation and the caller asked for an error
//
// # Sentinel Errors
//
// Each error type matches a sentinel via errors.Is:
//
//	_, err := repo.Dereference(doc)
//	if errors.Is(err, schemaerrors.ErrDuplicateSchemaURI) {
//	    // two documents share an $id
//	}
//
//	var refErr *schemaerrors.UnresolvedRefError
//	if errors.As(err, &refErr) {
//	    fmt.Println("missing:", refErr.AbsoluteRef)
//	}
package schemaerrors
