// Package jsonschema provides tools for working with JSON Schema documents:
// dereferencing, validation, reference inlining, and meta-schema checks.
//
// # Overview
//
// The library is split into small packages that build on each other:
//
//   - jsonvalue: Decode JSON and YAML into an order-preserving value tree
//   - schema: Dereference schemas into a lookup table of URIs, anchors and pointers
//   - validator: Validate instances and report results as output units
//   - repository: Load documents, fetch their references, validate and resolve
//   - fetch: Retrieve referenced documents from files, HTTP, or memory
//   - format: Check the format keyword (date-time, email, uri, ...)
//   - metaschema: The embedded meta-schemas of every supported draft
//   - schemaerrors: Typed errors with sentinels for errors.Is
//
// Supported drafts:
//   - Draft 4: https://json-schema.org/draft-04/json-schema-validation
//   - Draft 7 (draft 6 schemas are accepted as draft 7)
//   - Draft 2019-09: https://json-schema.org/draft/2019-09
//   - Draft 2020-12: https://json-schema.org/draft/2020-12
//
// # Installation
//
//	go get github.com/erraggy/jsonschema
//
// # Quick Start
//
// Load a schema file together with everything it references and validate an
// instance:
//
//	repo, err := repository.New(repository.WithFetcher(&fetch.FileFetcher{Root: "schemas"}))
//	if err != nil {
//		log.Fatal(err)
//	}
//	s, err := repo.Load(ctx, "file:///srv/app/schemas/order.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := repo.LoadReferenced(ctx); err != nil {
//		log.Fatal(err)
//	}
//	v, err := repo.Validator(s)
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := v.Validate(instance)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, unit := range result.Errors {
//		fmt.Printf("%s: %s\n", unit.InstanceLocation, unit.Error)
//	}
//
// # Output
//
// Results follow the JSON Schema output format. The flag format carries only
// the verdict. The basic format adds a flat list of error units, each with
// an instance location, a keyword location through any references, and the
// absolute keyword location.
//
// # Security Considerations
//
//   - Path traversal protection: fetch.FileFetcher rejects any file outside its root
//   - Resource limits: documents are capped at fetch.MaxDocumentSize and
//     repositories fetch at most repository.DefaultMaxDocuments documents
//   - No implicit network access: HTTP(S) references are only followed when a
//     fetcher for those schemes is configured
//   - File permissions: output files are created with restrictive permissions (0600)
//
// # Error Handling
//
// Errors are returned, never panicked. Every error type in schemaerrors
// matches a sentinel, so callers can branch with errors.Is:
//
//	if errors.Is(err, schemaerrors.ErrCircularReference) {
//		// the schema is recursive and cannot be inlined
//	}
//
// A failed validation is not an error: it is reported by OutputUnit.Valid.
//
// # Command-Line Interface
//
//	# Validate instances
//	jsonschema validate schema.json order1.json order2.yaml
//
//	# Inline every reference
//	jsonschema resolve -o bundled.json schema.json
//
//	# List references and identities
//	jsonschema refs --all schema.json
//
//	# Serve the tools over MCP
//	jsonschema mcp
//
// Install the CLI:
//
//	go install github.com/erraggy/jsonschema/cmd/jsonschema@latest
package jsonschema
