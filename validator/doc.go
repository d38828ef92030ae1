// Package validator validates JSON instances against dereferenced JSON
// Schemas and reports the result in the JSON Schema output format.
//
// A [Validator] is bound to one schema in a [schema.Table]. The table must be
// complete before the validator is used: every reference target, including
// remote documents and meta-schemas, has to be dereferenced beforehand.
// Validation never performs I/O.
//
// # Drafts
//
// Drafts 4, 7, 2019-09 and 2020-12 are supported. The draft is fixed per
// validator, taken from [WithDraft] or detected from the root's $schema.
// The differences applied per draft:
//
//   - draft4 and draft7: $ref ignores its sibling keywords; format is asserted.
//   - draft4: exclusiveMinimum and exclusiveMaximum are boolean modifiers.
//   - 2019-09: $recursiveRef and $recursiveAnchor, unevaluated*, dependent*.
//   - 2020-12: $dynamicRef and $dynamicAnchor, prefixItems, contains counts
//     towards unevaluatedItems.
//
// # Output
//
// [Basic] output lists every error unit in evaluation order. A failing
// applicator contributes one summary unit followed by the units of its
// subschemas. [Flag] output carries only the verdict and stops at the first
// failing property or item.
//
// Instance and keyword locations are JSON Pointers; the root is "".
// Absolute keyword locations are URIs with a JSON Pointer fragment.
//
// When an object schema has both additionalProperties and
// unevaluatedProperties, only additionalProperties is applied.
//
// # Errors
//
// Validation failures are data, never Go errors. The error returned by
// [Validator.Validate] reports a defect of the schema set: an unresolved
// reference, a keyword value of the wrong type or an invalid regular
// expression. [Validator.Check] converts a failed result into a
// *schemaerrors.ValidationError.
//
// Regular expressions use Go's RE2 syntax.
package validator
