package schemaerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrDuplicateSchemaURI indicates two different schemas were registered at one URI.
	ErrDuplicateSchemaURI = errors.New("duplicate schema URI")

	// ErrDuplicateAnchor indicates two different schemas declared the same anchor.
	ErrDuplicateAnchor = errors.New("duplicate anchor")

	// ErrUnresolvedRef indicates a reference whose target is not in the lookup table.
	ErrUnresolvedRef = errors.New("unresolved reference")

	// ErrInvalidURL indicates a URI that is malformed or cannot be made absolute.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrInvalidKeyword indicates a schema keyword with a value of the wrong type.
	ErrInvalidKeyword = errors.New("invalid keyword")

	// ErrReference indicates a reference could not be inlined.
	ErrReference = errors.New("reference error")

	// ErrCircularReference indicates a reference cycle was found while inlining.
	ErrCircularReference = errors.New("circular reference")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrFetch indicates the byte-loading collaborator failed.
	ErrFetch = errors.New("fetch error")

	// ErrDecode indicates a document could not be decoded.
	ErrDecode = errors.New("decode error")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")

	// ErrValidation indicates an instance did not validate.
	ErrValidation = errors.New("validation error")
)

// DuplicateSchemaURIError is raised when a different schema is registered at
// an absolute URI that is already taken.
type DuplicateSchemaURIError struct {
	// URI is the absolute URI both schemas claim
	URI string
	// Path is the JSON pointer of the offending schema inside its document
	Path string
}

// Error returns a human-readable error message.
func (e *DuplicateSchemaURIError) Error() string {
	msg := fmt.Sprintf("duplicate schema URI %q", e.URI)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *DuplicateSchemaURIError) Is(target error) bool {
	return target == ErrDuplicateSchemaURI
}

// DuplicateAnchorError is raised when an $anchor or $dynamicAnchor collides
// with a different schema in the same resource.
type DuplicateAnchorError struct {
	// URI is the absolute anchor URI (base#name)
	URI string
	// Anchor is the anchor name as written in the schema
	Anchor string
	// Path is the JSON pointer of the offending schema
	Path string
}

// Error returns a human-readable error message.
func (e *DuplicateAnchorError) Error() string {
	msg := fmt.Sprintf("duplicate anchor %q (%s)", e.Anchor, e.URI)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *DuplicateAnchorError) Is(target error) bool {
	return target == ErrDuplicateAnchor
}

// UnresolvedRefError is raised when a $ref (or $recursiveRef / $dynamicRef)
// points at a URI that was never dereferenced. This is a defect of the schema
// set, not a validation failure.
type UnresolvedRefError struct {
	// Ref is the reference as written in the schema
	Ref string
	// AbsoluteRef is the reference resolved against its base URI
	AbsoluteRef string
	// Location is the absolute keyword location of the reference
	Location string
}

// Error returns a human-readable error message.
func (e *UnresolvedRefError) Error() string {
	msg := fmt.Sprintf("unresolved $ref %q", e.Ref)
	if e.AbsoluteRef != "" && e.AbsoluteRef != e.Ref {
		msg += fmt.Sprintf(" (resolved to %q)", e.AbsoluteRef)
	}
	if e.Location != "" {
		msg += " at " + e.Location
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *UnresolvedRefError) Is(target error) bool {
	return target == ErrUnresolvedRef
}

// InvalidURLError is raised when a URI is malformed, or when a relative
// reference has no absolute base to resolve against.
type InvalidURLError struct {
	// URL is the offending value
	URL string
	// Base is the base URI used for resolution (may be empty)
	Base string
	// Message describes the problem
	Message string
}

// Error returns a human-readable error message.
func (e *InvalidURLError) Error() string {
	msg := fmt.Sprintf("invalid URL %q", e.URL)
	if e.Base != "" {
		msg += fmt.Sprintf(" (base %q)", e.Base)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *InvalidURLError) Is(target error) bool {
	return target == ErrInvalidURL
}

// KeywordError is raised when a schema keyword carries a value the engine
// cannot interpret, e.g. "minLength": "3" or an invalid "pattern".
type KeywordError struct {
	// Keyword is the keyword name
	Keyword string
	// Location is the absolute keyword location
	Location string
	// Value is the offending value (may be nil)
	Value any
	// Message describes the problem
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *KeywordError) Error() string {
	msg := fmt.Sprintf("invalid %q keyword", e.Keyword)
	if e.Location != "" {
		msg += " at " + e.Location
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *KeywordError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *KeywordError) Is(target error) bool {
	return target == ErrInvalidKeyword
}

// ReferenceError represents a failure to inline a reference.
type ReferenceError struct {
	// Ref is the absolute reference that failed
	Ref string
	// IsCircular is true if this error is due to a reference cycle
	IsCircular bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "reference error"
	if e.IsCircular {
		msg = "circular reference"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, and also ErrCircularReference when IsCircular is set.
func (e *ReferenceError) Is(target error) bool {
	if target == ErrReference {
		return true
	}
	return target == ErrCircularReference && e.IsCircular
}

// ResourceLimitError represents a resource exhaustion condition.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded
	// Common values: "resolve_depth", "documents", "document_size"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// FetchError represents a failure of the byte-loading collaborator.
type FetchError struct {
	// URI is the document that could not be fetched
	URI string
	// Message provides additional context
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *FetchError) Error() string {
	msg := "fetch error"
	if e.URI != "" {
		msg += " for " + e.URI
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// DecodeError represents a failure to decode a JSON or YAML document.
type DecodeError struct {
	// Source identifies the document (URI or file path, may be empty)
	Source string
	// Offset is the byte offset of the failure (0 if unknown)
	Offset int64
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *DecodeError) Error() string {
	msg := "decode error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Offset > 0 {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// ValidationError is the on-demand conversion of a failed validation result
// into a Go error. It carries the most relevant error unit.
type ValidationError struct {
	// InstanceLocation is the JSON pointer of the failing instance node
	InstanceLocation string
	// KeywordLocation is the evaluation path of the failing keyword
	KeywordLocation string
	// AbsoluteKeywordLocation is the absolute URI of the failing keyword
	AbsoluteKeywordLocation string
	// ErrorType is the error type string of the unit (e.g. "MISSING_VALUE")
	ErrorType string
	// Message is the unit's error message
	Message string
	// Count is the total number of error units in the result
	Count int
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	msg := "validation error"
	if e.InstanceLocation != "" {
		msg += " at " + e.InstanceLocation
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.KeywordLocation != "" {
		msg += " (" + e.KeywordLocation + ")"
	}
	if e.Count > 1 {
		msg += fmt.Sprintf(" and %d more", e.Count-1)
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
