package validator

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// OutputFormat selects how much detail a validation result carries.
type OutputFormat int

const (
	// Flag reports only the overall verdict. Errors and annotations are
	// always nil and evaluation stops at the first failing property or item.
	Flag OutputFormat = iota
	// Basic reports every error unit as a flat list.
	Basic
)

// String returns the lowercase name of the format.
func (f OutputFormat) String() string {
	switch f {
	case Flag:
		return "flag"
	case Basic:
		return "basic"
	}
	return fmt.Sprintf("OutputFormat(%d)", int(f))
}

// ParseOutputFormat maps "flag" or "basic" to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "flag":
		return Flag, nil
	case "basic":
		return Basic, nil
	}
	return Flag, fmt.Errorf("validator: unknown output format %q (expected flag or basic)", s)
}

// ErrorType classifies an error unit.
type ErrorType string

// Error types reported in OutputUnit.ErrorType.
const (
	ErrorTypeNone            ErrorType = "NONE"
	ErrorTypeInvalidType     ErrorType = "INVALID_TYPE"
	ErrorTypeInvalidValue    ErrorType = "INVALID_VALUE"
	ErrorTypeMissingValue    ErrorType = "MISSING_VALUE"
	ErrorTypeNotAllowed      ErrorType = "NOT_ALLOWED"
	ErrorTypeNoMatch         ErrorType = "NO_MATCH"
	ErrorTypeMultipleMatches ErrorType = "MULTIPLE_MATCHES"
	ErrorTypeTooFew          ErrorType = "TOO_FEW"
	ErrorTypeTooMany         ErrorType = "TOO_MANY"
	ErrorTypeInvalidFormat   ErrorType = "INVALID_FORMAT"
	ErrorTypeDuplicateValue  ErrorType = "DUPLICATE_VALUE"
)

// OutputUnit is a validation result in the JSON Schema output format.
//
// The top-level unit carries the verdict and, in Basic format, the flat
// list of error units and annotation units. Error units describe one failed
// keyword; annotation units carry the value of one annotation keyword.
type OutputUnit struct {
	Valid       bool
	Errors      []*OutputUnit
	Annotations []*OutputUnit

	// InstanceLocation is the JSON pointer of the instance node.
	InstanceLocation string
	// KeywordLocation is the JSON pointer of the keyword along the
	// evaluation path, through any references.
	KeywordLocation string
	// AbsoluteKeywordLocation is the canonical URI of the keyword.
	AbsoluteKeywordLocation string
	Error                   string
	ErrorType               ErrorType

	// Keyword is the keyword that produced this unit. It is not serialized.
	Keyword string
	// Annotation is the annotation value of an annotation unit.
	Annotation any
}

// MarshalJSON writes the unit with a fixed member order: valid, errors,
// annotations, then the location and message members when present.
func (u *OutputUnit) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"valid":`)
	if u.Valid {
		buf.WriteString("true")
	} else {
		buf.WriteString("false")
	}
	if u.Errors != nil {
		if err := writeMember(&buf, "errors", u.Errors); err != nil {
			return nil, err
		}
	}
	if u.Annotations != nil {
		if err := writeMember(&buf, "annotations", u.Annotations); err != nil {
			return nil, err
		}
	}
	if u.Error != "" || u.Keyword != "" {
		if err := writeMember(&buf, "instanceLocation", u.InstanceLocation); err != nil {
			return nil, err
		}
		if err := writeMember(&buf, "keywordLocation", u.KeywordLocation); err != nil {
			return nil, err
		}
		if u.AbsoluteKeywordLocation != "" {
			if err := writeMember(&buf, "absoluteKeywordLocation", u.AbsoluteKeywordLocation); err != nil {
				return nil, err
			}
		}
	}
	if u.Error != "" {
		if err := writeMember(&buf, "error", u.Error); err != nil {
			return nil, err
		}
		if err := writeMember(&buf, "errorType", string(u.ErrorType)); err != nil {
			return nil, err
		}
	} else if u.Keyword != "" {
		if err := writeMember(&buf, "annotation", u.Annotation); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("validator: encoding %s: %w", name, err)
	}
	buf.WriteString(`,"`)
	buf.WriteString(name)
	buf.WriteString(`":`)
	buf.Write(data)
	return nil
}

// ErrorCount returns the number of error units in the result.
func (u *OutputUnit) ErrorCount() int {
	if u == nil {
		return 0
	}
	return len(u.Errors)
}
