// Package options provides shared utilities for option validation across packages.
package options

import (
	"fmt"
	"strings"

	"github.com/erraggy/jsonschema/schemaerrors"
)

// ValidateSingleInputSource ensures exactly one input source is specified.
// names lists the sources in the order of set. The returned error is a
// *schemaerrors.ConfigError for option.
func ValidateSingleInputSource(option string, names []string, set ...bool) error {
	count := 0
	for _, hasSource := range set {
		if hasSource {
			count++
		}
	}
	if count == 1 {
		return nil
	}
	return &schemaerrors.ConfigError{
		Option:  option,
		Message: fmt.Sprintf("exactly one of %s must be provided (got %d)", joinAlternatives(names), count),
	}
}

// joinAlternatives renders names as "a, b, or c".
func joinAlternatives(names []string) string {
	switch len(names) {
	case 0:
		return "the inputs"
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}
