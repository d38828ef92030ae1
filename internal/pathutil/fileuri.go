package pathutil

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// FileURI converts path to an absolute file:// URI. Relative paths are
// resolved against the working directory.
func FileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("pathutil: cannot resolve absolute path: %w", err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		// drive-letter paths
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String(), nil
}
