package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileURI(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/schemas/a.json", "file:///tmp/schemas/a.json"},
		{"/tmp/my schemas/a.json", "file:///tmp/my%20schemas/a.json"},
		{"/tmp/schemas/../a.json", "file:///tmp/a.json"},
		{"/tmp/100%.json", "file:///tmp/100%25.json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FileURI(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("relative", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		got, err := FileURI("schema.json")
		require.NoError(t, err)
		want, err := FileURI(filepath.Join(wd, "schema.json"))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}
