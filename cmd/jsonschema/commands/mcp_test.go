package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleMCP_Arguments(t *testing.T) {
	var stderr bytes.Buffer
	assert.NoError(t, HandleMCP([]string{"--help"}, &stderr))
	assert.Contains(t, stderr.String(), "Usage: jsonschema mcp")

	stderr.Reset()
	assert.Error(t, HandleMCP([]string{"extra"}, &stderr))
	assert.Error(t, HandleMCP([]string{"--port", "80"}, &stderr))
}
