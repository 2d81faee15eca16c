package mcpserver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "plain message untouched",
			err:  errors.New("missing closing tag for: config"),
			want: "missing closing tag for: config",
		},
		{
			name: "home path stripped",
			err:  fmt.Errorf("reading /home/alice/secrets/doc.xml: permission denied"),
			want: "reading <path>: permission denied",
		},
		{
			name: "tmp path stripped",
			err:  fmt.Errorf("open /tmp/xmltools-123/doc.xml: no such file"),
			want: "open <path>: no such file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeError(tt.err))
		})
	}
}

func TestErrResult(t *testing.T) {
	result := errResult(errors.New("boom"))

	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "boom", text.Text)
}
