package parser

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/xmltools/xmlerrors"
)

func TestParseWithOptionsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr string
	}{
		{
			name:    "no input source",
			opts:    nil,
			wantErr: "must specify an input source",
		},
		{
			name: "two input sources",
			opts: []Option{
				WithContent("<a/>"),
				WithFilePath("doc.xml"),
			},
			wantErr: "exactly one input source",
		},
		{
			name: "policy and policy file together",
			opts: []Option{
				WithContent("<a/>"),
				WithPolicy(DefaultPolicy()),
				WithPolicyFile("policy.yaml"),
			},
			wantErr: "mutually exclusive",
		},
		{
			name:    "empty file path",
			opts:    []Option{WithFilePath("")},
			wantErr: "file path cannot be empty",
		},
		{
			name: "empty policy file path",
			opts: []Option{
				WithContent("<a/>"),
				WithPolicyFile(""),
			},
			wantErr: "policy file path cannot be empty",
		},
		{
			name: "empty entity name",
			opts: []Option{
				WithContent("<a/>"),
				WithEntity("", "v"),
			},
			wantErr: "entity name cannot be empty",
		},
		{
			name: "nil resource reader",
			opts: []Option{
				WithContent("<a/>"),
				WithResourceReader(nil),
			},
			wantErr: "resource reader cannot be nil",
		},
		{
			name: "nil context",
			opts: []Option{
				WithContent("<a/>"),
				WithContext(nil),
			},
			wantErr: "context cannot be nil",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseWithOptions(tt.opts...)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseWithOptionsFilePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<config><host>db1</host></config>`), 0o600))

	result, err := ParseWithOptions(WithFilePath(path))
	require.NoError(t, err)
	assert.Equal(t, path, result.SourcePath)
	assert.Equal(t, "db1", result.Root.Query("host"))

	t.Run("missing file fails", func(t *testing.T) {
		_, err := ParseWithOptions(WithFilePath(filepath.Join(dir, "missing.xml")))
		assert.Error(t, err)
	})
}

func TestParseWithOptionsPolicyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_depth: 1\n"), 0o600))

	_, err := ParseWithOptions(
		WithContent(`<a><b><c/></b></a>`),
		WithPolicyFile(path))
	require.Error(t, err)
	assert.ErrorIs(t, err, xmlerrors.ErrMaxDepthExceeded)
}

func TestParseWithOptionsExternalEntities(t *testing.T) {
	policy := DefaultPolicy()
	policy.AllowDTD = true

	reader := &countingReader{content: "resolved"}
	_, err := ParseWithOptions(
		WithContent(`<m>&e SYSTEM "x";</m>`),
		WithPolicy(policy),
		WithExternalEntities(false),
		WithResourceReader(reader.read))

	require.Error(t, err)
	assert.ErrorIs(t, err, xmlerrors.ErrExternalEntityNotAllowed)
	assert.Equal(t, 0, reader.calls)
}

func TestParseWithOptionsLoggerAndContext(t *testing.T) {
	logger := NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))

	result, err := ParseWithOptions(
		WithContent(`<a><b/></a>`),
		WithLogger(logger),
		WithContext(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.TotalNodes)
}
