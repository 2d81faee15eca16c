//go:build integration

// Package integration provides end-to-end tests for the xmltools engine.
// These tests exercise the full pipeline from file input through policy
// enforcement, rendering, and querying using documents under testdata.
//
// Run with: go test -tags=integration ./integration/... -v
package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/xmltools/parser"
	"github.com/erraggy/xmltools/xmlerrors"
)

func TestParseAllTestdata(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.xml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "testdata documents must exist")

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			result, err := parser.ParseWithOptions(parser.WithFilePath(path))
			require.NoError(t, err)
			require.NotNil(t, result.Root)
			assert.Equal(t, path, result.SourcePath)
			assert.Positive(t, result.Stats.TotalNodes)
		})
	}
}

func TestRenderRoundTripsTestdata(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.xml"))
	require.NoError(t, err)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			first, err := parser.ParseWithOptions(parser.WithFilePath(path))
			require.NoError(t, err)

			second, err := parser.ParseWithOptions(parser.WithContent(first.Root.Render()))
			require.NoError(t, err)
			assert.Equal(t, first.Stats.TotalNodes, second.Stats.TotalNodes)
			assert.Equal(t, first.Stats.MaxDepth, second.Stats.MaxDepth)
		})
	}
}

func TestQueryScenario(t *testing.T) {
	result, err := parser.ParseWithOptions(
		parser.WithFilePath(filepath.Join("testdata", "config.xml")))
	require.NoError(t, err)

	assert.Equal(t, "db1.internal", result.Root.Query("database/host"))
	assert.Equal(t, "5432", result.Root.Query("database/port"))
	assert.Equal(t, "", result.Root.Query("database/missing"))
}

func TestPolicyFileScenario(t *testing.T) {
	policyPath := filepath.Join("testdata", "strict-policy.yaml")

	_, err := parser.ParseWithOptions(
		parser.WithFilePath(filepath.Join("testdata", "catalog.xml")),
		parser.WithPolicyFile(policyPath))
	require.Error(t, err, "catalog document must violate the strict policy")
	assert.ErrorIs(t, err, xmlerrors.ErrDisallowedTag)
}

func TestLargeDocumentWithinLimits(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("testdata", "catalog.xml"))
	require.NoError(t, err)

	result, err := parser.ParseWithOptions(parser.WithContent(string(content)))
	require.NoError(t, err)
	assert.Equal(t, "catalog", result.Root.Name)
	assert.GreaterOrEqual(t, result.Stats.TotalNodes, 10)
}
