package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStatsCollection(t *testing.T) {
	result, err := ParseWithOptions(WithContent(
		`<config env="prod"><host>db1</host><host>db2</host><port>5432</port></config>`,
	))
	require.NoError(t, err)

	stats := result.Stats
	assert.Equal(t, 4, stats.TotalNodes, "root plus three children")
	assert.Equal(t, 1, stats.MaxDepth)
	assert.Equal(t, 1, stats.TotalAttributes)
	assert.Equal(t, len("db1")+len("db2")+len("5432"), stats.TotalTextLength)
	assert.Equal(t, map[string]int{"config": 1, "host": 2, "port": 1}, stats.TagCounts)
	assert.Equal(t, map[string]int{"env": 1}, stats.AttributeCounts)
	assert.Greater(t, stats.ParseTime, time.Duration(0))
}

func TestTopCounts(t *testing.T) {
	stats := DocumentStats{
		TagCounts: map[string]int{"c": 3, "a": 3, "b": 5, "d": 1},
	}

	t.Run("descending count with alphabetical ties", func(t *testing.T) {
		want := []NameCount{{"b", 5}, {"a", 3}, {"c", 3}, {"d", 1}}
		assert.Equal(t, want, stats.TopTags(10))
	})

	t.Run("truncates to n", func(t *testing.T) {
		assert.Equal(t, []NameCount{{"b", 5}, {"a", 3}}, stats.TopTags(2))
	})

	t.Run("empty counts yield empty slice", func(t *testing.T) {
		empty := DocumentStats{}
		assert.Empty(t, empty.TopTags(5))
		assert.Empty(t, empty.TopAttributes(5))
	})
}

func TestStatsFormat(t *testing.T) {
	result, err := ParseWithOptions(WithContent(
		`<config env="prod"><host>db1</host><host>db2</host></config>`,
	))
	require.NoError(t, err)

	report := result.Stats.Format()
	assert.Contains(t, report, "XML Statistics:")
	assert.Contains(t, report, "Total nodes: 3")
	assert.Contains(t, report, "Maximum depth: 1")
	assert.Contains(t, report, "Most Common Tags:")
	assert.Contains(t, report, "host: 2")
	assert.Contains(t, report, "Most Common Attributes:")
	assert.Contains(t, report, "env: 1")
}

func TestStatsFormatOmitsEmptySections(t *testing.T) {
	stats := DocumentStats{}
	report := stats.Format()
	assert.NotContains(t, report, "Most Common Tags")
	assert.NotContains(t, report, "Most Common Attributes")
}
