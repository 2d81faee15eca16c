package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/xmltools/parser"
)

type parseInput struct {
	Doc    docInput    `json:"doc"              jsonschema:"The XML document to parse"`
	Policy policyInput `json:"policy,omitempty" jsonschema:"Per-call policy overrides"`
	Full   bool        `json:"full,omitempty"   jsonschema:"Return the normalized rendered tree in addition to the summary"`
}

type parseOutput struct {
	RootTag         string             `json:"root_tag"`
	TotalNodes      int                `json:"total_nodes"`
	MaxDepth        int                `json:"max_depth"`
	TotalAttributes int                `json:"total_attributes"`
	TotalTextLength int                `json:"total_text_length"`
	ParseTimeMS     float64            `json:"parse_time_ms"`
	SourceSize      int                `json:"source_size"`
	TopTags         []parser.NameCount `json:"top_tags,omitempty"`
	TopAttributes   []parser.NameCount `json:"top_attributes,omitempty"`
	FullDocument    string             `json:"full_document,omitempty"`
}

func handleParse(ctx context.Context, _ *mcp.CallToolRequest, input parseInput) (*mcp.CallToolResult, parseOutput, error) {
	result, err := input.Doc.resolve(ctx, input.Policy)
	if err != nil {
		return errResult(err), parseOutput{}, nil
	}

	output := parseOutput{
		RootTag:         result.Root.Name,
		TotalNodes:      result.Stats.TotalNodes,
		MaxDepth:        result.Stats.MaxDepth,
		TotalAttributes: result.Stats.TotalAttributes,
		TotalTextLength: result.Stats.TotalTextLength,
		ParseTimeMS:     float64(result.Stats.ParseTime.Microseconds()) / 1000,
		SourceSize:      result.SourceSize,
		TopTags:         result.Stats.TopTags(5),
		TopAttributes:   result.Stats.TopAttributes(5),
	}

	if input.Full {
		output.FullDocument = result.Root.Render()
	}

	return nil, output, nil
}
