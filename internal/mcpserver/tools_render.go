package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type renderInput struct {
	Doc    docInput    `json:"doc"              jsonschema:"The XML document to render"`
	Policy policyInput `json:"policy,omitempty" jsonschema:"Per-call policy overrides"`
}

type renderOutput struct {
	Document   string `json:"document"`
	TotalNodes int    `json:"total_nodes"`
}

func handleRender(ctx context.Context, _ *mcp.CallToolRequest, input renderInput) (*mcp.CallToolResult, renderOutput, error) {
	result, err := input.Doc.resolve(ctx, input.Policy)
	if err != nil {
		return errResult(err), renderOutput{}, nil
	}

	output := renderOutput{
		Document:   result.Root.Render(),
		TotalNodes: result.Stats.TotalNodes,
	}
	return nil, output, nil
}
