package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/xmltools/parser"
)

type queryInput struct {
	Doc    docInput    `json:"doc"              jsonschema:"The XML document to query"`
	Path   string      `json:"path"             jsonschema:"Slash-separated element path, e.g. server/host"`
	Policy policyInput `json:"policy,omitempty" jsonschema:"Per-call policy overrides"`
}

type queryOutput struct {
	Path  string `json:"path"`
	Value string `json:"value"`
	Found bool   `json:"found"`
}

func handleQuery(ctx context.Context, _ *mcp.CallToolRequest, input queryInput) (*mcp.CallToolResult, queryOutput, error) {
	if input.Path == "" {
		return errResult(fmt.Errorf("path is required")), queryOutput{}, nil
	}

	result, err := input.Doc.resolve(ctx, input.Policy)
	if err != nil {
		return errResult(err), queryOutput{}, nil
	}

	output := queryOutput{
		Path:  input.Path,
		Value: result.Root.Query(input.Path),
	}
	// An empty value is ambiguous between a miss and an empty element, so
	// walk the path again to distinguish the two.
	output.Found = output.Value != "" || pathExists(result.Root, input.Path)
	return nil, output, nil
}

// pathExists reports whether every step of a slash-separated path matches
// a child element. Empty steps are skipped, matching Query semantics.
func pathExists(root *parser.Node, path string) bool {
	current := root
	for step := range strings.SplitSeq(path, "/") {
		if step == "" {
			continue
		}
		var next *parser.Node
		for _, child := range current.Children {
			if child.Name == step {
				next = child
				break
			}
		}
		if next == nil {
			return false
		}
		current = next
	}
	return true
}
