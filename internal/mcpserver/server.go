// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes xmltools capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/xmltools"
)

const serverInstructions = `xmltools MCP server — parses, validates, queries, and renders XML documents with hardened resource limits.

Configuration: All defaults are configurable via XMLTOOLS_* environment variables set in your MCP client config. The Go MCP SDK does not support initializationOptions; use env vars instead.

Key settings:
- XMLTOOLS_MAX_DEPTH (default: 100) — maximum element nesting depth
- XMLTOOLS_MAX_CHILDREN (default: 1000) — maximum children per element
- XMLTOOLS_MAX_ATTRIBUTES (default: 50) — maximum attributes per element
- XMLTOOLS_MAX_TEXT_LENGTH (default: 10000) — maximum text segment length
- XMLTOOLS_EXTERNAL_ENTITIES (default: false) — allow SYSTEM entity resolution
- XMLTOOLS_ALLOW_DTD (default: false) — allow DTD processing
- XMLTOOLS_MAX_INLINE_SIZE (default: 4194304) — maximum inline content bytes
- XMLTOOLS_CACHE_ENABLED (default: true) — disable document caching entirely
- XMLTOOLS_CACHE_FILE_TTL (default: 15m) — cache TTL for file documents

Caching: Parsed documents are cached per session. File entries use path+mtime as key (auto-invalidated on change). Calls with per-call policy overrides bypass the cache. A background sweeper removes expired entries every 60s.`

// Run starts the MCP server over stdio and blocks until the client
// disconnects or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		docCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "xmltools", Version: xmltools.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse",
		Description: "Parse and validate an XML document under hardened resource limits. Returns a structural summary: root tag, node count, maximum depth, attribute count, text length, and the most common tags and attributes. Policy overrides (allowed_tags, max_depth, no_comments, ...) tighten the server defaults for this call only. Use full=true to also return the normalized rendered tree.",
	}, handleParse)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query",
		Description: "Look up the text content at a slash-separated element path in an XML document, e.g. 'server/host'. Each path step descends into the first matching child. Returns the text content of the final element, or found=false when no element matches.",
	}, handleQuery)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render",
		Description: "Parse an XML document and return its normalized pretty-printed form: two-space indentation, sorted attributes, sanitized text, comments stripped, CDATA folded into text. The output re-parses to the same tree.",
	}, handleRender)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
