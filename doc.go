// Package xmltools provides a hardened XML parsing and validation engine for
// untrusted documents.
//
// xmltools builds a bounded in-memory document tree from raw markup while
// enforcing an explicit security policy: tag and attribute allow-lists,
// depth/fan-out/size limits, and gating of comments, CDATA sections, and
// DTD/external-entity processing. Violations surface as typed errors from
// the xmlerrors package; structural telemetry is collected for every parse.
//
// # Overview
//
// The library consists of two primary packages:
//
//   - parser: Parse untrusted XML into a validated document tree
//   - xmlerrors: Structured error types for programmatic handling
//
// # Installation
//
// Install the library using go get:
//
//	go get github.com/erraggy/xmltools
//
// # Quick Start
//
// Parse a document with the default policy:
//
//	import "github.com/erraggy/xmltools/parser"
//
//	result, err := parser.ParseWithOptions(
//		parser.WithContent(`<config><host>localhost</host></config>`),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Root.Query("host"))
//
// Restrict what the document may contain:
//
//	policy := parser.DefaultPolicy()
//	policy.MaxDepth = 10
//	policy.AllowedTags = []string{"config", "host", "port"}
//
//	result, err := parser.ParseWithOptions(
//		parser.WithFilePath("config.xml"),
//		parser.WithPolicy(policy),
//	)
//
// Distinguish failure causes with the xmlerrors sentinels:
//
//	if errors.Is(err, xmlerrors.ErrMaxDepthExceeded) {
//		// document nests deeper than the policy allows
//	}
//	if errors.Is(err, xmlerrors.ErrDisallowedDTD) {
//		// document attempted external entity processing
//	}
//
// # Security Model
//
// Every structural decision consults the active Policy before any resource
// is committed: depth is checked before recursing, child and attribute
// counts before attaching, text length before entity expansion. Entity
// references are expanded exactly once per occurrence and never re-scanned,
// which bounds expansion attacks by construction. External (SYSTEM) entity
// reads only happen through an injected ResourceReader and only when the
// policy explicitly allows DTD processing, so a locked-down parse performs
// no I/O at all.
//
// # Command Line
//
// The xmltools command exposes the engine for shell use:
//
//	xmltools parse --stats config.xml
//	xmltools string '<a><b>text</b></a>'
//	xmltools parse --query server/host config.xml
//	xmltools mcp
//
// See the parser package documentation for the full API.
package xmltools
