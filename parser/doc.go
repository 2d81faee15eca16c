// Package parser implements a hardened recursive-descent XML parser for
// untrusted documents.
//
// Import path: github.com/erraggy/xmltools/parser
//
// The parser builds a bounded in-memory [Node] tree while consulting a
// [Policy] at every structural decision: tag and attribute allow-lists,
// nesting depth, per-node fan-out, attribute counts, and text span lengths.
// Comments, CDATA sections, and DTD/external-entity processing are
// individually gated. Violations abort the parse with a typed error from
// the xmlerrors package; there is no local recovery, since policy
// violations indicate malformed or adversarial input.
//
// # Parsing
//
// The simplest entry point is [ParseWithOptions]:
//
//	result, err := parser.ParseWithOptions(
//	    parser.WithContent(`<server><host>db1</host></server>`),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Root.Query("host")) // "db1"
//
// For repeated parses, configure a [Parser] once and reuse it; concurrent
// Parse calls are safe because every invocation owns its own telemetry
// collector and cancellation context.
//
// # Entities
//
// The five built-in XML entities always resolve. Custom entities register
// through [Entities.Register] or [WithEntity] and are sanitized on
// insertion. Each reference expands exactly once per occurrence and the
// replacement is never re-scanned, which rules out expansion bombs by
// construction. External (SYSTEM) references resolve through an injected
// [ResourceReader] and only when Policy.AllowDTD permits, so a locked-down
// parse performs no I/O.
//
// # Cancellation
//
// [Parser.ParseContext] checks its context at every recursive entry and at
// every substitution-loop iteration. Cancellation is cooperative and
// surfaces as an invalid-syntax error; pair it with context.WithTimeout
// for wall-clock limits.
//
// # Telemetry
//
// Every parse accumulates a [DocumentStats] snapshot: node/attribute/text
// counts, maximum depth, per-name frequencies, and elapsed duration. The
// snapshot is available on both success and failure, reflecting everything
// observed up to the failure point.
package parser
