package parser

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/erraggy/xmltools/xmlerrors"
)

// Parser handles hardened XML parsing. The zero value is not usable;
// create instances with New and adjust fields before calling Parse.
//
// A Parser may be reused and is safe for concurrent Parse calls: every
// invocation owns its own telemetry collector and cancellation context, and
// the Policy and entity table are only read during a parse.
type Parser struct {
	// Policy is the validation configuration applied at every structural
	// decision. Zero-valued limits fall back to the package defaults.
	Policy Policy
	// Entities holds caller-registered custom entities
	Entities *Entities
	// ResourceReader resolves external (SYSTEM) entity locators.
	// If nil, DefaultResourceReader (local filesystem) is used.
	ResourceReader ResourceReader
	// ExternalEntities toggles external entity resolution independently of
	// Policy.AllowDTD: even with DTD processing allowed, a SYSTEM reference
	// fails with ExternalEntityNotAllowed when this is false.
	ExternalEntities bool
	// Logger is the structured logger for debug output.
	// If nil, logging is disabled (default).
	Logger Logger
}

// New creates a new Parser with the default policy, an empty entity table,
// and external entity resolution enabled (but still gated behind
// Policy.AllowDTD, which defaults to false).
func New() *Parser {
	return &Parser{
		Policy:           DefaultPolicy(),
		Entities:         NewEntities(),
		ExternalEntities: true,
	}
}

// log returns the configured logger, or a no-op logger if none is set.
func (p *Parser) log() Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return NopLogger{}
}

// ParseResult contains the parsed document tree and parse metadata.
//
// Callers should treat the result as read-only: the tree and the telemetry
// snapshot are not copied, and mutating them invalidates the structural
// invariants the parse enforced.
type ParseResult struct {
	// Root is the document root element. Nil when the parse failed.
	Root *Node
	// Stats holds the telemetry accumulated during the parse. On failure it
	// reflects everything observed up to the point of failure.
	Stats DocumentStats
	// SourcePath identifies the input source when parsing from a file
	SourcePath string
	// SourceSize is the input length in bytes
	SourceSize int
}

// parseRun is the per-invocation state: one run per Parse call, so
// concurrent parses share nothing mutable.
type parseRun struct {
	ctx              context.Context
	policy           Policy
	entities         *Entities
	reader           ResourceReader
	externalEntities bool
	stats            *DocumentStats
	logger           Logger
}

func (p *Parser) newRun(ctx context.Context) *parseRun {
	run := &parseRun{
		ctx:              ctx,
		policy:           p.Policy.withDefaults(),
		entities:         p.Entities,
		reader:           p.ResourceReader,
		externalEntities: p.ExternalEntities,
		stats:            newDocumentStats(),
		logger:           p.log(),
	}
	if run.entities == nil {
		run.entities = NewEntities()
	}
	if run.reader == nil {
		run.reader = DefaultResourceReader
	}
	return run
}

// Parse parses an in-memory document with no cancellation deadline.
func (p *Parser) Parse(content string) (*ParseResult, error) {
	return p.ParseContext(context.Background(), content)
}

// ParseFile reads and parses the document at path.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	content, err := DefaultResourceReader(path)
	if err != nil {
		return nil, &xmlerrors.ReadError{Locator: path, Cause: err}
	}
	result, err := p.Parse(content)
	if result != nil {
		result.SourcePath = path
	}
	return result, err
}

// ParseContext parses an in-memory document under ctx. Cancellation is
// cooperative: it is checked at every recursive entry and at every
// iteration of the entity and CDATA substitution loops, and surfaces as an
// InvalidSyntax error. The returned result is non-nil even on failure so
// the partial telemetry snapshot remains available.
func (p *Parser) ParseContext(ctx context.Context, content string) (*ParseResult, error) {
	run := p.newRun(ctx)
	result := &ParseResult{SourceSize: len(content)}

	start := time.Now()
	defer func() {
		run.stats.ParseTime = time.Since(start)
		result.Stats = *run.stats
	}()

	root, _, err := run.parseNode(content, 0)
	if err != nil {
		return result, err
	}
	if root == nil {
		return result, &xmlerrors.SyntaxError{Message: "no element found"}
	}
	result.Root = root
	return result, nil
}

// checkCancelled maps context cancellation to the engine's error taxonomy.
func (r *parseRun) checkCancelled() error {
	select {
	case <-r.ctx.Done():
		return &xmlerrors.SyntaxError{Message: "parsing cancelled"}
	default:
		return nil
	}
}

// parseNode parses the first element found in content and returns it along
// with the offset just past its closing tag. A nil node with nil error
// means no element remains at this level (end of content or a closing tag,
// which the caller matches). Errors unwind the whole recursive call chain;
// no partial node is ever returned.
func (r *parseRun) parseNode(content string, depth int) (*Node, int, error) {
	if err := r.checkCancelled(); err != nil {
		return nil, 0, err
	}
	if depth > r.policy.MaxDepth {
		return nil, 0, &xmlerrors.LimitError{
			Resource: xmlerrors.LimitDepth,
			Limit:    r.policy.MaxDepth,
			Actual:   depth,
		}
	}

	tagStart, err := r.findOpenTag(content)
	if err != nil {
		return nil, 0, err
	}
	if tagStart < 0 {
		return nil, len(content), nil
	}

	gt := strings.IndexByte(content[tagStart:], '>')
	if gt < 0 {
		return nil, 0, &xmlerrors.SyntaxError{Message: "unclosed tag found"}
	}
	tagEnd := tagStart + gt
	tagContent := content[tagStart+1 : tagEnd]
	if tagContent == "" {
		return nil, 0, &xmlerrors.SyntaxError{Message: "empty tag"}
	}
	if tagContent[0] == '/' {
		// Closing tag: the caller matches it against the expected name.
		return nil, tagStart, nil
	}

	selfClosing := strings.HasSuffix(tagContent, "/")
	rawName := strings.TrimSuffix(tagContent, "/")
	attrSpan := ""
	if space := strings.IndexByte(rawName, ' '); space >= 0 {
		attrSpan = rawName[space+1:]
		rawName = rawName[:space]
	}

	name := SanitizeName(rawName)
	if name == "" {
		return nil, 0, &xmlerrors.SyntaxError{Message: "invalid tag name: " + rawName}
	}
	if !r.policy.IsTagAllowed(name) {
		r.logger.Debug("tag rejected by policy", "tag", name, "depth", depth)
		return nil, 0, &xmlerrors.PolicyError{Violation: xmlerrors.ViolationTag, Name: name}
	}

	node := newNode(name, depth)
	r.stats.recordNode(depth)
	r.stats.recordTag(name)

	if attrSpan != "" {
		if err := r.parseAttributes(attrSpan, node); err != nil {
			return nil, 0, err
		}
	}

	if selfClosing {
		return node, tagEnd + 1, nil
	}

	closing := "</" + name + ">"
	rel := strings.Index(content[tagEnd+1:], closing)
	if rel < 0 {
		return nil, 0, &xmlerrors.SyntaxError{Message: "missing closing tag for: " + name}
	}
	inner := content[tagEnd+1 : tagEnd+1+rel]
	consumed := tagEnd + 1 + rel + len(closing)

	inner, err = r.extractCDATA(inner)
	if err != nil {
		return nil, 0, err
	}
	inner, err = r.stripComments(inner)
	if err != nil {
		return nil, 0, err
	}

	if err := r.parseContent(inner, node, depth); err != nil {
		return nil, 0, err
	}
	return node, consumed, nil
}

// findOpenTag locates the next '<' in content, skipping (or rejecting)
// comment sections along the way. Returns -1 when no tag remains.
func (r *parseRun) findOpenTag(content string) (int, error) {
	pos := 0
	for {
		i := strings.IndexByte(content[pos:], '<')
		if i < 0 {
			return -1, nil
		}
		tagStart := pos + i
		if !strings.HasPrefix(content[tagStart:], commentStart) {
			return tagStart, nil
		}
		if !r.policy.AllowComments {
			return 0, &xmlerrors.PolicyError{Violation: xmlerrors.ViolationComment}
		}
		end := strings.Index(content[tagStart+len(commentStart):], commentEnd)
		if end < 0 {
			return 0, &xmlerrors.SyntaxError{Message: "unterminated comment"}
		}
		pos = tagStart + len(commentStart) + end + len(commentEnd)
	}
}

// parseContent splits the element's inner span into character data and
// child elements: text segments accumulate into the node's text content,
// and each child parses recursively with all policy gates applied before
// attachment.
func (r *parseRun) parseContent(inner string, node *Node, depth int) error {
	var text strings.Builder
	rest := inner
	for {
		lt := strings.IndexByte(rest, '<')
		if lt < 0 {
			text.WriteString(rest)
			break
		}
		text.WriteString(rest[:lt])
		if strings.HasPrefix(rest[lt:], "</") {
			// Stray closing tag; this level ends here.
			break
		}

		child, n, err := r.parseNode(rest[lt:], depth+1)
		if err != nil {
			return err
		}
		if child == nil {
			break
		}
		if len(node.Children)+1 > r.policy.MaxChildren {
			return &xmlerrors.LimitError{
				Resource: xmlerrors.LimitChildren,
				Limit:    r.policy.MaxChildren,
				Actual:   len(node.Children) + 1,
				Message:  node.Name,
			}
		}
		if err := node.AddChild(child); err != nil {
			return err
		}
		rest = rest[lt+n:]
	}

	processed, err := r.processText(text.String())
	if err != nil {
		return err
	}
	node.Text = strings.TrimSpace(processed)
	r.stats.recordText(len(node.Text))
	return nil
}

// attrPattern matches name="value" pairs left to right.
var attrPattern = regexp.MustCompile(`([^\s=]+)="([^"]*)"`)

// parseAttributes scans the attribute span of an open tag. Each match is
// gated on the running attribute count and the allow-list, then its value
// is entity-resolved and sanitized. A duplicate name overwrites the earlier
// value within the same tag.
func (r *parseRun) parseAttributes(span string, node *Node) error {
	for _, m := range attrPattern.FindAllStringSubmatch(span, -1) {
		if len(node.Attributes) >= r.policy.MaxAttributes {
			return &xmlerrors.LimitError{
				Resource: xmlerrors.LimitAttributes,
				Limit:    r.policy.MaxAttributes,
				Actual:   len(node.Attributes) + 1,
				Message:  node.Name,
			}
		}

		name := SanitizeName(m[1])
		if name == "" {
			return &xmlerrors.SyntaxError{Message: "invalid attribute name: " + m[1]}
		}
		if !r.policy.IsAttributeAllowed(name) {
			r.logger.Debug("attribute rejected by policy", "attribute", name, "tag", node.Name)
			return &xmlerrors.PolicyError{Violation: xmlerrors.ViolationAttribute, Name: name}
		}

		value, err := r.processText(m[2])
		if err != nil {
			return err
		}
		node.Attributes[name] = value
		r.stats.recordAttribute(name)
	}
	return nil
}

// processText applies the text pipeline: length gate (pre-substitution, so
// expansion cannot evade the limit check order), entity substitution, then
// sanitization.
func (r *parseRun) processText(s string) (string, error) {
	if len(s) > r.policy.MaxTextLength {
		return "", &xmlerrors.LimitError{
			Resource: xmlerrors.LimitTextLength,
			Limit:    r.policy.MaxTextLength,
			Actual:   len(s),
		}
	}
	out, err := r.substituteEntities(s)
	if err != nil {
		return "", err
	}
	return SanitizeText(out), nil
}

// entityRef matches one &name; reference.
var entityRef = regexp.MustCompile(`&([^;]+);`)

// substituteEntities expands each entity reference in s exactly once, in a
// single left-to-right pass. Replacement text is never re-scanned, so
// recursive expansion (and with it expansion-bomb amplification) is
// impossible by construction.
func (r *parseRun) substituteEntities(s string) (string, error) {
	matches := entityRef.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if err := r.checkCancelled(); err != nil {
			return "", err
		}
		replacement, err := r.resolveEntity(s[m[2]:m[3]])
		if err != nil {
			return "", err
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(replacement)
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

const (
	cdataStart   = "<![CDATA["
	cdataEnd     = "]]>"
	commentStart = "<!--"
	commentEnd   = "-->"
)

// extractCDATA substitutes each CDATA section with its sanitized literal
// content. CDATA content is verbatim: it is never entity-resolved, and
// sanitization escapes its markup characters so the substituted text cannot
// introduce new elements.
func (r *parseRun) extractCDATA(s string) (string, error) {
	for {
		i := strings.Index(s, cdataStart)
		if i < 0 {
			return s, nil
		}
		if !r.policy.AllowCDATA {
			return "", &xmlerrors.PolicyError{Violation: xmlerrors.ViolationCDATA}
		}
		if err := r.checkCancelled(); err != nil {
			return "", err
		}
		end := strings.Index(s[i+len(cdataStart):], cdataEnd)
		if end < 0 {
			return "", &xmlerrors.SyntaxError{Message: "unterminated CDATA section"}
		}
		literal := s[i+len(cdataStart) : i+len(cdataStart)+end]
		s = s[:i] + SanitizeText(literal) + s[i+len(cdataStart)+end+len(cdataEnd):]
	}
}

// stripComments removes comment sections from an inner content span, or
// rejects the span when comments are disallowed. Runs after CDATA
// substitution so comment markers inside CDATA stay literal.
func (r *parseRun) stripComments(s string) (string, error) {
	for {
		i := strings.Index(s, commentStart)
		if i < 0 {
			return s, nil
		}
		if !r.policy.AllowComments {
			return "", &xmlerrors.PolicyError{Violation: xmlerrors.ViolationComment}
		}
		end := strings.Index(s[i+len(commentStart):], commentEnd)
		if end < 0 {
			return "", &xmlerrors.SyntaxError{Message: "unterminated comment"}
		}
		s = s[:i] + s[i+len(commentStart)+end+len(commentEnd):]
	}
}
