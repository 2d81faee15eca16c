// Package xmlerrors provides structured error types for xmltools.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between different categories
// of parse failures and decide whether to retry with a relaxed policy.
//
// # Error Categories
//
//   - SyntaxError: malformed markup and cancelled parses
//   - LimitError: policy limit exhaustion (depth, children, attributes, text)
//   - PolicyError: content the active policy forbids (tags, attributes, DTD, comments, CDATA, external entities)
//   - EntityError: unknown or malformed entity references
//   - ReadError: external entity resource read failures
//
// # Usage with errors.Is
//
//	result, err := parser.ParseWithOptions(parser.WithFilePath("doc.xml"))
//	if err != nil {
//	    if errors.Is(err, xmlerrors.ErrMaxDepthExceeded) {
//	        // Document nests deeper than the policy allows
//	    }
//	}
package xmlerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
// These form the closed taxonomy of parse failures; no others are produced.
var (
	// ErrInvalidSyntax indicates malformed markup or a cancelled parse.
	ErrInvalidSyntax = errors.New("invalid syntax")

	// ErrMaxDepthExceeded indicates nesting beyond the policy depth limit.
	ErrMaxDepthExceeded = errors.New("maximum depth exceeded")

	// ErrMaxChildrenExceeded indicates a node with too many children.
	ErrMaxChildrenExceeded = errors.New("maximum children exceeded")

	// ErrMaxAttributesExceeded indicates a tag with too many attributes.
	ErrMaxAttributesExceeded = errors.New("maximum attributes exceeded")

	// ErrMaxTextLengthExceeded indicates a text span beyond the length limit.
	ErrMaxTextLengthExceeded = errors.New("maximum text length exceeded")

	// ErrDisallowedTag indicates a tag outside the allow-list.
	ErrDisallowedTag = errors.New("disallowed tag")

	// ErrDisallowedAttribute indicates an attribute outside the allow-list.
	ErrDisallowedAttribute = errors.New("disallowed attribute")

	// ErrDisallowedDTD indicates DTD processing while AllowDTD is false.
	ErrDisallowedDTD = errors.New("disallowed DTD")

	// ErrDisallowedComment indicates a comment while AllowComments is false.
	ErrDisallowedComment = errors.New("disallowed comment")

	// ErrDisallowedCDATA indicates a CDATA section while AllowCDATA is false.
	ErrDisallowedCDATA = errors.New("disallowed CDATA")

	// ErrExternalEntityNotAllowed indicates an external entity reference while
	// external entity resolution is disabled.
	ErrExternalEntityNotAllowed = errors.New("external entity not allowed")

	// ErrMalformedEntity indicates an unknown or malformed entity reference.
	ErrMalformedEntity = errors.New("malformed entity")

	// ErrIO indicates a failure reading an external entity resource.
	ErrIO = errors.New("io error")
)

// SyntaxError represents malformed markup: unclosed tags, missing closing
// tags, circular node references, or a cancelled parse.
type SyntaxError struct {
	// Message describes the structural problem
	Message string
}

// Error returns a human-readable error message.
func (e *SyntaxError) Error() string {
	msg := "invalid syntax"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrInvalidSyntax
}

// LimitResource identifies which policy limit a LimitError exhausted.
type LimitResource string

// Resource identifiers for LimitError.
const (
	LimitDepth      LimitResource = "depth"
	LimitChildren   LimitResource = "children"
	LimitAttributes LimitResource = "attributes"
	LimitTextLength LimitResource = "text_length"
)

// LimitError represents exhaustion of one of the policy's numeric limits.
type LimitError struct {
	// Resource identifies which limit was exceeded
	Resource LimitResource
	// Limit is the configured maximum value
	Limit int
	// Actual is the value that exceeded the limit (0 if unknown)
	Actual int
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *LimitError) Error() string {
	msg := "resource limit exceeded"
	if e.Resource != "" {
		msg += ": " + string(e.Resource)
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches the sentinel for this error's resource.
func (e *LimitError) Is(target error) bool {
	switch e.Resource {
	case LimitDepth:
		return target == ErrMaxDepthExceeded
	case LimitChildren:
		return target == ErrMaxChildrenExceeded
	case LimitAttributes:
		return target == ErrMaxAttributesExceeded
	case LimitTextLength:
		return target == ErrMaxTextLengthExceeded
	}
	return false
}

// PolicyViolation identifies what kind of content a PolicyError rejected.
type PolicyViolation string

// Violation identifiers for PolicyError.
const (
	ViolationTag            PolicyViolation = "tag"
	ViolationAttribute      PolicyViolation = "attribute"
	ViolationDTD            PolicyViolation = "dtd"
	ViolationComment        PolicyViolation = "comment"
	ViolationCDATA          PolicyViolation = "cdata"
	ViolationExternalEntity PolicyViolation = "external_entity"
)

// PolicyError represents content rejected by the active policy: a tag or
// attribute outside the allow-list, or a gated construct (DTD, comment,
// CDATA, external entity) the policy forbids.
type PolicyError struct {
	// Violation identifies which policy gate rejected the content
	Violation PolicyViolation
	// Name is the offending tag, attribute, or entity name (may be empty)
	Name string
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *PolicyError) Error() string {
	var msg string
	switch e.Violation {
	case ViolationTag:
		msg = "tag not allowed"
	case ViolationAttribute:
		msg = "attribute not allowed"
	case ViolationDTD:
		msg = "DTD processing not allowed"
	case ViolationComment:
		msg = "comments not allowed"
	case ViolationCDATA:
		msg = "CDATA sections not allowed"
	case ViolationExternalEntity:
		msg = "external entity processing not allowed"
	default:
		msg = "policy violation"
	}
	if e.Name != "" {
		msg += ": " + e.Name
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches the sentinel for this error's violation.
func (e *PolicyError) Is(target error) bool {
	switch e.Violation {
	case ViolationTag:
		return target == ErrDisallowedTag
	case ViolationAttribute:
		return target == ErrDisallowedAttribute
	case ViolationDTD:
		return target == ErrDisallowedDTD
	case ViolationComment:
		return target == ErrDisallowedComment
	case ViolationCDATA:
		return target == ErrDisallowedCDATA
	case ViolationExternalEntity:
		return target == ErrExternalEntityNotAllowed
	}
	return false
}

// EntityError represents an unknown entity reference or a malformed
// external entity declaration.
type EntityError struct {
	// Name is the entity name that failed to resolve
	Name string
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *EntityError) Error() string {
	msg := "malformed entity"
	if e.Name != "" {
		msg += ": " + e.Name
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *EntityError) Is(target error) bool {
	return target == ErrMalformedEntity
}

// ReadError represents a failure to read an external entity resource.
type ReadError struct {
	// Locator is the resource locator that could not be read
	Locator string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReadError) Error() string {
	msg := "io error"
	if e.Locator != "" {
		msg += ": reading " + e.Locator
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReadError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ReadError) Is(target error) bool {
	return target == ErrIO
}
