package parser

import (
	"strings"

	"github.com/erraggy/xmltools/internal/fileutil"
	"github.com/erraggy/xmltools/xmlerrors"
)

// builtinEntities are the five predefined XML entities. They resolve to
// their literal characters before the custom table is consulted.
var builtinEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"quot": `"`,
	"apos": "'",
}

// ResourceReader resolves an external (SYSTEM) entity locator to its
// contents. The engine performs all external reads through this capability,
// so substituting a fake removes any real I/O from the parse path.
//
// Implementations shared across concurrent parses must be safe for
// concurrent use; the engine itself issues reads synchronously.
type ResourceReader func(locator string) (string, error)

// DefaultResourceReader reads external entities from the local filesystem.
var DefaultResourceReader ResourceReader = fileutil.ReadText

// Entities maps custom entity names to replacement text. The five built-in
// XML entities are always resolved first and cannot be overridden.
// Names and values are sanitized on registration.
type Entities struct {
	table map[string]string
}

// NewEntities returns an empty custom entity table.
func NewEntities() *Entities {
	return &Entities{table: make(map[string]string)}
}

// Register adds a custom entity. The name is filtered to valid name
// characters and the value has reserved markup characters escaped on
// insertion, so a registered entity can never smuggle raw markup into a
// document. Substituted text passes through text sanitization again, so
// markup in a registered value comes out double-escaped.
func (e *Entities) Register(name, value string) {
	e.table[SanitizeName(name)] = SanitizeText(value)
}

// Lookup returns the replacement text for a registered entity.
func (e *Entities) Lookup(name string) (string, bool) {
	v, ok := e.table[name]
	return v, ok
}

// Len returns the number of registered custom entities.
func (e *Entities) Len() int {
	return len(e.table)
}

// resolveEntity maps one entity name to its replacement text, consulting
// built-ins, then SYSTEM declarations, then the custom table.
func (r *parseRun) resolveEntity(name string) (string, error) {
	if v, ok := builtinEntities[name]; ok {
		return v, nil
	}
	if strings.Contains(name, "SYSTEM") {
		return r.resolveExternalEntity(name)
	}
	if v, ok := r.entities.Lookup(name); ok {
		return v, nil
	}
	return "", &xmlerrors.EntityError{Name: name, Message: "unknown entity"}
}

// resolveExternalEntity handles a SYSTEM declaration. DTD processing must
// be allowed by policy and external resolution enabled on the parser before
// the resource reader is ever invoked.
func (r *parseRun) resolveExternalEntity(decl string) (string, error) {
	if !r.policy.AllowDTD {
		return "", &xmlerrors.PolicyError{Violation: xmlerrors.ViolationDTD}
	}
	if !r.externalEntities {
		return "", &xmlerrors.PolicyError{Violation: xmlerrors.ViolationExternalEntity}
	}

	locator, err := externalLocator(decl)
	if err != nil {
		return "", err
	}

	r.logger.Debug("resolving external entity", "locator", locator)
	content, err := r.reader(locator)
	if err != nil {
		return "", &xmlerrors.ReadError{Locator: locator, Cause: err}
	}
	return content, nil
}

// externalLocator extracts the double-quoted resource locator from a
// SYSTEM entity declaration.
func externalLocator(decl string) (string, error) {
	rest := decl[strings.Index(decl, "SYSTEM")+len("SYSTEM"):]
	start := strings.IndexByte(rest, '"')
	if start < 0 {
		return "", &xmlerrors.EntityError{Name: decl, Message: "invalid external entity declaration"}
	}
	end := strings.IndexByte(rest[start+1:], '"')
	if end < 0 {
		return "", &xmlerrors.EntityError{Name: decl, Message: "invalid external entity declaration"}
	}
	return rest[start+1 : start+1+end], nil
}
