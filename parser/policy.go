package parser

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"

	"go.yaml.in/yaml/v4"
)

// Default policy limits. A Policy field left at zero falls back to the
// corresponding default when the parse begins.
const (
	DefaultMaxDepth      = 100
	DefaultMaxChildren   = 1000
	DefaultMaxAttributes = 50
	DefaultMaxTextLength = 10000
)

// Policy is the validation configuration applied during a single parse.
// It is treated as immutable for the duration of a parse invocation:
// configure it fully before calling Parse, and do not mutate it while a
// parse is running.
//
// Empty allow-lists permit everything; a non-empty list permits only its
// members. Tag and attribute names are matched after sanitization.
type Policy struct {
	// AllowedTags lists permitted tag names (empty = allow all)
	AllowedTags []string `yaml:"allowed_tags"`
	// AllowedAttributes lists permitted attribute names (empty = allow all)
	AllowedAttributes []string `yaml:"allowed_attributes"`
	// MaxDepth is the maximum nesting depth (root = 0)
	MaxDepth int `yaml:"max_depth"`
	// MaxChildren is the maximum number of children per node
	MaxChildren int `yaml:"max_children"`
	// MaxAttributes is the maximum number of attributes per tag
	MaxAttributes int `yaml:"max_attributes"`
	// MaxTextLength is the maximum pre-sanitization text span length
	MaxTextLength int `yaml:"max_text_length"`
	// AllowComments permits comment sections (stripped from content)
	AllowComments bool `yaml:"allow_comments"`
	// AllowCDATA permits CDATA sections (substituted verbatim)
	AllowCDATA bool `yaml:"allow_cdata"`
	// AllowDTD permits DTD processing, including external entity reads
	AllowDTD bool `yaml:"allow_dtd"`
}

// DefaultPolicy returns the hardened default configuration: generous
// structural limits, comments and CDATA permitted, DTD processing denied.
func DefaultPolicy() Policy {
	return Policy{
		MaxDepth:      DefaultMaxDepth,
		MaxChildren:   DefaultMaxChildren,
		MaxAttributes: DefaultMaxAttributes,
		MaxTextLength: DefaultMaxTextLength,
		AllowComments: true,
		AllowCDATA:    true,
		AllowDTD:      false,
	}
}

// IsTagAllowed reports whether the tag name passes the allow-list.
func (p Policy) IsTagAllowed(name string) bool {
	return len(p.AllowedTags) == 0 || slices.Contains(p.AllowedTags, name)
}

// IsAttributeAllowed reports whether the attribute name passes the allow-list.
func (p Policy) IsAttributeAllowed(name string) bool {
	return len(p.AllowedAttributes) == 0 || slices.Contains(p.AllowedAttributes, name)
}

// withDefaults returns a copy of p with zero limits replaced by defaults.
func (p Policy) withDefaults() Policy {
	p.MaxDepth = cmp.Or(p.MaxDepth, DefaultMaxDepth)
	p.MaxChildren = cmp.Or(p.MaxChildren, DefaultMaxChildren)
	p.MaxAttributes = cmp.Or(p.MaxAttributes, DefaultMaxAttributes)
	p.MaxTextLength = cmp.Or(p.MaxTextLength, DefaultMaxTextLength)
	return p
}

// policyFile mirrors Policy for YAML decoding. The boolean gates are
// pointers so an absent key keeps its default instead of becoming false.
type policyFile struct {
	AllowedTags       []string `yaml:"allowed_tags"`
	AllowedAttributes []string `yaml:"allowed_attributes"`
	MaxDepth          int      `yaml:"max_depth"`
	MaxChildren       int      `yaml:"max_children"`
	MaxAttributes     int      `yaml:"max_attributes"`
	MaxTextLength     int      `yaml:"max_text_length"`
	AllowComments     *bool    `yaml:"allow_comments"`
	AllowCDATA        *bool    `yaml:"allow_cdata"`
	AllowDTD          *bool    `yaml:"allow_dtd"`
}

// LoadPolicy decodes a YAML policy document. Absent keys keep the
// DefaultPolicy values, so a policy file only needs to state overrides.
func LoadPolicy(r io.Reader) (Policy, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Policy{}, fmt.Errorf("parser: reading policy: %w", err)
	}
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return Policy{}, fmt.Errorf("parser: decoding policy: %w", err)
	}

	p := DefaultPolicy()
	p.AllowedTags = pf.AllowedTags
	p.AllowedAttributes = pf.AllowedAttributes
	if pf.MaxDepth > 0 {
		p.MaxDepth = pf.MaxDepth
	}
	if pf.MaxChildren > 0 {
		p.MaxChildren = pf.MaxChildren
	}
	if pf.MaxAttributes > 0 {
		p.MaxAttributes = pf.MaxAttributes
	}
	if pf.MaxTextLength > 0 {
		p.MaxTextLength = pf.MaxTextLength
	}
	if pf.AllowComments != nil {
		p.AllowComments = *pf.AllowComments
	}
	if pf.AllowCDATA != nil {
		p.AllowCDATA = *pf.AllowCDATA
	}
	if pf.AllowDTD != nil {
		p.AllowDTD = *pf.AllowDTD
	}
	return p, nil
}

// LoadPolicyFile decodes a YAML policy document from a file.
func LoadPolicyFile(path string) (Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return Policy{}, fmt.Errorf("parser: opening policy file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadPolicy(f)
}
