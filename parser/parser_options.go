package parser

import (
	"context"
	"fmt"
)

// Option is a function that configures a parse operation
type Option func(*parseConfig) error

// parseConfig holds configuration for a parse operation
type parseConfig struct {
	// Input source (exactly one must be set)
	content  *string
	filePath *string

	// Configuration options
	policy           *Policy
	policyFile       *string
	entities         map[string]string
	reader           ResourceReader
	externalEntities *bool
	logger           Logger
	ctx              context.Context
}

// ParseWithOptions parses a document using functional options. This
// combines input source selection and configuration in a single call:
//
//	result, err := parser.ParseWithOptions(
//	    parser.WithFilePath("config.xml"),
//	    parser.WithPolicy(policy),
//	    parser.WithEntity("company", "ACME Corp"),
//	)
func ParseWithOptions(opts ...Option) (*ParseResult, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("parser: invalid options: %w", err)
	}

	p := New()
	if cfg.policy != nil {
		p.Policy = *cfg.policy
	}
	if cfg.policyFile != nil {
		policy, err := LoadPolicyFile(*cfg.policyFile)
		if err != nil {
			return nil, err
		}
		p.Policy = policy
	}
	for name, value := range cfg.entities {
		p.Entities.Register(name, value)
	}
	if cfg.reader != nil {
		p.ResourceReader = cfg.reader
	}
	if cfg.externalEntities != nil {
		p.ExternalEntities = *cfg.externalEntities
	}
	if cfg.logger != nil {
		p.Logger = cfg.logger
	}

	ctx := cfg.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case cfg.filePath != nil:
		content, err := DefaultResourceReader(*cfg.filePath)
		if err != nil {
			return nil, fmt.Errorf("parser: reading %s: %w", *cfg.filePath, err)
		}
		result, err := p.ParseContext(ctx, content)
		if result != nil {
			result.SourcePath = *cfg.filePath
		}
		return result, err
	case cfg.content != nil:
		return p.ParseContext(ctx, *cfg.content)
	default:
		// Should never reach here due to validation in applyOptions
		return nil, fmt.Errorf("parser: no input source specified")
	}
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*parseConfig, error) {
	cfg := &parseConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// Validate exactly one input source is specified
	switch {
	case cfg.content == nil && cfg.filePath == nil:
		return nil, fmt.Errorf("must specify an input source (use WithContent or WithFilePath)")
	case cfg.content != nil && cfg.filePath != nil:
		return nil, fmt.Errorf("must specify exactly one input source")
	case cfg.policy != nil && cfg.policyFile != nil:
		return nil, fmt.Errorf("WithPolicy and WithPolicyFile are mutually exclusive")
	}
	return cfg, nil
}

// WithContent specifies an in-memory document as the input source
func WithContent(content string) Option {
	return func(cfg *parseConfig) error {
		cfg.content = &content
		return nil
	}
}

// WithFilePath specifies a file path as the input source
func WithFilePath(path string) Option {
	return func(cfg *parseConfig) error {
		if path == "" {
			return fmt.Errorf("file path cannot be empty")
		}
		cfg.filePath = &path
		return nil
	}
}

// WithPolicy sets the validation policy for the parse.
// Default: DefaultPolicy()
func WithPolicy(policy Policy) Option {
	return func(cfg *parseConfig) error {
		cfg.policy = &policy
		return nil
	}
}

// WithPolicyFile loads the validation policy from a YAML file.
// Mutually exclusive with WithPolicy.
func WithPolicyFile(path string) Option {
	return func(cfg *parseConfig) error {
		if path == "" {
			return fmt.Errorf("policy file path cannot be empty")
		}
		cfg.policyFile = &path
		return nil
	}
}

// WithEntity registers a custom entity before parsing. May be repeated.
func WithEntity(name, value string) Option {
	return func(cfg *parseConfig) error {
		if name == "" {
			return fmt.Errorf("entity name cannot be empty")
		}
		if cfg.entities == nil {
			cfg.entities = make(map[string]string)
		}
		cfg.entities[name] = value
		return nil
	}
}

// WithResourceReader sets the capability used to read external (SYSTEM)
// entity resources. Default: DefaultResourceReader (local filesystem).
func WithResourceReader(reader ResourceReader) Option {
	return func(cfg *parseConfig) error {
		if reader == nil {
			return fmt.Errorf("resource reader cannot be nil")
		}
		cfg.reader = reader
		return nil
	}
}

// WithExternalEntities enables or disables external entity resolution.
// Default: true (still gated behind Policy.AllowDTD)
func WithExternalEntities(enabled bool) Option {
	return func(cfg *parseConfig) error {
		cfg.externalEntities = &enabled
		return nil
	}
}

// WithLogger sets the structured logger for debug output.
// Default: logging disabled
func WithLogger(logger Logger) Option {
	return func(cfg *parseConfig) error {
		cfg.logger = logger
		return nil
	}
}

// WithContext sets the cancellation context for the parse.
// Default: context.Background()
func WithContext(ctx context.Context) Option {
	return func(cfg *parseConfig) error {
		if ctx == nil {
			return fmt.Errorf("context cannot be nil")
		}
		cfg.ctx = ctx
		return nil
	}
}
