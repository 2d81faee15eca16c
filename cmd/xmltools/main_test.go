package main

import "testing"

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Typos within edit distance 2
		{"prase", "parse"},
		{"parce", "parse"},
		{"pars", "parse"},
		{"stirng", "string"},
		{"strin", "string"},
		{"mpc", "mcp"},
		{"versio", "version"},
		{"hep", "help"},

		// Too far - no suggestion (distance > 2)
		{"xyz", ""},
		{"foobar", ""},
		{"documentation", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := suggestCommand(tt.input)
			if got != tt.expected {
				t.Errorf("suggestCommand(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEntityFlags(t *testing.T) {
	e := make(entityFlags)

	if err := e.Set("company=ACME"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := e.Set("year=2026"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if e["company"] != "ACME" || e["year"] != "2026" {
		t.Errorf("unexpected entries: %v", e)
	}

	if err := e.Set("noequals"); err == nil {
		t.Error("expected error for value without '='")
	}
	if err := e.Set("=value"); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestBuildOptions(t *testing.T) {
	flags := &docFlags{
		maxDepth: 7,
		allowDTD: true,
		entities: entityFlags{"a": "1"},
	}
	opts, err := buildOptions(flags)
	if err != nil {
		t.Fatalf("buildOptions: %v", err)
	}
	// policy + external entities + one registered entity
	if len(opts) != 3 {
		t.Errorf("expected 3 options, got %d", len(opts))
	}
}
