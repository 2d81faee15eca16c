package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"angle brackets escaped", "<tag>", "&lt;tag&gt;"},
		{"ampersand escaped", "a & b", "a &amp; b"},
		{"quotes escaped", `say "hi" or 'bye'`, "say &quot;hi&quot; or &apos;bye&apos;"},
		{"already escaped text re-escapes its ampersands", "&lt;", "&amp;lt;"},
		{"whitespace control characters kept", "a\nb\tc\rd", "a\nb\tc\rd"},
		{"other control characters dropped", "a\x00b\x07c\x1bd", "abcd"},
		{"unicode text kept", "héllo wörld", "héllo wörld"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.input))
		})
	}
}

func TestSanitizeTextNeverEmitsRawMarkup(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>",
		`"><injected attr="`,
		"&<>'\"",
	}
	for _, input := range inputs {
		got := SanitizeText(input)
		assert.NotContains(t, got, "<")
		assert.NotContains(t, got, ">")
		assert.NotContains(t, got, `"`)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid name untouched", "server-name_2:ns", "server-name_2:ns"},
		{"spaces dropped", "bad name", "badname"},
		{"markup dropped", "<script>", "script"},
		{"slash dropped", "a/b", "ab"},
		{"unicode dropped", "tagé", "tag"},
		{"everything invalid", "!@#$%", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.input))
		})
	}
}

func TestSanitizeNameIdempotent(t *testing.T) {
	inputs := []string{"server-name", "bad name", "<x>", "a:b_c-d9"}
	for _, input := range inputs {
		once := SanitizeName(input)
		assert.Equal(t, once, SanitizeName(once))
	}
}
