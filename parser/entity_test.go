package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/xmltools/xmlerrors"
)

// countingReader is a ResourceReader fake that records every invocation.
type countingReader struct {
	calls    int
	content  string
	err      error
	locators []string
}

func (c *countingReader) read(locator string) (string, error) {
	c.calls++
	c.locators = append(c.locators, locator)
	return c.content, c.err
}

func TestBuiltinEntities(t *testing.T) {
	result, err := New().Parse(`<m>&lt;&gt;&amp;&quot;&apos;</m>`)
	require.NoError(t, err)

	// Resolved characters are re-escaped by sanitization, so built-ins
	// round-trip to themselves.
	assert.Equal(t, "&lt;&gt;&amp;&quot;&apos;", result.Root.Text)
}

func TestCustomEntities(t *testing.T) {
	t.Run("registered entity substitutes once", func(t *testing.T) {
		result, err := ParseWithOptions(
			WithContent(`<m>&company; rocks</m>`),
			WithEntity("company", "ACME"))
		require.NoError(t, err)
		assert.Equal(t, "ACME rocks", result.Root.Text)
	})

	t.Run("entity in attribute value", func(t *testing.T) {
		result, err := ParseWithOptions(
			WithContent(`<m owner="&company;"/>`),
			WithEntity("company", "ACME"))
		require.NoError(t, err)
		assert.Equal(t, "ACME", result.Root.Attributes["owner"])
	})

	t.Run("replacement text is never re-scanned", func(t *testing.T) {
		result, err := ParseWithOptions(
			WithContent(`<m>&a;</m>`),
			WithEntity("a", "&a;&a;"))
		require.NoError(t, err)
		// The registered value is escaped on registration and substituted
		// literally, so expansion cannot amplify. The surrounding text
		// pipeline escapes the substituted ampersands once more.
		assert.Equal(t, "&amp;amp;a;&amp;amp;a;", result.Root.Text)
	})

	t.Run("unknown entity fails", func(t *testing.T) {
		_, err := New().Parse(`<m>&nope;</m>`)
		require.Error(t, err)
		assert.ErrorIs(t, err, xmlerrors.ErrMalformedEntity)

		var entErr *xmlerrors.EntityError
		require.ErrorAs(t, err, &entErr)
		assert.Equal(t, "nope", entErr.Name)
	})

	t.Run("built-ins cannot be overridden", func(t *testing.T) {
		result, err := ParseWithOptions(
			WithContent(`<m>&lt;</m>`),
			WithEntity("lt", "hijacked"))
		require.NoError(t, err)
		assert.Equal(t, "&lt;", result.Root.Text)
	})
}

func TestEntitiesRegister(t *testing.T) {
	e := NewEntities()
	e.Register("bad name", `<markup> & "quotes"`)

	v, ok := e.Lookup("badname")
	require.True(t, ok, "name is sanitized on registration")
	assert.Equal(t, "&lt;markup&gt; &amp; &quot;quotes&quot;", v, "value is escaped on registration")
	assert.Equal(t, 1, e.Len())
}

func TestEntityValueSanitizedOnRegistration(t *testing.T) {
	result, err := ParseWithOptions(
		WithContent(`<m>&payload;</m>`),
		WithEntity("payload", `<script>`))
	require.NoError(t, err)

	// Escaped once at registration, then once more by the text pipeline
	// after substitution.
	text := result.Root.Text
	assert.Equal(t, "&amp;lt;script&amp;gt;", text)
	assert.NotContains(t, text, "<script>")
}

func TestExternalEntities(t *testing.T) {
	const doc = `<m>&ent SYSTEM "config.txt";</m>`

	t.Run("reader never invoked when dtd disallowed", func(t *testing.T) {
		reader := &countingReader{content: "secret"}
		p := New()
		p.ResourceReader = reader.read

		_, err := p.Parse(doc)
		require.Error(t, err)
		assert.ErrorIs(t, err, xmlerrors.ErrDisallowedDTD)
		assert.Equal(t, 0, reader.calls, "policy gate must precede any read")
	})

	t.Run("reader never invoked when external resolution disabled", func(t *testing.T) {
		reader := &countingReader{content: "secret"}
		p := New()
		p.Policy.AllowDTD = true
		p.ExternalEntities = false
		p.ResourceReader = reader.read

		_, err := p.Parse(doc)
		require.Error(t, err)
		assert.ErrorIs(t, err, xmlerrors.ErrExternalEntityNotAllowed)
		assert.Equal(t, 0, reader.calls)
	})

	t.Run("successful resolution substitutes sanitized content", func(t *testing.T) {
		reader := &countingReader{content: "resolved <value>"}
		p := New()
		p.Policy.AllowDTD = true
		p.ResourceReader = reader.read

		result, err := p.Parse(doc)
		require.NoError(t, err)
		assert.Equal(t, 1, reader.calls)
		assert.Equal(t, []string{"config.txt"}, reader.locators)
		assert.Equal(t, "resolved &lt;value&gt;", result.Root.Text)
	})

	t.Run("reader failure maps to io error", func(t *testing.T) {
		reader := &countingReader{err: errors.New("boom")}
		p := New()
		p.Policy.AllowDTD = true
		p.ResourceReader = reader.read

		_, err := p.Parse(doc)
		require.Error(t, err)
		assert.ErrorIs(t, err, xmlerrors.ErrIO)

		var readErr *xmlerrors.ReadError
		require.ErrorAs(t, err, &readErr)
		assert.Equal(t, "config.txt", readErr.Locator)
		assert.ErrorContains(t, readErr.Cause, "boom")
	})

	t.Run("declaration without quoted locator fails", func(t *testing.T) {
		p := New()
		p.Policy.AllowDTD = true

		_, err := p.Parse(`<m>&ent SYSTEM config.txt;</m>`)
		require.Error(t, err)
		assert.ErrorIs(t, err, xmlerrors.ErrMalformedEntity)
	})
}

func TestExternalLocator(t *testing.T) {
	tests := []struct {
		name    string
		decl    string
		want    string
		wantErr bool
	}{
		{"simple", `ent SYSTEM "file.txt"`, "file.txt", false},
		{"path locator", `ent SYSTEM "conf/app.xml"`, "conf/app.xml", false},
		{"no quotes", `ent SYSTEM file.txt`, "", true},
		{"unterminated quote", `ent SYSTEM "file.txt`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := externalLocator(tt.decl)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
