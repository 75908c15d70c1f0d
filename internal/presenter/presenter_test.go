package presenter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aymerick/raymond"
	"github.com/dollpublish/dollpublish/internal/document"
	"github.com/dollpublish/dollpublish/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOverride(t *testing.T, root, owner, src string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, owner), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, owner, TemplateFile), []byte(src), 0o644))
}

func post() *document.Document {
	return &document.Document{
		Name: "Trip <1>",
		Path: "trip",
		Metadata: document.Metadata{
			ID:    "x",
			Extra: map[string]any{"description": "A trip", "mood": "sunny"},
		},
	}
}

func TestDefaultTemplate(t *testing.T) {
	p := New(t.TempDir(), "")
	before := testutil.ToFloat64(metrics.TemplateRenders.WithLabelValues("default"))

	out := p.Render("<p>hello <b>world</b></p>", post(), "alice")

	assert.Contains(t, out, "<title>alice - Trip &lt;1&gt;</title>")
	assert.Contains(t, out, `<meta name="description" content="A trip">`)
	assert.Contains(t, out, "<p>hello <b>world</b></p>", "content is inserted raw")
	assert.Contains(t, out, "By alice")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.TemplateRenders.WithLabelValues("default")))
}

func TestDefaultTemplateWithoutDescription(t *testing.T) {
	d := post()
	d.Metadata.Extra = map[string]any{"description": 42}
	out := New(t.TempDir(), "").Render("", d, "alice")
	assert.NotContains(t, out, `name="description"`)
}

func TestOwnerOverride(t *testing.T) {
	root := t.TempDir()
	writeOverride(t, root, "alice", `<main data-path="{{path}}">{{title}} by {{author}} ({{metadata.mood}}): {{{content}}}</main>`)
	p := New(root, "")
	before := testutil.ToFloat64(metrics.TemplateRenders.WithLabelValues("override"))

	out := p.Render("<p>hi</p>", post(), "alice")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.TemplateRenders.WithLabelValues("override")))
	assert.Equal(t, `<main data-path="trip">Trip &lt;1&gt; by alice (sunny): <p>hi</p></main>`, out)

	// other owners still get the default
	other := p.Render("<p>hi</p>", post(), "bob")
	assert.Contains(t, other, "<!DOCTYPE html>")
}

func TestHandlebarsOverrideIsUsed(t *testing.T) {
	root := t.TempDir()
	writeOverride(t, root, "alice", `<h1 class="mine">{{title}}</h1>{{#if description}}<p>{{description}}</p>{{/if}}{{{content}}}`)

	out := New(root, "").Render("<p>hi</p>", post(), "alice")
	assert.Equal(t, `<h1 class="mine">Trip &lt;1&gt;</h1><p>A trip</p><p>hi</p>`, out)

	d := post()
	d.Metadata.Extra = nil
	out = New(root, "").Render("<p>hi</p>", d, "alice")
	assert.Equal(t, `<h1 class="mine">Trip &lt;1&gt;</h1><p>hi</p>`, out)
}

func TestDoubleStashEscapesBindings(t *testing.T) {
	root := t.TempDir()
	writeOverride(t, root, "alice", `{{metadata.note}}`)
	d := post()
	d.Metadata.Extra = map[string]any{"note": "<script>"}
	assert.Equal(t, "&lt;script&gt;", New(root, "").Render("", d, "alice"))
}

func TestInvalidOverrideFallsBackToDefault(t *testing.T) {
	root := t.TempDir()
	writeOverride(t, root, "alice", `<html>{{title</html>`)
	p := New(root, "")

	out := p.Render("<p>body</p>", post(), "alice")
	assert.Equal(t, New(t.TempDir(), "").Render("<p>body</p>", post(), "alice"), out)
}

func TestOverrideExecutionErrorFallsBack(t *testing.T) {
	root := t.TempDir()
	// parses fine but fails while executing: the partial is never registered
	writeOverride(t, root, "alice", `partial {{> sidebar}}`)
	out := New(root, "").Render("<p>body</p>", post(), "alice")
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.NotContains(t, out, "partial")
}

func TestLiteralFallbackWhenBothFail(t *testing.T) {
	root := t.TempDir()
	writeOverride(t, root, "alice", `{{broken`)
	p := New(root, `{{> missing}}`)

	before := testutil.ToFloat64(metrics.TemplateRenders.WithLabelValues("fallback"))
	assert.Equal(t, FailureText, p.Render("x", post(), "alice"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.TemplateRenders.WithLabelValues("fallback")))

	unparsable := New(root, `{{#if title}}never closed`)
	assert.Equal(t, FailureText, unparsable.Render("x", post(), "alice"))
}

func TestBindings(t *testing.T) {
	d := &document.Document{Name: "N", Path: "p"}
	b := Bindings("<i>x</i>", d, "carol")
	assert.Equal(t, "N", b["title"])
	assert.Equal(t, "carol", b["author"])
	assert.Equal(t, "p", b["path"])
	assert.NotContains(t, b, "description")
	assert.NotNil(t, b["metadata"])
	assert.Equal(t, raymond.SafeString("<i>x</i>"), b["content"])
}
