// Package presenter wraps a rendered HTML fragment in a page template.
//
// Each owner may override the page with <root>/<owner>/template.html (handlebars
// syntax). Rendering is an ordered attempt chain where the first success wins: the
// owner override, then the built-in default, then a fixed literal. It never fails.
package presenter

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aymerick/raymond"

	"github.com/dollpublish/dollpublish/internal/document"
	"github.com/dollpublish/dollpublish/pkg/logger"
	"github.com/dollpublish/dollpublish/pkg/metrics"
)

// TemplateFile is the per-owner override file name.
const TemplateFile = "template.html"

// FailureText is returned when neither the override nor the default template renders.
const FailureText = "Template rendering failed"

// DefaultTemplate is the built-in page. Templates see the bindings title, author,
// content, description (only when set), metadata and path. content is already HTML
// and goes in with a triple stash.
const DefaultTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <link rel="stylesheet" href="https://cdn.simplecss.org/simple.min.css">
    <title>{{author}} - {{title}}</title>
    <meta name="author" content="{{author}}">
    {{#if description}}
    <meta name="description" content="{{description}}">
    {{/if}}
</head>
<body>
    <article>
        <header>
            <h1>{{title}}</h1>
        </header>
        <div class="content">
            {{{content}}}
        </div>
        <hr>
        <p class="author">By {{author}}</p>
    </article>
</body>
</html>`

type Presenter struct {
	root string
	def  *raymond.Template
}

// New builds a presenter reading overrides below root. defaultTmpl replaces the built-in
// default when non-empty; a default that fails to parse leaves only the literal tier.
func New(root string, defaultTmpl string) *Presenter {
	if defaultTmpl == "" {
		defaultTmpl = DefaultTemplate
	}
	def, err := raymond.Parse(defaultTmpl)
	if err != nil {
		logger.Errorf("default page template does not parse: %v", err)
		def = nil
	}
	return &Presenter{root: root, def: def}
}

// Bindings builds the template data for doc owned by owner.
func Bindings(fragment string, doc *document.Document, owner string) map[string]any {
	meta := doc.Metadata.Extra
	if meta == nil {
		meta = map[string]any{}
	}
	data := map[string]any{
		"title":    doc.Name,
		"author":   owner,
		"content":  raymond.SafeString(fragment),
		"metadata": meta,
		"path":     doc.Path,
	}
	if desc, ok := doc.Metadata.Description(); ok {
		data["description"] = desc
	}
	return data
}

// Render returns the full page for fragment.
func (p *Presenter) Render(fragment string, doc *document.Document, owner string) string {
	data := Bindings(fragment, doc, owner)

	if src, ok := p.override(owner); ok {
		out, err := execute(src, data)
		if err == nil {
			metrics.TemplateRenders.WithLabelValues("override").Inc()
			return out
		}
		logger.Debugf("template override for %s failed, using default: %v", owner, err)
	}

	if p.def != nil {
		out, err := p.def.Exec(data)
		if err == nil {
			metrics.TemplateRenders.WithLabelValues("default").Inc()
			return out
		}
		logger.Errorf("default page template failed: %v", err)
	}

	metrics.TemplateRenders.WithLabelValues("fallback").Inc()
	return FailureText
}

// override reads the owner's template; absence or an unreadable file means no override.
func (p *Presenter) override(owner string) (string, bool) {
	b, err := os.ReadFile(filepath.Join(p.root, owner, TemplateFile))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("reading template override for %s: %v", owner, err)
		}
		return "", false
	}
	return string(b), true
}

func execute(src string, data map[string]any) (string, error) {
	tpl, err := raymond.Parse(src)
	if err != nil {
		return "", err
	}
	return tpl.Exec(data)
}
