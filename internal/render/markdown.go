// Package render converts document markdown into an HTML fragment and expands
// attachment embed markers.
//
// Conversion is a single deterministic pass with no caching. Embed markers are matched
// on the rendered HTML, not the source: for each attachment name the literal text
// ![[<name>]] is replaced everywhere it occurs (exact, case-sensitive substring match).
package render

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/dollpublish/dollpublish/internal/document"
	"github.com/dollpublish/dollpublish/pkg/logger"
)

// Renderer is stateless after construction and safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.Footnote,
				extension.TaskList,
			),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// Markdown converts source into an HTML fragment. goldmark only fails on writer errors,
// which cannot happen with a bytes.Buffer, so an error yields an empty fragment.
func (r *Renderer) Markdown(source string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		logger.Errorf("markdown conversion failed: %v", err)
		return ""
	}
	return buf.String()
}

// Render converts doc.Content and expands embed markers for doc's attachments.
func (r *Renderer) Render(doc *document.Document) string {
	return ExpandEmbeds(r.Markdown(doc.Content), attachmentNames(doc.Attachments))
}

// ExpandEmbeds replaces every ![[name]] in fragment for each name in names.
func ExpandEmbeds(fragment string, names []string) string {
	for _, name := range names {
		marker := "![[" + name + "]]"
		if !strings.Contains(fragment, marker) {
			continue
		}
		fragment = strings.ReplaceAll(fragment, marker, EmbedMarkup(name))
	}
	return fragment
}

// EmbedMarkup returns the media element for an attachment, chosen by the MIME type
// guessed from its extension.
func EmbedMarkup(name string) string {
	src := html.EscapeString("attachments/" + url.PathEscape(name))
	label := html.EscapeString(name)
	class, mediaType := mediaClass(name)
	switch class {
	case "image":
		return fmt.Sprintf(`<img src="%s" />`, src)
	case "audio", "video":
		return fmt.Sprintf(`<%s controls><source src="%s" type="%s">%s</%s>`, class, src, html.EscapeString(mediaType), label, class)
	default:
		return fmt.Sprintf(`<a href="%s" download>%s</a>`, src, label)
	}
}

func attachmentNames(attachments map[string]string) []string {
	names := make([]string, 0, len(attachments))
	for name := range attachments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
