package render

import (
	"strings"
	"testing"

	"github.com/dollpublish/dollpublish/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(content string, names ...string) *document.Document {
	d := &document.Document{Content: content}
	if len(names) > 0 {
		d.Attachments = map[string]string{}
		for _, n := range names {
			d.Attachments[n] = "AA=="
		}
	}
	return d
}

func TestMarkdownDialect(t *testing.T) {
	r := New()
	src := strings.Join([]string{
		"# Title",
		"",
		"Some *emphasis* and ~~gone~~ text.[^1]",
		"",
		"| a | b |",
		"|---|---|",
		"| 1 | 2 |",
		"",
		"- [x] done",
		"- [ ] todo",
		"",
		"[^1]: a footnote",
		"",
	}, "\n")
	out := r.Markdown(src)

	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<em>emphasis</em>")
	assert.Contains(t, out, "<del>gone</del>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, `type="checkbox"`)
	assert.Contains(t, out, "footnote")
}

func TestRenderIsDeterministic(t *testing.T) {
	r := New()
	d := doc("hello ![[a.png]] and ![[b.mp3]]", "a.png", "b.mp3")
	assert.Equal(t, r.Render(d), r.Render(d))
}

func TestNoMarkerIndependentOfAttachments(t *testing.T) {
	r := New()
	content := "# Post\n\nJust text, with a [link](https://example.com).\n"
	base := r.Render(doc(content))
	assert.Equal(t, base, r.Render(doc(content, "photo.png", "clip.mp3", "doc.pdf")))
}

func TestImageEmbed(t *testing.T) {
	out := New().Render(doc("![[photo.png]]", "photo.png"))
	assert.Contains(t, out, `<img src="attachments/photo.png" />`)
	assert.NotContains(t, out, "![[photo.png]]")
}

func TestAudioEmbed(t *testing.T) {
	out := New().Render(doc("![[clip.mp3]]", "clip.mp3"))
	assert.Contains(t, out, `<audio controls><source src="attachments/clip.mp3" type="audio/mpeg">clip.mp3</audio>`)
}

func TestVideoEmbed(t *testing.T) {
	out := New().Render(doc("![[movie.mp4]]", "movie.mp4"))
	assert.Contains(t, out, `<video controls><source src="attachments/movie.mp4" type="video/mp4">movie.mp4</video>`)
}

func TestDownloadLinkEmbed(t *testing.T) {
	out := New().Render(doc("![[doc.pdf]]", "doc.pdf"))
	assert.Contains(t, out, `<a href="attachments/doc.pdf" download>doc.pdf</a>`)
	for _, tag := range []string{"<img", "<audio", "<video"} {
		assert.NotContains(t, out, tag)
	}
}

func TestEveryOccurrenceReplaced(t *testing.T) {
	out := New().Render(doc("![[a.png]]\n\ntext ![[a.png]] and ![[b.png]] ![[c.png]]", "a.png", "b.png"))
	assert.Equal(t, 2, strings.Count(out, `<img src="attachments/a.png" />`))
	assert.Equal(t, 1, strings.Count(out, `<img src="attachments/b.png" />`))
	// no attachment named c.png, so its marker is left alone
	assert.Contains(t, out, "![[c.png]]")
}

func TestMarkerMatchIsCaseSensitive(t *testing.T) {
	out := New().Render(doc("![[Photo.PNG]]", "photo.png"))
	assert.Contains(t, out, "![[Photo.PNG]]")
	assert.NotContains(t, out, "<img")
}

func TestEmbedMarkupEscapesNames(t *testing.T) {
	got := EmbedMarkup(`my "file".bin`)
	require.True(t, strings.HasPrefix(got, `<a href="attachments/my%20%22file%22.bin" download>`), got)
	assert.Contains(t, got, "my &#34;file&#34;.bin</a>")
}

func TestTypeByFilename(t *testing.T) {
	assert.Equal(t, "image/png", TypeByFilename("x.PNG"))
	assert.Equal(t, "audio/mpeg", TypeByFilename("song.mp3"))
	assert.Equal(t, "video/webm", TypeByFilename("clip.webm"))
	assert.Equal(t, "application/pdf", TypeByFilename("paper.pdf"))
	assert.Equal(t, "application/octet-stream", TypeByFilename("README"))
	assert.Equal(t, "application/octet-stream", TypeByFilename("blob.unknownext"))
}
