package clmarkdown

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	InitMarkdown()
	m.Run()
}

func TestConvertMarkdownToHTML(t *testing.T) {
	html := string(ConvertMarkdownToHTML("## Titre\n\nUn paragraphe avec du **gras**."))

	assert.Contains(t, html, "<h2")
	assert.Contains(t, html, "Titre")
	assert.Contains(t, html, "<strong>gras</strong>")
}

func TestConvertMarkdownEmoji(t *testing.T) {
	html := string(ConvertMarkdownToHTML("On avance :rocket:"))
	assert.NotContains(t, html, ":rocket:")
}

func TestConvertMarkdownExternalLinks(t *testing.T) {
	html := string(ConvertMarkdownToHTML("[lien](https://example.com)"))

	assert.Contains(t, html, `target="_blank"`)
	assert.Contains(t, html, `rel="noopener noreferrer"`)
}

func TestMetaDescription(t *testing.T) {
	tests := []struct {
		name      string
		markdown  string
		maxLength int
		want      string
	}{
		{
			name:      "markdown décoré",
			markdown:  "## Titre\n\nDu **texte** en *markdown*.",
			maxLength: 160,
			want:      "Titre Du texte en markdown.",
		},
		{
			name:      "texte court inchangé",
			markdown:  "Bonjour",
			maxLength: 160,
			want:      "Bonjour",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MetaDescription(tt.markdown, tt.maxLength))
		})
	}
}

func TestMetaDescriptionTruncatesRunes(t *testing.T) {
	long := strings.Repeat("é", 300)
	got := MetaDescription(long, 160)

	assert.LessOrEqual(t, utf8.RuneCountInString(got), 160)
	assert.True(t, utf8.ValidString(got))
}
