// Package render turns Markdown into Confluence storage markup, and storage markup back into
// Markdown for previews.
package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

type Options struct {
	// InfoPanel prepends a "generated, do not edit" banner naming Source.
	InfoPanel bool
	Source    string
}

type Rendered struct {
	Body string
}

type Renderer struct {
	md goldmark.Markdown
}

func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Strikethrough,
				extension.Table,
				extension.Footnote,
			),
			goldmark.WithRendererOptions(
				// Raw HTML in the document is passed on, Confluence sanitises it anyway.
				gmhtml.WithUnsafe(),
				gmhtml.WithXHTML(),
			),
		),
	}
}

// Render converts source to storage markup.  source is plain Markdown: front-matter has to be
// cut beforehand, see document.ParseMeta.
func (r *Renderer) Render(source []byte, opts Options) (*Rendered, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("render: couldn't convert Markdown: %w", err)
	}

	body := FixCodeBlocks(buf.String())
	if opts.InfoPanel {
		body = InfoPanel(opts.Source) + body
	}

	return &Rendered{Body: body}, nil
}

var (
	preOpen  = regexp.MustCompile(`<pre>(?:<span></span>)?<code([^>]*)>`)
	preClose = regexp.MustCompile(`</code></pre>`)
)

// FixCodeBlocks unwraps <pre><code> into a bare <code> element, which is how Confluence
// wants to see code blocks.
func FixCodeBlocks(body string) string {
	body = preOpen.ReplaceAllString(body, "<code$1>")
	return preClose.ReplaceAllLiteralString(body, "</code>")
}

// InfoPanel is the banner warning readers that edits in Confluence will be overwritten.
func InfoPanel(source string) string {
	return fmt.Sprintf("<p><strong>Automatic content</strong> - Do not edit this page in Confluence.\n"+
		"Page automatically generated from: <code>%s</code></p><hr />\n", html.EscapeString(source))
}
