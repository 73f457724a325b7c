package render

import (
	"net/url"
	"strings"
	"testing"

	"github.com/toothbrush/md2confluence/markup"
)

func TestRender_Extensions(t *testing.T) {
	src := []byte("# Title\n\n~~gone~~\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\nNote[^1].\n\n[^1]: footnote.\n")

	out, err := New().Render(src, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"<h1>Title</h1>", "<del>gone</del>", "<table>", "footnote"} {
		if !strings.Contains(out.Body, want) {
			t.Errorf("body lacks %q:\n%s", want, out.Body)
		}
	}
}

func TestRender_ImageTagsCanBeFound(t *testing.T) {
	out, err := New().Render([]byte("![a diagram](img/flow.png)\n\n![titled *alt*](x.png \"T\")\n"), Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, path := range []string{"img/flow.png", "x.png"} {
		if _, ok := markup.FindImageTag(out.Body, path); !ok {
			t.Errorf("no tag for %q in:\n%s", path, out.Body)
		}
	}
}

func TestRender_CodeBlocksAndInfoPanel(t *testing.T) {
	out, err := New().Render([]byte("```go\nfmt.Println(1)\n```\n"), Options{InfoPanel: true, Source: "docs/a&b.md"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out.Body, "<pre>") || strings.Contains(out.Body, "</pre>") {
		t.Errorf("pre not unwrapped:\n%s", out.Body)
	}
	if !strings.Contains(out.Body, `<code class="language-go">fmt.Println(1)`) {
		t.Errorf("code block missing:\n%s", out.Body)
	}
	if !strings.HasPrefix(out.Body, "<p><strong>Automatic content</strong>") {
		t.Errorf("info panel not prepended:\n%s", out.Body)
	}
	if !strings.Contains(out.Body, "<code>docs/a&amp;b.md</code>") {
		t.Errorf("source path not escaped:\n%s", out.Body)
	}
}

func TestFixCodeBlocks(t *testing.T) {
	tests := map[string]string{
		"<pre><code>x</code></pre>":                     "<code>x</code>",
		"<pre><span></span><code>x</code></pre>":        "<code>x</code>",
		`<pre><code class="language-sh">x</code></pre>`: `<code class="language-sh">x</code>`,
		"<p>no code</p>":                                "<p>no code</p>",
	}
	for in, want := range tests {
		if got := FixCodeBlocks(in); got != want {
			t.Errorf("FixCodeBlocks(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPreview(t *testing.T) {
	base, _ := url.Parse("https://acme.atlassian.net")
	out, err := Preview(PreviewHeader{Title: "T", Version: 2, URL: "https://acme.atlassian.net/wiki/x/1"},
		`<h1>Hello</h1><p>See <a href="/wiki/spaces/X">space</a>.</p>`, base)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.HasPrefix(out, "---\ntitle: T\nversion: 2\nconfluence-url: https://acme.atlassian.net/wiki/x/1\n---\n") {
		t.Errorf("header:\n%s", out)
	}
	if !strings.Contains(out, "# Hello") {
		t.Errorf("heading missing:\n%s", out)
	}
	if !strings.Contains(out, "(https://acme.atlassian.net/wiki/spaces/X)") {
		t.Errorf("link not absolute:\n%s", out)
	}
}
