package document

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRead_FrontMatterAndImages(t *testing.T) {
	p := writeFile(t, "page.md", "---\nconfluence-url: https://acme.atlassian.net/wiki/spaces/DOCS/pages/123/Title\nowner: ops\n---\n# Title\n\n![one](img/a.png) ![two](b.png \"B\")\n![one](img/a.png)\n![remote](https://example.com/x.png)\n")

	doc, err := Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Dir != filepath.Dir(p) {
		t.Errorf("Dir = %q", doc.Dir)
	}
	if doc.Meta["owner"] != "ops" {
		t.Errorf("meta = %v", doc.Meta)
	}
	if !strings.HasPrefix(string(doc.Body), "# Title\n") {
		t.Errorf("body = %q, want it to start after the front-matter", doc.Body)
	}

	want := []Image{{"one", "img/a.png", ""}, {"two", "b.png", "B"}, {"one", "img/a.png", ""}}
	if len(doc.Images) != len(want) {
		t.Fatalf("images = %+v, want %+v", doc.Images, want)
	}
	for i := range want {
		if doc.Images[i] != want[i] {
			t.Errorf("images[%d] = %+v, want %+v", i, doc.Images[i], want[i])
		}
	}

	ref, ok := doc.PageReference()
	if !ok || ref.PageID != "123" || ref.Host != "https://acme.atlassian.net" {
		t.Errorf("ref = %+v, %v", ref, ok)
	}
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.md"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestRead_BadFrontMatterDegrades(t *testing.T) {
	p := writeFile(t, "bad.md", "---\n: invalid: yaml: {{{\n---\nBody\n")

	doc, err := Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(doc.Meta) != 0 {
		t.Errorf("meta = %v, want empty", doc.Meta)
	}
	if doc.MetaErr == nil {
		t.Errorf("expected MetaErr to be recorded")
	}
	if _, ok := doc.PageReference(); ok {
		t.Errorf("expected no page reference")
	}
	if string(doc.Body) != "Body\n" {
		t.Errorf("body = %q, the broken block should still be cut", doc.Body)
	}
}

func TestParseMeta(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantMeta map[string]string
		wantBody string
		wantErr  bool
	}{
		{"none", "# Hi\n", map[string]string{}, "# Hi\n", false},
		{"flat", "---\nowner: ops\n---\n# Hi\n", map[string]string{"owner": "ops"}, "# Hi\n", false},
		{"nested", "---\ntags: [a, b]\n---\n# Hi\n", map[string]string{"tags": "[a b]"}, "# Hi\n", false},
		{"empty block", "---\n---\n# Hi\n", map[string]string{}, "# Hi\n", false},
		{"broken yaml", "---\ntags: [oops\n---\n# Hi\n", map[string]string{}, "# Hi\n", true},
		{"unterminated", "---\nowner: ops\n# Hi\n", map[string]string{}, "---\nowner: ops\n# Hi\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := ParseMeta([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(meta, tt.wantMeta) {
				t.Errorf("meta = %v, want %v", meta, tt.wantMeta)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestRead_NoFrontMatter(t *testing.T) {
	p := writeFile(t, "plain.md", "# Plain\n")

	doc, err := Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Meta == nil || len(doc.Meta) != 0 {
		t.Errorf("meta = %#v, want empty map", doc.Meta)
	}
	if string(doc.Raw) != "# Plain\n" || string(doc.Body) != "# Plain\n" {
		t.Errorf("raw %q, body %q, want both unaltered", doc.Raw, doc.Body)
	}
}

func TestParsePageURL(t *testing.T) {
	tests := []struct {
		in     string
		want   PageReference
		wantOK bool
	}{
		{"https://h/wiki/spaces/X/pages/123", PageReference{"https://h", "123"}, true},
		{"https://acme.atlassian.net/wiki/spaces/DOCS/pages/456/My+Page", PageReference{"https://acme.atlassian.net", "456"}, true},
		{"http://localhost:8090/display/X/7", PageReference{"http://localhost:8090", "7"}, true},
		{"https://h/wiki/spaces/X/overview", PageReference{}, false},
		{"not a url", PageReference{}, false},
		{"", PageReference{}, false},
	}
	for _, tt := range tests {
		got, ok := ParsePageURL(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParsePageURL(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
