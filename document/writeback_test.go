package document

import (
	"os"
	"testing"
)

const pageURL = "https://acme.atlassian.net/wiki/spaces/DOCS/pages/123/Title"

func TestWithPageURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no front-matter",
			in:   "# Title\n",
			want: "---\nconfluence-url: " + pageURL + "\n---\n# Title\n",
		},
		{
			name: "existing block without url",
			in:   "---\nowner: ops\n---\n# Title\n",
			want: "---\nconfluence-url: " + pageURL + "\nowner: ops\n---\n# Title\n",
		},
		{
			name: "stale url replaced",
			in:   "---\nowner: ops\nconfluence-url: https://old/wiki/1\n---\n# Title\n",
			want: "---\nconfluence-url: " + pageURL + "\nowner: ops\n---\n# Title\n",
		},
		{
			name: "empty block",
			in:   "---\n---\nbody\n",
			want: "---\nconfluence-url: " + pageURL + "\n---\nbody\n",
		},
		{
			name: "unterminated block is left alone",
			in:   "---\nnot closed\n",
			want: "---\nconfluence-url: " + pageURL + "\n---\n---\nnot closed\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WithPageURL([]byte(tt.in), pageURL)
			if err != nil {
				t.Fatalf("WithPageURL: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestWriteBack_RoundTrip(t *testing.T) {
	p := writeFile(t, "page.md", "# Title\n")

	for i := 0; i < 2; i++ {
		if err := WriteBack(p, pageURL); err != nil {
			t.Fatalf("WriteBack: %v", err)
		}
	}

	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if want := "---\nconfluence-url: " + pageURL + "\n---\n# Title\n"; string(raw) != want {
		t.Errorf("file = %q, want %q", raw, want)
	}

	doc, err := Read(p)
	if err != nil {
		t.Fatal(err)
	}
	ref, ok := doc.PageReference()
	if !ok || ref.PageID != "123" {
		t.Errorf("ref = %+v, %v", ref, ok)
	}
}
