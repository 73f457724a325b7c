// Package document loads a Markdown file together with its front-matter and the images it
// references, and knows how to persist the page URL back into that front-matter.
package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/adrg/frontmatter"
	"github.com/mitchellh/go-homedir"
)

// URLKey is the front-matter key holding the address of the published page.
const URLKey = "confluence-url"

type Document struct {
	// Path of the file, with ~ expanded.
	Path string
	// Dir is where relative image paths are looked up first.
	Dir string
	// Raw holds the file untouched, front-matter included.
	Raw []byte
	// Body is Raw without its leading front-matter block, which is what gets rendered.
	Body []byte
	// Meta is the flat front-matter.  Empty, never nil, when the file has none or it doesn't
	// parse.
	Meta map[string]string
	// Images in order of appearance, duplicates included.
	Images []Image

	// MetaErr records why front-matter was ignored, if it was.
	MetaErr error
}

type Image struct {
	Alt   string
	Path  string
	Title string
}

// ![alt](path) or ![alt](path "title").  Anything with a colon in the path is a URL and
// stays remote.
var imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^:)\s]+)(?:\s+"([^"]*)")?\)`)

// Read loads the document at path.  A file that can't be read is an error, front-matter that
// can't be parsed is not.
func Read(path string) (*Document, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("document: unable to expand homedir: %w", err)
	}

	raw, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("document: couldn't read %s: %w", expanded, err)
	}

	doc := &Document{
		Path: expanded,
		Dir:  filepath.Dir(expanded),
		Raw:  raw,
	}
	doc.Meta, doc.Body, doc.MetaErr = ParseMeta(raw)
	doc.Images = ExtractImages(doc.Body)

	return doc, nil
}

// ParseMeta splits raw into the flat key/value view of its leading front-matter block and the
// Markdown after it.  Nested values are rendered with fmt.  On a parse error the map is empty,
// the block is still cut from the body, and the error is returned for the caller to log.
func ParseMeta(raw []byte) (map[string]string, []byte, error) {
	meta := map[string]string{}

	var matter map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(raw), &matter)
	if err != nil {
		return meta, withoutBlock(raw), fmt.Errorf("document: ignoring front-matter: %w", err)
	}

	for k, v := range matter {
		if v == nil {
			meta[k] = ""
			continue
		}
		meta[k] = fmt.Sprint(v)
	}
	return meta, body, nil
}

// withoutBlock drops a leading ---/--- block whatever its contents.
func withoutBlock(raw []byte) []byte {
	_, end, ok := leadingBlock(raw)
	if !ok {
		return raw
	}
	return raw[end+len(delimiter):]
}

// ExtractImages lists every local image reference in raw, in order.
func ExtractImages(raw []byte) []Image {
	var images []Image
	for _, m := range imagePattern.FindAllSubmatch(raw, -1) {
		images = append(images, Image{Alt: string(m[1]), Path: string(m[2]), Title: string(m[3])})
	}
	return images
}

// PageReference returns the page this document was last published to, if any.
func (d *Document) PageReference() (PageReference, bool) {
	return ReferenceFromMeta(d.Meta)
}
