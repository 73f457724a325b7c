package document

import (
	"regexp"
	"strings"
)

// PageReference points at a page on a Confluence host.
type PageReference struct {
	// Host is scheme://host, e.g. https://acme.atlassian.net
	Host   string
	PageID string
}

// A host prefix, anything, then the last numeric path segment.
var pageURLPattern = regexp.MustCompile(`(https?://[^/]+)/.*/(\d+)`)

// ParsePageURL picks host and page id out of a page link such as
// https://acme.atlassian.net/wiki/spaces/DOCS/pages/123/Title.  ok is false when the URL
// has no numeric path segment.
func ParsePageURL(s string) (ref PageReference, ok bool) {
	m := pageURLPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return PageReference{}, false
	}
	return PageReference{Host: m[1], PageID: m[2]}, true
}

// ReferenceFromMeta reads the confluence-url entry of a front-matter map.
func ReferenceFromMeta(meta map[string]string) (PageReference, bool) {
	v, ok := meta[URLKey]
	if !ok || v == "" {
		return PageReference{}, false
	}
	return ParsePageURL(v)
}
