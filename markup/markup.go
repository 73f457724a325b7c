// Package markup patches rendered storage markup by plain string substitution.
package markup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/util"
)

// Replacer substitutes up to n occurrences of old in body (all of them when n < 0) and
// reports how many it replaced.
type Replacer interface {
	Replace(body, old, replacement string, n int) (string, int)
}

// Literal replaces every match.
type Literal struct{}

func (Literal) Replace(body, old, replacement string, n int) (string, int) {
	if old == "" {
		return body, 0
	}
	count := strings.Count(body, old)
	if n >= 0 && count > n {
		count = n
	}
	if count == 0 {
		return body, 0
	}
	return strings.Replace(body, old, replacement, count), count
}

// Prose only replaces matches in running text: not inside an attribute value, a link or a
// code element.
type Prose struct{}

func (Prose) Replace(body, old, replacement string, n int) (string, int) {
	if old == "" || n == 0 {
		return body, 0
	}

	var b strings.Builder
	done, from := 0, 0
	for n < 0 || done < n {
		i := strings.Index(body[from:], old)
		if i < 0 {
			break
		}
		i += from
		end := i + len(old)

		b.WriteString(body[from:i])
		if InProse(body, i) {
			b.WriteString(replacement)
			done++
		} else {
			b.WriteString(old)
		}
		from = end
	}
	if done == 0 {
		return body, 0
	}
	b.WriteString(body[from:])
	return b.String(), done
}

// InProse reports whether the text starting at body[i] is running text, as opposed to part of
// a quoted attribute, the text of a link or the content of a <code> element.
func InProse(body string, i int) bool {
	if i > 0 && body[i-1] == '"' {
		return false
	}
	return !within(body, i, "<a ", "</a>") && !within(body, i, "<code", "</code>")
}

// within reports whether the last openTag before i hasn't been closed yet.
func within(body string, i int, openTag, closeTag string) bool {
	k := strings.LastIndex(body[:i], openTag)
	return k >= 0 && !strings.Contains(body[k:i], closeTag)
}

func escape(s string) string {
	return string(util.EscapeHTML([]byte(s)))
}

// FindImageTag returns the first <img> element the renderer wrote for a local image at path,
// whatever its alt text and title.
func FindImageTag(body, path string) (string, bool) {
	src := string(util.EscapeHTML(util.URLEscape([]byte(path), true)))
	tag := regexp.MustCompile(`<img src="` + regexp.QuoteMeta(src) + `"[^>]*>`)
	m := tag.FindString(body)
	return m, m != ""
}

// AttachmentTag embeds an image attached to the page.
func AttachmentTag(filename string) string {
	return fmt.Sprintf(`<ac:image><ri:attachment ri:filename="%s" /></ac:image>`, escape(filename))
}

// IssueLink is the inline rendition of a Jira issue: icon, key, summary and status, linking
// to trackerURL/browse/KEY.  trackerURL must end in a slash.
func IssueLink(trackerURL, key, iconURL, summary, status string) string {
	return fmt.Sprintf(`<a href="%sbrowse/%s"><ac:image><ri:url ri:value="%s" /></ac:image> %s: %s [%s]</a>`,
		escape(trackerURL), escape(key), escape(iconURL), escape(key), escape(summary), escape(status))
}
