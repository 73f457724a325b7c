package document

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

const delimiter = "---\n"

var urlLine = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(URLKey) + `:.*\n`)

// WriteBack records pageURL under confluence-url in the file's front-matter.  An existing
// leading block is edited in place (replacing a previous confluence-url line), otherwise a
// new block is prepended.  The file is rewritten as a whole.
func WriteBack(path, pageURL string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("document: couldn't read %s: %w", path, err)
	}

	out, err := WithPageURL(raw, pageURL)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("document: couldn't stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("document: couldn't write %s: %w", path, err)
	}
	return nil
}

// WithPageURL returns raw with its front-matter pointing at pageURL.
func WithPageURL(raw []byte, pageURL string) ([]byte, error) {
	line, err := yaml.Marshal(map[string]string{URLKey: pageURL})
	if err != nil {
		return nil, fmt.Errorf("document: couldn't encode %s: %w", URLKey, err)
	}

	start, end, ok := leadingBlock(raw)
	if !ok {
		var buf bytes.Buffer
		buf.WriteString(delimiter)
		buf.Write(line)
		buf.WriteString(delimiter)
		buf.Write(raw)
		return buf.Bytes(), nil
	}

	block := raw[start:end]
	if urlLine.Match(block) {
		block = urlLine.ReplaceAllLiteral(block, nil)
	}

	var buf bytes.Buffer
	buf.Write(raw[:start])
	buf.Write(line)
	buf.Write(block)
	buf.Write(raw[end:])
	return buf.Bytes(), nil
}

// leadingBlock finds the inside of a front-matter block that opens on the first line: raw[start:end]
// is everything between the two delimiter lines.
func leadingBlock(raw []byte) (start, end int, ok bool) {
	if !bytes.HasPrefix(raw, []byte(delimiter)) {
		return 0, 0, false
	}
	start = len(delimiter)
	rest := raw[start:]
	if bytes.HasPrefix(rest, []byte(delimiter)) {
		return start, start, true
	}
	i := bytes.Index(rest, []byte("\n"+delimiter))
	if i < 0 {
		return 0, 0, false
	}
	return start, start + i + 1, true
}
