package render

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	mdplugin "github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"
)

// PreviewHeader is written as front-matter above a page shown as Markdown.  It carries
// confluence-url, so a preview saved to disk can be published straight back.
type PreviewHeader struct {
	Title   string `yaml:"title"`
	Version int    `yaml:"version"`
	URL     string `yaml:"confluence-url"`
}

// ToMarkdown converts storage markup to GitHub flavoured Markdown.  Relative links are made
// absolute against base.
func ToMarkdown(storage string, base *url.URL) (string, error) {
	// md.NewConverter only takes a hostname, so the scheme has to be patched in here.
	opt := &md.Options{
		GetAbsoluteURL: func(selec *goquery.Selection, rawURL string, domain string) string {
			if domain == "" {
				return rawURL
			}

			u, err := url.Parse(rawURL)
			if err != nil {
				return rawURL
			}

			if u.Scheme == "data" {
				return rawURL
			}

			if u.Scheme == "" {
				u.Scheme = base.Scheme
			}
			if u.Host == "" {
				u.Host = domain
			}

			return u.String()
		},
	}

	converter := md.NewConverter(base.Host, true, opt)
	converter.Use(mdplugin.GitHubFlavored())

	markdown, err := converter.ConvertString(storage)
	if err != nil {
		return "", fmt.Errorf("render: failed to convert to Markdown: %w", err)
	}
	return markdown, nil
}

// Preview renders a whole page: header, then body as Markdown.
func Preview(header PreviewHeader, storage string, base *url.URL) (string, error) {
	markdown, err := ToMarkdown(storage, base)
	if err != nil {
		return "", err
	}

	yamlHeader, err := yaml.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("render: couldn't marshal header YAML: %w", err)
	}

	return fmt.Sprintf("---\n%s\n---\n%s\n", strings.TrimSpace(string(yamlHeader)), markdown), nil
}
