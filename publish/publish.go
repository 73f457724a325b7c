// Package publish decides whether a document becomes a new page, updates an existing one, or
// is refused, and carries the decision out.
package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/toothbrush/md2confluence/attachments"
	"github.com/toothbrush/md2confluence/confluence"
	"github.com/toothbrush/md2confluence/document"
	"github.com/toothbrush/md2confluence/issuelinks"
	"github.com/toothbrush/md2confluence/render"
)

// PageService is the part of the Confluence API publishing needs.  *confluence.API
// satisfies it.
type PageService interface {
	PageByID(ctx context.Context, pageID string) (*confluence.Content, error)
	CreatePage(ctx context.Context, spaceKey, title, markup, parentID string) (*confluence.Content, error)
	UpdatePage(ctx context.Context, pageID, title, markup string, minorEdit bool) (*confluence.Content, error)
	PageExists(ctx context.Context, spaceKey, title string) (bool, error)
	PageID(ctx context.Context, spaceKey, title string) (string, error)
	PageSpace(ctx context.Context, pageID string) (string, error)
	AttachFile(ctx context.Context, path, pageID string) (*confluence.Content, error)
	SetPageLabel(ctx context.Context, pageID, label string) error
}

// Session holds the clients for one host.  Issues may be nil when issue conversion is off.
type Session struct {
	Pages  PageService
	Issues issuelinks.Lookup
}

// Connector opens a session against host (scheme://host).
type Connector func(ctx context.Context, host string) (*Session, error)

type Options struct {
	// AddMeta writes the page URL back into the document's front-matter.
	AddMeta bool
	// InfoPanel prepends the "do not edit" banner.
	InfoPanel bool
	// Label, if set, is added to the page.
	Label string
	// ConvertIssues turns Jira references into rich links.
	ConvertIssues bool
}

type Publisher struct {
	// Host overrides whatever host the document declares.
	Host     string
	Connect  Connector
	Renderer *render.Renderer
	Options  Options
	Logger   *slog.Logger
	// Progress receives the attachment upload bar, if set.
	Progress io.Writer
}

type Action string

const (
	Created     Action = "created"
	Updated     Action = "updated"
	Overwritten Action = "overwritten"
)

type Result struct {
	Action Action
	PageID string
	URL    string
}

func (p *Publisher) log() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func (p *Publisher) render(doc *document.Document) (*render.Rendered, error) {
	r := p.Renderer
	if r == nil {
		r = render.New()
	}
	return r.Render(doc.Body, render.Options{InfoPanel: p.Options.InfoPanel, Source: doc.Path})
}

func (p *Publisher) connect(ctx context.Context, host string) (*Session, error) {
	if p.Connect == nil {
		return nil, configError("no way to connect to " + host)
	}
	sess, err := p.Connect(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("publish: couldn't connect to %s: %w", host, err)
	}
	return sess, nil
}

func (p *Publisher) resolver(sess *Session) *attachments.Resolver {
	return &attachments.Resolver{Uploader: sess.Pages, Logger: p.log(), Progress: p.Progress}
}

func (p *Publisher) rewriteIssues(ctx context.Context, sess *Session, body, host string) string {
	rw := &issuelinks.Rewriter{Lookup: sess.Issues, Logger: p.log()}
	return rw.Rewrite(ctx, body, host, p.Options.ConvertIssues)
}

// finish persists the page URL and applies the label, once the page itself is saved.
func (p *Publisher) finish(ctx context.Context, sess *Session, doc *document.Document, res *Result) error {
	if p.Options.AddMeta {
		if res.URL == "" {
			p.log().Warn("Confluence returned no page link, not updating front-matter", "page", res.PageID)
		} else {
			if err := document.WriteBack(doc.Path, res.URL); err != nil {
				return fmt.Errorf("publish: page saved but couldn't record its URL: %w", err)
			}
			p.log().Debug("recorded page URL in front-matter", "file", doc.Path)
		}
	}

	if p.Options.Label != "" {
		if err := sess.Pages.SetPageLabel(ctx, res.PageID, p.Options.Label); err != nil {
			return fmt.Errorf("publish: page saved but couldn't label it: %w", err)
		}
		p.log().Debug("labelled page", "page", res.PageID, "label", p.Options.Label)
	}

	return nil
}

func result(action Action, fallbackID string, resp *confluence.Content) *Result {
	res := &Result{Action: action, PageID: fallbackID}
	if resp != nil {
		if resp.ID != "" {
			res.PageID = resp.ID
		}
		res.URL = resp.Link()
	}
	return res
}
