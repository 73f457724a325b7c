package publish

import (
	"context"
	"fmt"

	"github.com/toothbrush/md2confluence/document"
)

// UpdateExisting replaces the body of an existing page.  pageID may be empty, in which case
// the page the document declares in its front-matter is updated.  The page keeps its title.
func (p *Publisher) UpdateExisting(ctx context.Context, doc *document.Document, pageID string) (*Result, error) {
	rendered, err := p.render(doc)
	if err != nil {
		return nil, err
	}
	declared, hasDeclared := doc.PageReference()

	id := pageID
	if id == "" && hasDeclared {
		id = declared.PageID
	}
	if id == "" {
		return nil, configError("no page id available, pass one or publish with --add-meta first")
	}

	host := p.Host
	if host == "" && hasDeclared {
		host = declared.Host
	}
	if host == "" {
		return nil, configError("no url available, pass --url or add confluence-url to the front-matter")
	}

	p.log().Debug("updating page", "page", id, "host", host)

	sess, err := p.connect(ctx, host)
	if err != nil {
		return nil, err
	}

	body, err := p.resolver(sess).Resolve(ctx, rendered.Body, doc.Dir, doc.Images, id)
	if err != nil {
		return nil, fmt.Errorf("publish: couldn't attach images: %w", err)
	}
	body = p.rewriteIssues(ctx, sess, body, host)

	current, err := sess.Pages.PageByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("publish: couldn't fetch page %s: %w", id, err)
	}

	resp, err := sess.Pages.UpdatePage(ctx, id, current.Title, body, true)
	if err != nil {
		return nil, fmt.Errorf("publish: couldn't update page %s: %w", id, err)
	}

	res := result(Updated, id, resp)
	p.log().Info("updated page", "title", current.Title, "url", res.URL)

	if err := p.finish(ctx, sess, doc, res); err != nil {
		return res, err
	}
	return res, nil
}
