package publish

import (
	"context"
	"fmt"

	"github.com/toothbrush/md2confluence/document"
)

// CreatePage publishes doc as a page titled title under parentID.  If a page of that title
// already exists in the parent's space, or the document already points at a page, the call
// fails with a *ConflictError unless overwrite is set, in which case that page is updated
// instead.  The existing title-matched page wins over the one the document declares.
func (p *Publisher) CreatePage(ctx context.Context, doc *document.Document, parentID, title string, overwrite bool) (*Result, error) {
	if title == "" {
		return nil, configError("no title given for the new page")
	}
	if parentID == "" {
		return nil, configError("no parent page id given for the new page")
	}

	declared, hasDeclared := doc.PageReference()

	host := p.Host
	if host == "" && hasDeclared {
		host = declared.Host
	}
	if host == "" {
		return nil, configError("no url available, pass --url")
	}

	sess, err := p.connect(ctx, host)
	if err != nil {
		return nil, err
	}

	space, err := sess.Pages.PageSpace(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("publish: couldn't find space of parent page %s: %w", parentID, err)
	}

	var titleID string
	exists, err := sess.Pages.PageExists(ctx, space, title)
	if err != nil {
		return nil, fmt.Errorf("publish: couldn't check for existing page: %w", err)
	}
	if exists {
		titleID, err = sess.Pages.PageID(ctx, space, title)
		if err != nil {
			return nil, fmt.Errorf("publish: couldn't look up existing page: %w", err)
		}
		if !overwrite {
			return nil, &ConflictError{Title: title, Space: space, PageID: titleID}
		}
	}

	if hasDeclared && !overwrite {
		return nil, &ConflictError{Title: title, Space: space, PageID: declared.PageID, Declared: true}
	}

	rendered, err := p.render(doc)
	if err != nil {
		return nil, err
	}
	body := p.rewriteIssues(ctx, sess, rendered.Body, host)

	reuse := titleID
	if reuse == "" && hasDeclared {
		reuse = declared.PageID
	}

	var res *Result
	if reuse != "" {
		p.log().Debug("overwriting existing page", "page", reuse, "title", title)

		body, err = p.resolver(sess).Resolve(ctx, body, doc.Dir, doc.Images, reuse)
		if err != nil {
			return nil, fmt.Errorf("publish: couldn't attach images: %w", err)
		}
		resp, err := sess.Pages.UpdatePage(ctx, reuse, title, body, true)
		if err != nil {
			return nil, fmt.Errorf("publish: couldn't update page %s: %w", reuse, err)
		}
		res = result(Overwritten, reuse, resp)
		p.log().Info("overwrote page", "title", title, "space", space, "url", res.URL)
	} else {
		resp, err := sess.Pages.CreatePage(ctx, space, title, body, parentID)
		if err != nil {
			return nil, fmt.Errorf("publish: couldn't create page %q: %w", title, err)
		}
		res = result(Created, "", resp)
		if res.PageID == "" {
			return nil, fmt.Errorf("publish: Confluence returned no id for new page %q", title)
		}

		// Attachments need a page to hang off, so images go in with a second save.
		if len(doc.Images) > 0 {
			body, err = p.resolver(sess).Resolve(ctx, body, doc.Dir, doc.Images, res.PageID)
			if err != nil {
				return res, fmt.Errorf("publish: page %s created but couldn't attach images: %w", res.PageID, err)
			}
			resp, err = sess.Pages.UpdatePage(ctx, res.PageID, title, body, true)
			if err != nil {
				return res, fmt.Errorf("publish: page %s created but couldn't embed images: %w", res.PageID, err)
			}
			if link := resp.Link(); link != "" {
				res.URL = link
			}
		}
		p.log().Info("created page", "title", title, "space", space, "url", res.URL)
	}

	if err := p.finish(ctx, sess, doc, res); err != nil {
		return res, err
	}
	return res, nil
}
