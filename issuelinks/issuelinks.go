// Package issuelinks turns Jira references in rendered markup into rich links showing the
// issue's summary and status.
package issuelinks

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/toothbrush/md2confluence/jira"
	"github.com/toothbrush/md2confluence/markup"
)

// Lookup resolves an issue key.  *jira.API satisfies it.
type Lookup interface {
	Issue(ctx context.Context, key string) (*jira.Issue, error)
	// BrowseURL is the tracker root, with a trailing slash, that issue links point into.
	BrowseURL() string
}

// Reference is one occurrence of an issue in the body.
type Reference struct {
	// Span is the exact text that gets replaced.
	Span string
	Key  string
	// Domain is set for browse URLs, e.g. https://acme.atlassian.net.
	Domain string
}

var (
	keyPattern = regexp.MustCompile(`\[(\w[\w\d]*-\d+)\]`)
	urlPattern = regexp.MustCompile(`(https://[\w.-]+)/browse/(\w[\w\d]*-\d+)`)
)

// Find lists the references in body's running text (see markup.InProse).  Browse URLs
// pointing anywhere but hostURL come back separately and are never rewritten.
func Find(body, hostURL string) (actionable, foreign []Reference) {
	for _, m := range keyPattern.FindAllStringSubmatchIndex(body, -1) {
		if !markup.InProse(body, m[0]) {
			continue
		}
		actionable = append(actionable, Reference{Span: body[m[0]:m[1]], Key: body[m[2]:m[3]]})
	}
	for _, m := range urlPattern.FindAllStringSubmatchIndex(body, -1) {
		if !markup.InProse(body, m[0]) {
			continue
		}
		ref := Reference{Span: body[m[0]:m[1]], Domain: body[m[2]:m[3]], Key: body[m[4]:m[5]]}
		if hostURL != "" && strings.HasPrefix(hostURL, ref.Domain) {
			actionable = append(actionable, ref)
		} else {
			foreign = append(foreign, ref)
		}
	}
	return actionable, foreign
}

type Rewriter struct {
	Lookup Lookup
	// Replacer defaults to markup.Prose.
	Replacer markup.Replacer
	Logger   *slog.Logger
}

// Rewrite replaces every resolvable reference in body with a rich link.  When enabled is
// false nothing changes, but the user is told how many references could have been
// converted.  A reference that can't be looked up is logged and left as it was.
func (r *Rewriter) Rewrite(ctx context.Context, body, hostURL string, enabled bool) string {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	replacer := r.Replacer
	if replacer == nil {
		replacer = markup.Prose{}
	}

	actionable, foreign := Find(body, hostURL)
	for _, ref := range foreign {
		level := slog.LevelDebug
		if enabled {
			level = slog.LevelInfo
		}
		log.Log(ctx, level, "skipping issue link on another domain", "url", ref.Span, "host", hostURL)
	}

	if len(actionable) == 0 {
		return body
	}

	if !enabled {
		log.Info(fmt.Sprintf("Use --convert-jira to replace %d Jira link(s) (such as %s) with issue snippets - KEY: summary [status]",
			len(actionable), actionable[0].Key))
		return body
	}

	if r.Lookup == nil {
		log.Warn("no Jira client configured, leaving issue references alone", "count", len(actionable))
		return body
	}

	tracker := r.Lookup.BrowseURL()
	for _, ref := range actionable {
		issue, err := r.Lookup.Issue(ctx, ref.Key)
		if err != nil {
			log.Warn("couldn't look up issue", "key", ref.Key, "error", err)
			continue
		}
		if issue.Fields.Summary == "" {
			log.Warn("issue has no summary, leaving it alone", "key", ref.Key)
			continue
		}

		link := markup.IssueLink(tracker, ref.Key, issue.Fields.IssueType.IconURL, issue.Fields.Summary, issue.Fields.Status.Name)
		var n int
		body, n = replacer.Replace(body, ref.Span, link, -1)
		log.Debug("rewrote issue reference", "key", ref.Key, "occurrences", n)
	}

	return body
}
