package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

// ErrNotFound is returned when Jira does not know the issue key (or we may not see it).
var ErrNotFound = errors.New("jira: issue not found")

// NewAPI prepares a client for the Jira instance at host, e.g. https://ORG.atlassian.net.
// Jira Cloud shares credentials with Confluence, so the same username and token apply.
func NewAPI(host string, username string, token string) (*API, error) {
	if host == "" {
		return nil, fmt.Errorf("jira: no Jira URL configured")
	}
	if token == "" {
		return nil, fmt.Errorf("jira: auth token is empty")
	}

	u, err := url.ParseRequestURI(host)
	if err != nil {
		return nil, fmt.Errorf("jira: couldn't parse REST API URL: %w", err)
	}
	u.Path = ""
	u.RawQuery = ""

	return &API{
		BaseURI:  u,
		Client:   &http.Client{},
		username: username,
		token:    token,
	}, nil
}

type API struct {
	BaseURI *url.URL

	// An HTTP client - you can substitute VCR or whatnot.
	Client *http.Client

	username, token string
}

// BrowseURL is the tracker root issue links point into, always with a trailing slash.
func (api *API) BrowseURL() string {
	return strings.TrimSuffix(api.BaseURI.String(), "/") + "/"
}

// IssueQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/jira/platform/rest/v2/api-group-issues/#api-rest-api-2-issue-issueidorkey-get
type IssueQuery struct {
	Fields []string `url:"fields,comma"`
}

// Issue fetches summary, status and type of one issue.
func (api *API) Issue(ctx context.Context, key string) (*Issue, error) {
	if key == "" {
		return nil, fmt.Errorf("jira: please provide issue key")
	}

	ref, err := url.Parse("/rest/api/2/issue/" + url.PathEscape(key))
	if err != nil {
		return nil, fmt.Errorf("jira: failed to parse endpoint ref: %w", err)
	}
	ep := api.BaseURI.ResolveReference(ref)

	v, err := query.Values(IssueQuery{Fields: []string{"summary", "status", "issuetype"}})
	if err != nil {
		return nil, fmt.Errorf("jira: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("jira: couldn't instantiate http request: %w", err)
	}
	req.Header.Add("Accept", "application/json")
	if api.username != "" {
		req.SetBasicAuth(api.username, api.token)
	} else {
		req.Header.Set("Authorization", "Bearer "+api.token)
	}

	response, err := api.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira: couldn't perform http request: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("jira: couldn't read http response body: %w", err)
	}

	switch response.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("jira: authentication failed")
	default:
		return nil, fmt.Errorf("jira: unexpected HTTP response status: %s", response.Status)
	}

	var issue Issue
	if err := json.Unmarshal(body, &issue); err != nil {
		return nil, fmt.Errorf("jira: couldn't parse json response: %w", err)
	}

	return &issue, nil
}
