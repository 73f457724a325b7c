package confluence

import (
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"
)

// contentByIDEndpoint returns the (v1) API endpoint for one piece of content:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-id-get
func (a *API) contentByIDEndpoint(opts ContentByIDQuery) (*url.URL, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("confluence: please provide ID to get content by ID")
	}

	ep, err := a.resolveEndpoint(fmt.Sprintf("/wiki/rest/api/content/%s", url.PathEscape(opts.ID)))
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// contentSearchEndpoint returns the (v1) API endpoint to look up content by space and title:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-get
func (a *API) contentSearchEndpoint(opts ContentSearchQuery) (*url.URL, error) {
	if opts.SpaceKey == "" || opts.Title == "" {
		return nil, fmt.Errorf("confluence: please provide space key and title to search content")
	}

	ep, err := a.resolveEndpoint("/wiki/rest/api/content")
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// contentEndpoint is where new content gets POSTed.
func (a *API) contentEndpoint() (*url.URL, error) {
	return a.resolveEndpoint("/wiki/rest/api/content")
}

// attachmentEndpoint returns the (v1) endpoint to create or update attachments:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content---attachments/#api-wiki-rest-api-content-id-child-attachment-put
func (a *API) attachmentEndpoint(pageID string) (*url.URL, error) {
	if pageID == "" {
		return nil, fmt.Errorf("confluence: please provide page ID to attach to")
	}
	return a.resolveEndpoint(fmt.Sprintf("/wiki/rest/api/content/%s/child/attachment", url.PathEscape(pageID)))
}

// labelEndpoint returns the (v1) endpoint to add labels:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content-labels/#api-wiki-rest-api-content-id-label-post
func (a *API) labelEndpoint(pageID string) (*url.URL, error) {
	if pageID == "" {
		return nil, fmt.Errorf("confluence: please provide page ID to label")
	}
	return a.resolveEndpoint(fmt.Sprintf("/wiki/rest/api/content/%s/label", url.PathEscape(pageID)))
}

// getSpaceEndpoint returns the (v2) API endpoint to list spaces
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-space/#api-spaces-get
func (a *API) getSpaceEndpoint(opts SpacesQuery) (*url.URL, error) {
	ep, err := a.resolveEndpoint("/wiki/api/v2/spaces")
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getCurrentUserEndpoint returns the (v1) API endpoint to query current user
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-users/#api-wiki-rest-api-user-current-get
func (a *API) getCurrentUserEndpoint() (*url.URL, error) {
	return a.resolveEndpoint("/wiki/rest/api/user/current")
}

// Do a bit of error checking on endpoint format, and return it relative to the base URI.
func (a *API) resolveEndpoint(endpoint string) (*url.URL, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("confluence: failed to parse endpoint ref: %w", err)
	}

	return a.BaseURI.ResolveReference(ref), nil
}
