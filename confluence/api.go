package confluence

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ErrNotFound is returned whenever Confluence answers 404 for a page, space or attachment.
var ErrNotFound = errors.New("confluence: not found")

// NewAPI prepares a client for the Confluence instance living at host, e.g.
// https://ORG.atlassian.net.  Any path on host is ignored, endpoints always start at /wiki.
func NewAPI(host string, username string, token string) (*API, error) {
	if host == "" {
		return &API{}, fmt.Errorf("confluence: configure your Confluence URL with --url or a confluence-url header")
	}
	if username == "" {
		return &API{}, fmt.Errorf("confluence: configure your Confluence username with --auth-username")
	}
	if token == "" {
		return &API{}, fmt.Errorf("confluence: auth token is empty, please check --auth-token or --auth-token-cmd")
	}

	u, err := url.ParseRequestURI(host)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse REST API URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("confluence: URL %q needs a scheme and a host", host)
	}
	u.Path = ""
	u.RawQuery = ""

	a := &API{
		BaseURI:  u,
		token:    token,
		username: username,
	}
	a.Client = &http.Client{}

	return a, nil
}

type API struct {
	// Root of the Confluence instance, e.g. https://ORG.atlassian.net
	BaseURI *url.URL

	// An HTTP client - you can substitute VCR or whatnot.
	Client *http.Client

	// Auth info
	username, token string
}

// Host returns scheme://host of the instance, without trailing slash.
func (api *API) Host() string {
	return strings.TrimSuffix(api.BaseURI.String(), "/")
}
