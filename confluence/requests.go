package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

func (api *API) getContent(ctx context.Context, opts ContentByIDQuery) (*Content, error) {
	ep, err := api.contentByIDEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get content endpoint: %w", err)
	}

	body, err := api.request(ctx, http.MethodGet, ep, nil, "")
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var content Content
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &content, nil
}

func (api *API) searchContent(ctx context.Context, opts ContentSearchQuery) (*ContentList, error) {
	ep, err := api.contentSearchEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get content search endpoint: %w", err)
	}

	body, err := api.request(ctx, http.MethodGet, ep, nil, "")
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var list ContentList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &list, nil
}

// sendContent POSTs or PUTs a Content document and decodes the answer.
func (api *API) sendContent(ctx context.Context, method string, ep *url.URL, content Content) (*Content, error) {
	payload, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode content: %w", err)
	}

	body, err := api.request(ctx, method, ep, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var result Content
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &result, nil
}

func (api *API) getSpaces(ctx context.Context, opts SpacesQuery) (*AllSpaces, error) {
	ep, err := api.getSpaceEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get spaces endpoint: %w", err)
	}

	body, err := api.request(ctx, http.MethodGet, ep, nil, "")
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var allSpaces AllSpaces

	if err := json.Unmarshal(body, &allSpaces); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &allSpaces, nil
}

// CurrentUser returns the user the API credentials belong to.
func (api *API) CurrentUser(ctx context.Context) (*User, error) {
	ep, err := api.getCurrentUserEndpoint()
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get current user endpoint: %w", err)
	}

	body, err := api.request(ctx, http.MethodGet, ep, nil, "")
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform http request: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &user, nil
}

// request performs one authenticated call.  An empty contentType means no request body.
func (api *API) request(ctx context.Context, method string, url *url.URL, payload io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't instantiate http request: %w", err)
	}

	req.Header.Add("Accept", "application/json, */*")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet {
		// Confluence refuses multipart and form posts without this.
		req.Header.Set("X-Atlassian-Token", "nocheck")
	}

	// if user & token are not set, do not add authorization header
	if api.username != "" && api.token != "" {
		req.SetBasicAuth(api.username, api.token)
	} else if api.token != "" {
		req.Header.Set("Authorization", "Bearer "+api.token)
	}

	response, err := api.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform http request: %w", err)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't read http response body: %w", err)
	}

	if err := response.Body.Close(); err != nil {
		return nil, fmt.Errorf("confluence: couldn't close response body: %w", err)
	}

	switch response.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusPartialContent, http.StatusNoContent, http.StatusResetContent:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, method, url.Path)
	case http.StatusBadRequest:
		return nil, fmt.Errorf("confluence: bad request: %s", errorMessage(body, response.Status))
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("confluence: authentication failed")
	case http.StatusForbidden:
		return nil, fmt.Errorf("confluence: permission denied: %s", errorMessage(body, response.Status))
	case http.StatusServiceUnavailable:
		return nil, fmt.Errorf("confluence: service is not available: %s", response.Status)
	case http.StatusInternalServerError:
		return nil, fmt.Errorf("confluence: internal server error: %s", response.Status)
	case http.StatusConflict:
		return nil, fmt.Errorf("confluence: conflict: %s", errorMessage(body, response.Status))
	}

	return nil, fmt.Errorf("confluence: unknown HTTP response status: %s: %s", response.Status, url.String())
}

// errorMessage digs the human readable message out of a v1 error body, if there is one.
func errorMessage(body []byte, fallback string) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Message == "" {
		return fallback
	}
	return e.Message
}
