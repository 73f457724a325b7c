package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// CreatePage creates a page titled title in spaceKey, underneath parentID.
func (api *API) CreatePage(ctx context.Context, spaceKey, title, markup, parentID string) (*Content, error) {
	ep, err := api.contentEndpoint()
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get content endpoint: %w", err)
	}

	page := Content{
		Type:     "page",
		Title:    title,
		Space:    &ContentSpace{Key: spaceKey},
		Body:     storageBody(markup),
		Metadata: editorV2(),
	}
	if parentID != "" {
		page.Ancestors = []Ancestor{{ID: parentID}}
	}

	created, err := api.sendContent(ctx, http.MethodPost, ep, page)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't create page %q: %w", title, err)
	}
	return created, nil
}

// UpdatePage replaces the body of pageID.  The current version is fetched first, because
// Confluence wants to be told the next version number.
func (api *API) UpdatePage(ctx context.Context, pageID, title, markup string, minorEdit bool) (*Content, error) {
	current, err := api.PageByID(ctx, pageID)
	if err != nil {
		return nil, err
	}

	next := 1
	if current.Version != nil {
		next = current.Version.Number + 1
	}

	ep, err := api.contentByIDEndpoint(ContentByIDQuery{ID: pageID})
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get content endpoint: %w", err)
	}

	page := Content{
		ID:      pageID,
		Type:    "page",
		Title:   title,
		Body:    storageBody(markup),
		Version: &Version{Number: next, MinorEdit: minorEdit},
	}

	updated, err := api.sendContent(ctx, http.MethodPut, ep, page)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't update page %s: %w", pageID, err)
	}
	return updated, nil
}

// AttachFile uploads the file at path as an attachment of pageID, replacing an existing
// attachment of the same name.
func (api *API) AttachFile(ctx context.Context, path, pageID string) (*Content, error) {
	ep, err := api.attachmentEndpoint(pageID)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get attachment endpoint: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't open attachment: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't build multipart body: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("confluence: couldn't read attachment %s: %w", path, err)
	}
	if err := mw.WriteField("minorEdit", "true"); err != nil {
		return nil, fmt.Errorf("confluence: couldn't build multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("confluence: couldn't build multipart body: %w", err)
	}

	body, err := api.request(ctx, http.MethodPut, ep, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't upload %s to page %s: %w", filepath.Base(path), pageID, err)
	}

	var list ContentList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}
	if len(list.Results) == 0 {
		return nil, fmt.Errorf("confluence: upload of %s returned no attachment", filepath.Base(path))
	}

	return &list.Results[0], nil
}

// SetPageLabel adds a global label to pageID.  Labels already present are left alone by
// Confluence.
func (api *API) SetPageLabel(ctx context.Context, pageID, label string) error {
	ep, err := api.labelEndpoint(pageID)
	if err != nil {
		return fmt.Errorf("confluence: couldn't get label endpoint: %w", err)
	}

	payload, err := json.Marshal([]Label{{Prefix: "global", Name: label}})
	if err != nil {
		return fmt.Errorf("confluence: couldn't encode label: %w", err)
	}

	if _, err := api.request(ctx, http.MethodPost, ep, bytes.NewReader(payload), "application/json"); err != nil {
		return fmt.Errorf("confluence: couldn't label page %s: %w", pageID, err)
	}
	return nil
}
