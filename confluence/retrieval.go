package confluence

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// PageByID fetches one page, with its space and current version expanded.
func (api *API) PageByID(ctx context.Context, pageID string) (*Content, error) {
	page, err := api.getContent(ctx, ContentByIDQuery{
		ID:     pageID,
		Expand: []string{"space", "version"},
	})
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't fetch page %s: %w", pageID, err)
	}
	return page, nil
}

// PageBody fetches one page including its storage-format body.
func (api *API) PageBody(ctx context.Context, pageID string) (*Content, error) {
	page, err := api.getContent(ctx, ContentByIDQuery{
		ID:     pageID,
		Expand: []string{"space", "version", "body.storage"},
	})
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't fetch page %s: %w", pageID, err)
	}
	return page, nil
}

// PageSpace returns the key of the space the page lives in.
func (api *API) PageSpace(ctx context.Context, pageID string) (string, error) {
	page, err := api.PageByID(ctx, pageID)
	if err != nil {
		return "", err
	}
	if page.Space == nil || page.Space.Key == "" {
		return "", fmt.Errorf("confluence: page %s has no space in response", pageID)
	}
	return page.Space.Key, nil
}

// PageExists tells whether the space already holds a page with exactly this title.
func (api *API) PageExists(ctx context.Context, spaceKey, title string) (bool, error) {
	page, err := api.findPage(ctx, spaceKey, title)
	if err != nil {
		return false, err
	}
	return page != nil, nil
}

// PageID returns the id of the page titled title in spaceKey, or ErrNotFound.
func (api *API) PageID(ctx context.Context, spaceKey, title string) (string, error) {
	page, err := api.findPage(ctx, spaceKey, title)
	if err != nil {
		return "", err
	}
	if page == nil {
		return "", fmt.Errorf("%w: page %q in space %s", ErrNotFound, title, spaceKey)
	}
	return page.ID, nil
}

func (api *API) findPage(ctx context.Context, spaceKey, title string) (*Content, error) {
	list, err := api.searchContent(ctx, ContentSearchQuery{
		SpaceKey: spaceKey,
		Title:    title,
		Type:     "page",
		Limit:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't look up page %q in space %s: %w", title, spaceKey, err)
	}
	if len(list.Results) == 0 {
		return nil, nil
	}
	return &list.Results[0], nil
}

func (api *API) ListAllSpaces(ctx context.Context, includePersonal bool) (map[string]Space, error) {
	spaces := map[string]Space{}

	query := SpacesQuery{
		Limit: 25,
	}

	if !includePersonal {
		// The `type` parameter may be "global", "personal", or nothing at all for both.  Leaving
		// it empty gives us everything, so we only set this if we _do not_ want personal spaces.
		query.Type = "global"
	}

	for {
		allspaces, err := api.spacesPage(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't list spaces: %w", err)
		}

		for _, space := range allspaces.Results {
			space.Host = api.Host()
			spaces[space.Key] = space
		}

		if allspaces.Links.Next == "" {
			break
		}
		q, err := url.Parse(allspaces.Links.Next)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't parse _links.next: %w", err)
		}
		query.Cursor = q.Query().Get("cursor")
		if query.Cursor == "" {
			return nil, fmt.Errorf("confluence: expected parameter 'cursor' was empty")
		}
	}

	return spaces, nil
}

func (api *API) spacesPage(ctx context.Context, query SpacesQuery) (*AllSpaces, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return api.getSpaces(ctx, query)
}
