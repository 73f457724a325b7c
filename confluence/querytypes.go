package confluence

// SpacesQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-space/#api-spaces-get
type SpacesQuery struct {
	Keys   []string `url:"keys,omitempty,comma"`
	Type   string   `url:"type,omitempty"`   // "global" or "personal"; empty means both
	Status string   `url:"status,omitempty"` // current, archived
	Sort   string   `url:"sort,omitempty"`   // id, -id, key, -key, name, -name

	// Opaque pagination cursor, lifted out of the previous response's _links.next.
	Cursor string `url:"cursor,omitempty"`
	Limit  int    `url:"limit,omitempty"` // default 25, range 1-250
}

// ContentByIDQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-id-get
type ContentByIDQuery struct {
	ID     string   `url:"-"`
	Expand []string `url:"expand,omitempty,comma"`
}

// ContentSearchQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-get
type ContentSearchQuery struct {
	SpaceKey string   `url:"spaceKey"`
	Title    string   `url:"title"`
	Type     string   `url:"type,omitempty"`
	Expand   []string `url:"expand,omitempty,comma"`
	Limit    int      `url:"limit,omitempty"`
}
