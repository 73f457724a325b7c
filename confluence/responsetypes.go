package confluence

// AllSpaces response type (v2)
type AllSpaces struct {
	Results []Space `json:"results"`

	Links struct {
		// Contains the relative URL for the next set of results, using a cursor query
		// parameter. This property will not be present if there is no additional data available.
		Next string `json:"next"`
	} `json:"_links"`
}

// ContentList is the envelope of v1 content searches and attachment uploads.
type ContentList struct {
	Results []Content `json:"results"`
	Size    int       `json:"size"`
}
