package confluence

// See https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-users/#api-wiki-rest-api-user-get
type User struct {
	Type        string `json:"type"`
	Username    string `json:"username"`
	UserKey     string `json:"userKey"`
	AccountID   string `json:"accountId"`
	AccountType string `json:"accountType"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// See https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-space/#api-spaces-get.
// Host is filled in by us, for convenience.
type Space struct {
	ID     string `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
	Host   string
}

// Content is the v1 representation of a page, used both as request and response body:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-post
//
// Attachments come back in the same shape, with Type "attachment".
type Content struct {
	ID        string         `json:"id,omitempty"`
	Type      string         `json:"type"`
	Status    string         `json:"status,omitempty"`
	Title     string         `json:"title"`
	Space     *ContentSpace  `json:"space,omitempty"`
	Version   *Version       `json:"version,omitempty"`
	Ancestors []Ancestor     `json:"ancestors,omitempty"`
	Body      *Body          `json:"body,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`

	Links *Links `json:"_links,omitempty"`
}

// Link is the browser URL of the content: _links.base + _links.webui.
func (c *Content) Link() string {
	if c == nil || c.Links == nil {
		return ""
	}
	return c.Links.Base + c.Links.WebUI
}

type ContentSpace struct {
	Key string `json:"key"`
}

type Ancestor struct {
	ID string `json:"id"`
}

type Links struct {
	Base   string `json:"base,omitempty"`
	WebUI  string `json:"webui,omitempty"`
	TinyUI string `json:"tinyui,omitempty"`
}

// Version defines the content version number
// the version number is used for updating content
type Version struct {
	Number    int    `json:"number"`
	MinorEdit bool   `json:"minorEdit"`
	Message   string `json:"message,omitempty"`
}

// Body holds the storage information
type Body struct {
	Storage Storage `json:"storage"`
}

// Storage defines the storage information
type Storage struct {
	Representation string `json:"representation"`
	Value          string `json:"value"`
}

// Label as accepted by the v1 label endpoint.
type Label struct {
	Prefix string `json:"prefix"`
	Name   string `json:"name"`
}

func storageBody(markup string) *Body {
	return &Body{Storage: Storage{Representation: "storage", Value: markup}}
}

// New pages are created for the fabric ("v2") editor, otherwise Confluence shows them in the
// legacy editor forever.
func editorV2() map[string]any {
	return map[string]any{
		"properties": map[string]any{
			"editor": map[string]any{"value": "v2"},
		},
	}
}
