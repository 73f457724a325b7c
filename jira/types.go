package jira

// Issue is the subset of https://developer.atlassian.com/cloud/jira/platform/rest/v2/api-group-issues/#api-rest-api-2-issue-issueidorkey-get
// we care about.
type Issue struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields struct {
		Summary   string    `json:"summary"`
		Status    Status    `json:"status"`
		IssueType IssueType `json:"issuetype"`
	} `json:"fields"`
}

type Status struct {
	Name string `json:"name"`
}

type IssueType struct {
	Name    string `json:"name"`
	IconURL string `json:"iconUrl"`
}
