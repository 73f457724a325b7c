package publish

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration means the command lacks something it needs (title, parent, page id or
	// URL).  Nothing has been sent to Confluence yet when it is returned.
	ErrConfiguration = errors.New("publish: configuration error")

	// ErrConflict matches any *ConflictError.
	ErrConflict = errors.New("publish: conflict")
)

// ConflictError refuses to create a page that would clash with an existing one.
type ConflictError struct {
	Title string
	Space string
	// PageID is the page the document would have clobbered.
	PageID string
	// Declared is set when the clash comes from the document's own confluence-url rather
	// than from the title.
	Declared bool
}

func (e *ConflictError) Error() string {
	if e.Declared {
		return fmt.Sprintf("publish: document is already published as page %s, use --overwrite to replace that page", e.PageID)
	}
	return fmt.Sprintf("publish: a page titled %q already exists in space %s (id %s), use --overwrite to replace it", e.Title, e.Space, e.PageID)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func configError(msg string) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, msg)
}
