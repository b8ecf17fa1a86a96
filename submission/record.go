package submission

import (
	"fmt"
	"time"
)

// Author identifies the user drafting a submission.
type Author struct {
	ID        int64
	Username  string
	FirstName string
}

// DisplayName returns the author's handle when present, else the given name.
func (a Author) DisplayName() string {
	if a.Username != "" {
		return a.Username
	}
	return a.FirstName
}

// Record is a completed draft awaiting a moderation decision. It lives in the
// store from draft completion until exactly one terminal decision is applied.
type Record struct {
	ID         string
	Title      string
	Body       string
	AuthorID   int64
	AuthorName string
}

// NewID builds a submission identifier from the author and completion time.
// Uniqueness relies on one author not completing two drafts within the same
// second; acceptable for this flow since a draft takes two messages to finish.
func NewID(authorID int64, at time.Time) string {
	return fmt.Sprintf("%d_%d", authorID, at.Unix())
}
