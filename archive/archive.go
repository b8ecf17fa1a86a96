// Package archive persists terminal moderation outcomes. The in-flight
// submission store is deliberately memory-only; the archive is the durable
// trace of what was published or rejected and by which author.
package archive

import (
	"context"
	"time"
)

// Status is a terminal moderation outcome.
type Status string

const (
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"
)

// Entry is one archived decision.
type Entry struct {
	ID         string    `db:"id"`
	Title      string    `db:"title"`
	Body       string    `db:"body"`
	AuthorID   int64     `db:"author_id"`
	AuthorName string    `db:"author_name"`
	Status     Status    `db:"status"`
	DecidedAt  time.Time `db:"decided_at"`
}

// Recorder stores archived decisions.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}
