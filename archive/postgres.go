package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const insertEntry = `
	INSERT INTO submissions (id, title, body, author_id, author_name, status, decided_at)
	VALUES (:id, :title, :body, :author_id, :author_name, :status, :decided_at)
	ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, decided_at = EXCLUDED.decided_at`

// PostgresRecorder archives decisions into the submissions table.
type PostgresRecorder struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewPostgresRecorder wraps an open database handle.
func NewPostgresRecorder(db *sqlx.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db, now: time.Now}
}

// Record inserts one archived decision. The id upsert keeps a replayed
// archive write harmless.
func (r *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	if e.DecidedAt.IsZero() {
		e.DecidedAt = r.now().UTC()
	}
	if _, err := r.db.NamedExecContext(ctx, insertEntry, e); err != nil {
		return fmt.Errorf("archive insert %s: %w", e.ID, err)
	}
	return nil
}
