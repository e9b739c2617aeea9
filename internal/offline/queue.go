// Package offline implements the durable local write queue. Mutations that
// cannot reach the remote store are stored here and replayed later; the queue
// is the sole durability mechanism while offline, so every entry survives
// process restart.
package offline

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MILO-debug/POS/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pending_writes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	action      TEXT NOT NULL,
	collection  TEXT NOT NULL,
	doc_id      TEXT NOT NULL DEFAULT '',
	payload     BLOB,
	enqueued_at INTEGER NOT NULL
);`

// Queue is a SQLite-backed FIFO of pending writes, keyed by an
// auto-incrementing id that fixes replay order.
type Queue struct {
	db *sql.DB
}

// Open opens (creating if needed) the queue database at path.
func Open(path string) (*Queue, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("offline queue path is required")
	}
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open offline queue: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping offline queue: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init offline queue schema: %w", err)
	}
	return &Queue{db: db}, nil
}

func (q *Queue) Close() error {
	if q == nil || q.db == nil {
		return nil
	}
	return q.db.Close()
}

// Enqueue durably stores w and assigns its queue id. It returns only once the
// row is committed; callers may treat the mutation as locally durable.
func (q *Queue) Enqueue(ctx context.Context, w *model.PendingWrite) error {
	if w.EnqueuedAt.IsZero() {
		w.EnqueuedAt = time.Now().UTC()
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO pending_writes (action, collection, doc_id, payload, enqueued_at) VALUES (?, ?, ?, ?, ?)`,
		w.Action, w.Collection, w.DocID, w.Payload, w.EnqueuedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("enqueue pending write: %w", err)
	}
	w.ID, err = res.LastInsertId()
	return err
}

// Pending returns all queued writes in enqueue order.
func (q *Queue) Pending(ctx context.Context) ([]model.PendingWrite, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, action, collection, doc_id, payload, enqueued_at FROM pending_writes ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PendingWrite
	for rows.Next() {
		var w model.PendingWrite
		var enqueuedAt int64
		if err := rows.Scan(&w.ID, &w.Action, &w.Collection, &w.DocID, &w.Payload, &enqueuedAt); err != nil {
			return nil, err
		}
		w.EnqueuedAt = time.UnixMilli(enqueuedAt).UTC()
		out = append(out, w)
	}
	return out, rows.Err()
}

// Remove deletes a replayed entry. Entries are removed only after the remote
// write succeeded.
func (q *Queue) Remove(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM pending_writes WHERE id = ?`, id)
	return err
}

// Depth returns the number of entries awaiting replay.
func (q *Queue) Depth(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_writes`).Scan(&n)
	return n, err
}
