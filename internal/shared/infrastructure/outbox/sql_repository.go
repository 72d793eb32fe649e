package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database"
)

// SQLRepository stores messages in the outbox table of either backend.
type SQLRepository struct {
	conn database.Connection
	now  func() time.Time
}

// NewSQLRepository creates a repository on conn.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn, now: time.Now}
}

func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	return database.ExecutorFromContext(ctx, r.conn).Exec(ctx, r.conn.Driver().Rebind(query), args...)
}

// SaveBatch inserts msgs.
func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	d := r.conn.Driver()
	for _, msg := range msgs {
		_, err := r.exec(ctx, `
			INSERT INTO outbox (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			msg.EventID, msg.AggregateType, msg.AggregateID, msg.RoutingKey,
			string(msg.Payload), string(msg.Metadata), d.TimeArg(msg.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert outbox message %s: %w", msg.RoutingKey, err)
		}
	}
	return nil
}

// GetUnpublished returns due messages.
func (r *SQLRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	d := r.conn.Driver()
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, d.Rebind(`
		SELECT id, event_id, aggregate_type, aggregate_id, routing_key, payload, metadata,
		       created_at, next_retry_at, retry_count, last_error
		FROM outbox
		WHERE published_at IS NULL AND dead_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY id
		LIMIT ?`), d.TimeArg(r.now()), limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var (
			msg                  Message
			payload, metadata    string
			createdAt, nextRetry database.Timestamp
			lastError            *string
		)
		if err := rows.Scan(&msg.ID, &msg.EventID, &msg.AggregateType, &msg.AggregateID, &msg.RoutingKey,
			&payload, &metadata, &createdAt, &nextRetry, &msg.RetryCount, &lastError); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		msg.Payload = []byte(payload)
		msg.Metadata = []byte(metadata)
		msg.CreatedAt = createdAt.Time
		msg.NextRetryAt = nextRetry.Ptr()
		msg.LastError = lastError
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

// MarkPublished stamps the publish time.
func (r *SQLRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, `UPDATE outbox SET published_at = ? WHERE id = ?`,
		r.conn.Driver().TimeArg(r.now()), id)
	return err
}

// MarkFailed records a failed attempt and schedules the next one.
func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	_, err := r.exec(ctx, `
		UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?`, reason, r.conn.Driver().TimeArg(nextRetryAt), id)
	return err
}

// MarkDead parks a message permanently.
func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	_, err := r.exec(ctx, `
		UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, dead_at = ?
		WHERE id = ?`, reason, r.conn.Driver().TimeArg(r.now()), id)
	return err
}

// DeleteOld prunes published messages.
func (r *SQLRepository) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := r.exec(ctx, `DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		r.conn.Driver().TimeArg(r.now().Add(-olderThan)))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Counts reports backlog size.
func (r *SQLRepository) Counts(ctx context.Context) (pending, dead int64, err error) {
	err = database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN published_at IS NULL AND dead_at IS NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN dead_at IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM outbox`).Scan(&pending, &dead)
	return pending, dead, err
}
