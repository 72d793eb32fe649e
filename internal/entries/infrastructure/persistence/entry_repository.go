// Package persistence stores entries with the shared SQL connection, on
// PostgreSQL or SQLite.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/synapse/internal/entries/domain"
	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const entryColumns = `id, user_id, category_id, subject_id, content, entry_type, status,
	metadata, tags, priority, start_date, due_date, created_at, updated_at`

// EntryRepository implements domain.Repository.
type EntryRepository struct {
	conn database.Connection
}

var _ domain.Repository = (*EntryRepository)(nil)

// NewEntryRepository creates a repository on conn.
func NewEntryRepository(conn database.Connection) *EntryRepository {
	return &EntryRepository{conn: conn}
}

func (r *EntryRepository) db(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *EntryRepository) Save(ctx context.Context, e *domain.Entry) error {
	metadata, err := json.Marshal(e.Metadata())
	if err != nil {
		return fmt.Errorf("encode entry metadata: %w", err)
	}
	tags, err := json.Marshal(e.Tags())
	if err != nil {
		return fmt.Errorf("encode entry tags: %w", err)
	}

	d := r.conn.Driver()
	_, err = r.db(ctx).Exec(ctx, d.Rebind(`
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			category_id = excluded.category_id,
			subject_id  = excluded.subject_id,
			content     = excluded.content,
			entry_type  = excluded.entry_type,
			status      = excluded.status,
			metadata    = excluded.metadata,
			tags        = excluded.tags,
			priority    = excluded.priority,
			start_date  = excluded.start_date,
			due_date    = excluded.due_date,
			updated_at  = excluded.updated_at`),
		e.ID(), e.UserID(), nullUUID(e.CategoryID()), nullUUID(e.SubjectID()),
		e.Content(), string(e.Type()), string(e.Status()),
		string(metadata), string(tags), string(e.Priority()),
		d.NullTimeArg(e.StartDate()), d.NullTimeArg(e.DueDate()),
		d.TimeArg(e.CreatedAt()), d.TimeArg(e.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

func (r *EntryRepository) SaveMetadata(ctx context.Context, e *domain.Entry) error {
	metadata, err := json.Marshal(e.Metadata())
	if err != nil {
		return fmt.Errorf("encode entry metadata: %w", err)
	}

	d := r.conn.Driver()
	res, err := r.db(ctx).Exec(ctx, d.Rebind(`
		UPDATE entries SET metadata = ?, updated_at = ? WHERE user_id = ? AND id = ?`),
		string(metadata), d.TimeArg(e.UpdatedAt()), e.UserID(), e.ID(),
	)
	if err != nil {
		return fmt.Errorf("update entry metadata: %w", err)
	}
	return requireAffected(res)
}

func (r *EntryRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Entry, error) {
	row := r.db(ctx).QueryRow(ctx, r.conn.Driver().Rebind(`
		SELECT `+entryColumns+` FROM entries WHERE user_id = ? AND id = ?`), userID, id)
	e, err := scanEntry(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return e, err
}

func (r *EntryRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Entry, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{f.UserID}
	)
	if len(f.Types) > 0 {
		where = append(where, "entry_type IN ("+database.Placeholders(len(f.Types))+")")
		for _, t := range f.Types {
			args = append(args, string(t))
		}
	}
	if len(f.Statuses) > 0 {
		where = append(where, "status IN ("+database.Placeholders(len(f.Statuses))+")")
		for _, s := range f.Statuses {
			args = append(args, string(s))
		}
	}
	if f.CategoryID != nil {
		where = append(where, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.SubjectID != nil {
		where = append(where, "subject_id = ?")
		args = append(args, *f.SubjectID)
	}

	query := `SELECT ` + entryColumns + ` FROM entries WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db(ctx).Query(ctx, r.conn.Driver().Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *EntryRepository) Counts(ctx context.Context, userID uuid.UUID) ([]domain.Count, error) {
	rows, err := r.db(ctx).Query(ctx, r.conn.Driver().Rebind(`
		SELECT entry_type, status, COUNT(*) FROM entries
		WHERE user_id = ?
		GROUP BY entry_type, status
		ORDER BY entry_type, status`), userID)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	defer rows.Close()

	var counts []domain.Count
	for rows.Next() {
		var (
			entryType, status string
			total             int64
		)
		if err := rows.Scan(&entryType, &status, &total); err != nil {
			return nil, fmt.Errorf("scan entry count: %w", err)
		}
		counts = append(counts, domain.Count{
			Type:   contract.EntryType(entryType),
			Status: contract.Status(status),
			Total:  int(total),
		})
	}
	return counts, rows.Err()
}

func (r *EntryRepository) UserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db(ctx).Query(ctx, `SELECT DISTINCT user_id FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("list entry owners: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan entry owner: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *EntryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db(ctx).Exec(ctx, r.conn.Driver().Rebind(`
		DELETE FROM entries WHERE user_id = ? AND id = ?`), userID, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return requireAffected(res)
}

func scanEntry(row database.Row) (*domain.Entry, error) {
	var (
		p                                    domain.RehydrateEntryParams
		categoryID, subjectID                uuid.NullUUID
		entryType, status, priority          string
		metadata, tags                       string
		startDate, dueDate, created, updated database.Timestamp
	)
	if err := row.Scan(&p.ID, &p.UserID, &categoryID, &subjectID, &p.Content, &entryType, &status,
		&metadata, &tags, &priority, &startDate, &dueDate, &created, &updated); err != nil {
		if database.IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scan entry: %w", err)
	}

	if err := json.Unmarshal([]byte(metadata), &p.Metadata); err != nil {
		return nil, fmt.Errorf("decode entry metadata: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("decode entry tags: %w", err)
	}
	p.CategoryID = uuidPtr(categoryID)
	p.SubjectID = uuidPtr(subjectID)
	p.Type = contract.EntryType(entryType)
	p.Status = contract.Status(status)
	p.Priority = contract.Priority(priority)
	p.StartDate = startDate.Ptr()
	p.DueDate = dueDate.Ptr()
	p.CreatedAt = created.Time
	p.UpdatedAt = updated.Time
	return domain.RehydrateEntry(p), nil
}

func requireAffected(res database.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidPtr(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	v := id.UUID
	return &v
}
