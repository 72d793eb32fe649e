package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
	"github.com/google/uuid"
)

const subjectColumns = `id, user_id, category_id, slug, name, color, created_at`

// SubjectRepository implements domain.SubjectRepository.
type SubjectRepository struct {
	conn database.Connection
}

var _ domain.SubjectRepository = (*SubjectRepository)(nil)

// NewSubjectRepository creates a repository on conn.
func NewSubjectRepository(conn database.Connection) *SubjectRepository {
	return &SubjectRepository{conn: conn}
}

func (r *SubjectRepository) db(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SubjectRepository) Create(ctx context.Context, s *domain.Subject) error {
	d := r.conn.Driver()
	_, err := r.db(ctx).Exec(ctx, d.Rebind(`
		INSERT INTO subjects (`+subjectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		s.ID(), s.UserID(), nullUUID(s.CategoryID()), s.Slug(), s.Name(), s.Color(), d.TimeArg(s.CreatedAt()),
	)
	if database.IsUniqueViolation(err) {
		return domain.ErrSubjectExists
	}
	if err != nil {
		return fmt.Errorf("insert subject %s: %w", s.Slug(), err)
	}
	return nil
}

func (r *SubjectRepository) FindBySlug(ctx context.Context, userID uuid.UUID, slug string) (*domain.Subject, error) {
	row := r.db(ctx).QueryRow(ctx, r.conn.Driver().Rebind(`
		SELECT `+subjectColumns+` FROM subjects WHERE user_id = ? AND slug = ?`), userID, slug)
	return scanSubject(row)
}

func (r *SubjectRepository) ListByUser(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) ([]*domain.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE user_id = ?`
	args := []any{userID}
	if categoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY name`

	rows, err := r.db(ctx).Query(ctx, r.conn.Driver().Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []*domain.Subject
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func scanSubject(row database.Row) (*domain.Subject, error) {
	var (
		id, userID        uuid.UUID
		categoryID        uuid.NullUUID
		slug, name, color string
		createdAt         database.Timestamp
	)
	err := row.Scan(&id, &userID, &categoryID, &slug, &name, &color, &createdAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan subject: %w", err)
	}
	return domain.RehydrateSubject(id, userID, uuidPtr(categoryID), slug, name, color, createdAt.Time), nil
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
