// Package persistence stores categories and subjects with the shared SQL
// connection, on PostgreSQL or SQLite.
package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/synapse/internal/taxonomy/domain"
	"github.com/google/uuid"
)

const categoryColumns = `id, user_id, slug, name, icon, color, created_at`

// CategoryRepository implements domain.CategoryRepository.
type CategoryRepository struct {
	conn database.Connection
}

var _ domain.CategoryRepository = (*CategoryRepository)(nil)

// NewCategoryRepository creates a repository on conn.
func NewCategoryRepository(conn database.Connection) *CategoryRepository {
	return &CategoryRepository{conn: conn}
}

func (r *CategoryRepository) db(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	d := r.conn.Driver()
	_, err := r.db(ctx).Exec(ctx, d.Rebind(`
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		c.ID(), c.UserID(), c.Slug(), c.Name(), c.Icon(), c.Color(), d.TimeArg(c.CreatedAt()),
	)
	if database.IsUniqueViolation(err) {
		return domain.ErrCategoryExists
	}
	if err != nil {
		return fmt.Errorf("insert category %s: %w", c.Slug(), err)
	}
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	row := r.db(ctx).QueryRow(ctx, r.conn.Driver().Rebind(`
		SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND id = ?`), userID, id)
	return scanCategory(row)
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, userID uuid.UUID, slug string) (*domain.Category, error) {
	row := r.db(ctx).QueryRow(ctx, r.conn.Driver().Rebind(`
		SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND slug = ?`), userID, slug)
	return scanCategory(row)
}

func (r *CategoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	rows, err := r.db(ctx).Query(ctx, r.conn.Driver().Rebind(`
		SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY name`), userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanCategory(row database.Row) (*domain.Category, error) {
	var (
		id, userID              uuid.UUID
		slug, name, icon, color string
		createdAt               database.Timestamp
	)
	err := row.Scan(&id, &userID, &slug, &name, &icon, &color, &createdAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return domain.RehydrateCategory(id, userID, slug, name, icon, color, createdAt.Time), nil
}
