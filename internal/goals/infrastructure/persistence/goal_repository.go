// Package persistence stores goals with the shared SQL connection.
package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/synapse/internal/goals/domain"
	"github.com/felixgeelhaar/synapse/internal/shared/contract"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const goalColumns = `id, user_id, title, emoji, target, progress, unit, period_type,
	period_start, is_active, created_at, updated_at`

// GoalRepository implements domain.Repository.
type GoalRepository struct {
	conn database.Connection
}

var _ domain.Repository = (*GoalRepository)(nil)

// NewGoalRepository creates a repository on conn.
func NewGoalRepository(conn database.Connection) *GoalRepository {
	return &GoalRepository{conn: conn}
}

func (r *GoalRepository) db(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *GoalRepository) Save(ctx context.Context, g *domain.Goal) error {
	d := r.conn.Driver()
	_, err := r.db(ctx).Exec(ctx, d.Rebind(`
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title        = excluded.title,
			emoji        = excluded.emoji,
			target       = excluded.target,
			progress     = excluded.progress,
			unit         = excluded.unit,
			period_type  = excluded.period_type,
			period_start = excluded.period_start,
			is_active    = excluded.is_active,
			updated_at   = excluded.updated_at`),
		g.ID(), g.UserID(), g.Title(), g.Emoji(), g.Target(), g.Progress(), g.Unit(),
		g.PeriodType().String(), d.TimeArg(g.PeriodStart()), g.IsActive(),
		d.TimeArg(g.CreatedAt()), d.TimeArg(g.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save goal: %w", err)
	}
	return nil
}

func (r *GoalRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Goal, error) {
	row := r.db(ctx).QueryRow(ctx, r.conn.Driver().Rebind(`
		SELECT `+goalColumns+` FROM goals WHERE user_id = ? AND id = ?`), userID, id)
	g, err := scanGoal(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return g, err
}

func (r *GoalRepository) List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = ?`
	args := []any{userID}
	if activeOnly {
		query += ` AND is_active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db(ctx).Query(ctx, r.conn.Driver().Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []*domain.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *GoalRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db(ctx).Exec(ctx, r.conn.Driver().Rebind(`
		DELETE FROM goals WHERE user_id = ? AND id = ?`), userID, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

func scanGoal(row database.Row) (*domain.Goal, error) {
	var (
		p                             domain.RehydrateGoalParams
		target, progress              int64
		periodType                    string
		periodStart, created, updated database.Timestamp
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Emoji, &target, &progress, &p.Unit,
		&periodType, &periodStart, &p.Active, &created, &updated); err != nil {
		if database.IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scan goal: %w", err)
	}
	p.Target = int(target)
	p.Progress = int(progress)
	p.PeriodType = contract.PeriodType(periodType)
	p.PeriodStart = periodStart.Time
	p.CreatedAt = created.Time
	p.UpdatedAt = updated.Time
	return domain.RehydrateGoal(p), nil
}
