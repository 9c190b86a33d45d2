package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lborres/vitals/core"
)

const goalColumns = `id, owner_id, type, target, unit, start_date, end_date, is_achieved, created_at, updated_at`

func (s *Store) CreateGoal(ctx context.Context, g *core.Goal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Owner, g.Type, g.Target, g.Unit, toMillis(g.StartDate), nullMillis(g.EndDate),
		g.IsAchieved, toMillis(g.CreatedAt), toMillis(g.UpdatedAt),
	); err != nil {
		return fmt.Errorf("create goal: %w", err)
	}

	for _, entry := range g.Progress {
		if err := insertProgress(ctx, tx, g.ID, entry); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetGoalByID(ctx context.Context, id string) (*core.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrGoalNotFound
		}
		return nil, fmt.Errorf("get goal: %w", err)
	}

	if err := s.loadProgress(ctx, []*core.Goal{g},
		`SELECT goal_id, date, value FROM goal_progress WHERE goal_id = ? ORDER BY seq`, g.ID); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Store) ListGoalsByOwner(ctx context.Context, ownerID string) ([]*core.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE owner_id = ? ORDER BY created_at, rowid`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	goals := []*core.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	// release the single connection before the progress query
	rows.Close()

	if len(goals) == 0 {
		return goals, nil
	}
	if err := s.loadProgress(ctx, goals,
		`SELECT p.goal_id, p.date, p.value FROM goal_progress p
		 JOIN goals g ON g.id = p.goal_id
		 WHERE g.owner_id = ? ORDER BY p.seq`, ownerID); err != nil {
		return nil, err
	}
	return goals, nil
}

// loadProgress appends the rows of query (goal_id, date, value in seq order)
// to the matching goals.
func (s *Store) loadProgress(ctx context.Context, goals []*core.Goal, query string, args ...any) error {
	byID := make(map[string]*core.Goal, len(goals))
	for _, g := range goals {
		byID[g.ID] = g
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			goalID string
			date   int64
			value  float64
		)
		if err := rows.Scan(&goalID, &date, &value); err != nil {
			return fmt.Errorf("scan progress: %w", err)
		}
		if g, ok := byID[goalID]; ok {
			g.Progress = append(g.Progress, core.ProgressEntry{Date: fromMillis(date), Value: value})
		}
	}
	return rows.Err()
}

func (s *Store) AppendProgress(ctx context.Context, goalID string, entry core.ProgressEntry, achieved bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE goals SET is_achieved = ?, updated_at = ? WHERE id = ?`,
		achieved, toMillis(time.Now()), goalID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if err := requireAffected(res, core.ErrGoalNotFound); err != nil {
		return err
	}

	if err := insertProgress(ctx, tx, goalID, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func insertProgress(ctx context.Context, tx *sql.Tx, goalID string, entry core.ProgressEntry) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO goal_progress (goal_id, date, value) VALUES (?, ?, ?)`,
		goalID, toMillis(entry.Date), entry.Value); err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM goal_progress WHERE goal_id = ?`, id); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if err := requireAffected(res, core.ErrGoalNotFound); err != nil {
		return err
	}
	return tx.Commit()
}

func scanGoal(row rowScanner) (*core.Goal, error) {
	g := &core.Goal{Progress: []core.ProgressEntry{}}
	var (
		startDate, createdAt, updatedAt int64
		endDate                         sql.NullInt64
	)
	if err := row.Scan(
		&g.ID, &g.Owner, &g.Type, &g.Target, &g.Unit, &startDate, &endDate, &g.IsAchieved, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	g.StartDate = fromMillis(startDate)
	g.EndDate = fromNullMillis(endDate)
	g.CreatedAt = fromMillis(createdAt)
	g.UpdatedAt = fromMillis(updatedAt)
	return g, nil
}
