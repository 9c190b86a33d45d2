package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/vitals/core"
)

const goalColumns = `id, owner_id, type, target, unit, start_date, end_date, is_achieved, created_at, updated_at`

func (a *Adapter) CreateGoal(ctx context.Context, g *core.Goal) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO goals (` + goalColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := tx.Exec(ctx, query,
		g.ID, g.Owner, g.Type, g.Target, g.Unit, g.StartDate, g.EndDate, g.IsAchieved, g.CreatedAt, g.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}

	for _, entry := range g.Progress {
		if err := insertProgress(ctx, tx, g.ID, entry); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (a *Adapter) GetGoalByID(ctx context.Context, id string) (*core.Goal, error) {
	g, err := scanGoal(a.pool.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrGoalNotFound
		}
		return nil, err
	}

	if err := a.loadProgress(ctx, map[string]*core.Goal{g.ID: g}); err != nil {
		return nil, err
	}
	return g, nil
}

func (a *Adapter) ListGoalsByOwner(ctx context.Context, ownerID string) ([]*core.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE owner_id = $1 ORDER BY created_at, id`

	rows, err := a.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []*core.Goal{}
	byID := make(map[string]*core.Goal)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
		byID[g.ID] = g
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(goals) == 0 {
		return goals, nil
	}
	if err := a.loadProgress(ctx, byID); err != nil {
		return nil, err
	}
	return goals, nil
}

// loadProgress fills Progress for every goal in byID, in insertion order.
func (a *Adapter) loadProgress(ctx context.Context, byID map[string]*core.Goal) error {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	rows, err := a.pool.Query(ctx,
		`SELECT goal_id, date, value FROM goal_progress WHERE goal_id = ANY($1) ORDER BY seq`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var goalID string
		var entry core.ProgressEntry
		if err := rows.Scan(&goalID, &entry.Date, &entry.Value); err != nil {
			return err
		}
		if g, ok := byID[goalID]; ok {
			g.Progress = append(g.Progress, entry)
		}
	}
	return rows.Err()
}

// AppendProgress updates the goal row first so concurrent appends to one goal
// serialize on its row lock.
func (a *Adapter) AppendProgress(ctx context.Context, goalID string, entry core.ProgressEntry, achieved bool) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE goals SET is_achieved = $1, updated_at = now() WHERE id = $2`, achieved, goalID)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrGoalNotFound
	}

	if err := insertProgress(ctx, tx, goalID, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertProgress(ctx context.Context, tx pgx.Tx, goalID string, entry core.ProgressEntry) error {
	_, err := tx.Exec(ctx, `INSERT INTO goal_progress (goal_id, date, value) VALUES ($1, $2, $3)`,
		goalID, entry.Date, entry.Value)
	if err != nil {
		return fmt.Errorf("failed to insert progress: %w", err)
	}
	return nil
}

func (a *Adapter) DeleteGoal(ctx context.Context, id string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrGoalNotFound
	}
	return nil
}

func scanGoal(row rowScanner) (*core.Goal, error) {
	g := &core.Goal{Progress: []core.ProgressEntry{}}
	err := row.Scan(
		&g.ID, &g.Owner, &g.Type, &g.Target, &g.Unit, &g.StartDate, &g.EndDate, &g.IsAchieved, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}
