package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/vitals/core"
)

const reminderColumns = `id, owner_id, message, type, due_date, is_completed, created_at, updated_at`

func (a *Adapter) CreateReminder(ctx context.Context, r *core.Reminder) error {
	query := `INSERT INTO reminders (` + reminderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := a.pool.Exec(ctx, query,
		r.ID, r.Owner, r.Message, r.Type, r.DueDate, r.IsCompleted, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

func (a *Adapter) GetReminderByID(ctx context.Context, id string) (*core.Reminder, error) {
	r, err := scanReminder(a.pool.QueryRow(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrReminderNotFound
		}
		return nil, err
	}
	return r, nil
}

func (a *Adapter) ListRemindersByOwner(ctx context.Context, ownerID string) ([]*core.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE owner_id = $1 ORDER BY due_date, created_at, id`

	rows, err := a.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := []*core.Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return reminders, nil
}

func (a *Adapter) UpdateReminder(ctx context.Context, r *core.Reminder) error {
	tag, err := a.pool.Exec(ctx,
		`UPDATE reminders SET message = $1, type = $2, due_date = $3, is_completed = $4, updated_at = $5 WHERE id = $6`,
		r.Message, r.Type, r.DueDate, r.IsCompleted, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrReminderNotFound
	}
	return nil
}

func (a *Adapter) DeleteReminder(ctx context.Context, id string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrReminderNotFound
	}
	return nil
}

func scanReminder(row rowScanner) (*core.Reminder, error) {
	r := &core.Reminder{}
	err := row.Scan(&r.ID, &r.Owner, &r.Message, &r.Type, &r.DueDate, &r.IsCompleted, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}
