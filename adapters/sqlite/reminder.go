package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lborres/vitals/core"
)

const reminderColumns = `id, owner_id, message, type, due_date, is_completed, created_at, updated_at`

func (s *Store) CreateReminder(ctx context.Context, r *core.Reminder) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (`+reminderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Owner, r.Message, r.Type, toMillis(r.DueDate), r.IsCompleted, toMillis(r.CreatedAt), toMillis(r.UpdatedAt),
	); err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

func (s *Store) GetReminderByID(ctx context.Context, id string) (*core.Reminder, error) {
	r, err := scanReminder(s.db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrReminderNotFound
		}
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return r, nil
}

func (s *Store) ListRemindersByOwner(ctx context.Context, ownerID string) ([]*core.Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE owner_id = ? ORDER BY due_date, rowid`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	reminders := []*core.Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminders: %w", err)
	}
	return reminders, nil
}

func (s *Store) UpdateReminder(ctx context.Context, r *core.Reminder) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET message = ?, type = ?, due_date = ?, is_completed = ?, updated_at = ? WHERE id = ?`,
		r.Message, r.Type, toMillis(r.DueDate), r.IsCompleted, toMillis(r.UpdatedAt), r.ID,
	)
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	return requireAffected(res, core.ErrReminderNotFound)
}

func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return requireAffected(res, core.ErrReminderNotFound)
}

func scanReminder(row rowScanner) (*core.Reminder, error) {
	r := &core.Reminder{}
	var dueDate, createdAt, updatedAt int64
	if err := row.Scan(&r.ID, &r.Owner, &r.Message, &r.Type, &dueDate, &r.IsCompleted, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	r.DueDate = fromMillis(dueDate)
	r.CreatedAt = fromMillis(createdAt)
	r.UpdatedAt = fromMillis(updatedAt)
	return r, nil
}
