package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/vitals/core"
)

const accountColumns = `id, username, email, password_hash, role, first_name, last_name, date_of_birth,
	allergies, current_medications, assigned_patients, created_at, updated_at`

func (a *Adapter) CreateAccount(ctx context.Context, acc *core.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := a.pool.Exec(ctx, query,
		acc.ID, acc.Username, acc.Email, acc.PasswordHash, acc.Role.String(),
		acc.Profile.FirstName, acc.Profile.LastName, acc.Profile.DateOfBirth,
		nonNil(acc.Profile.Allergies), nonNil(acc.Profile.CurrentMedications), nonNil(acc.AssignedPatients),
		acc.CreatedAt, acc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAccountExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (a *Adapter) GetAccountByID(ctx context.Context, id string) (*core.Account, error) {
	return a.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (a *Adapter) GetAccountByEmail(ctx context.Context, email string) (*core.Account, error) {
	return a.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

func (a *Adapter) GetAccountByUsername(ctx context.Context, username string) (*core.Account, error) {
	return a.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
}

func (a *Adapter) getAccount(ctx context.Context, query string, arg string) (*core.Account, error) {
	acc, err := scanAccount(a.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}

func (a *Adapter) ListAccountsByRole(ctx context.Context, role core.Role) ([]*core.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE role = $1 ORDER BY created_at, id`

	rows, err := a.pool.Query(ctx, query, role.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []*core.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

func (a *Adapter) UpdateAccount(ctx context.Context, acc *core.Account) error {
	query := `UPDATE accounts SET username = $1, email = $2, password_hash = $3, first_name = $4, last_name = $5,
	          date_of_birth = $6, allergies = $7, current_medications = $8, assigned_patients = $9, updated_at = $10
	          WHERE id = $11`

	tag, err := a.pool.Exec(ctx, query,
		acc.Username, acc.Email, acc.PasswordHash, acc.Profile.FirstName, acc.Profile.LastName,
		acc.Profile.DateOfBirth, nonNil(acc.Profile.Allergies), nonNil(acc.Profile.CurrentMedications),
		nonNil(acc.AssignedPatients), acc.UpdatedAt, acc.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAccountExists
		}
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}

func scanAccount(row rowScanner) (*core.Account, error) {
	acc := &core.Account{}
	var role string
	err := row.Scan(
		&acc.ID, &acc.Username, &acc.Email, &acc.PasswordHash, &role,
		&acc.Profile.FirstName, &acc.Profile.LastName, &acc.Profile.DateOfBirth,
		&acc.Profile.Allergies, &acc.Profile.CurrentMedications, &acc.AssignedPatients,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if acc.Role, err = core.ParseRole(role); err != nil {
		return nil, fmt.Errorf("account %s has stored role %q: %w", acc.ID, role, err)
	}
	return acc, nil
}
