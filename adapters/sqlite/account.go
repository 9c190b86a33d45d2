package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lborres/vitals/core"
)

const accountColumns = `id, username, email, password_hash, role, first_name, last_name, date_of_birth,
	allergies, current_medications, assigned_patients, created_at, updated_at`

// CreateAccount inserts one account. A taken id, username or email reports
// ErrAccountExists.
func (s *Store) CreateAccount(ctx context.Context, a *core.Account) error {
	lists, err := encodeAccountLists(a)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Username, a.Email, a.PasswordHash, a.Role.String(),
		a.Profile.FirstName, a.Profile.LastName, nullMillis(a.Profile.DateOfBirth),
		lists[0], lists[1], lists[2],
		toMillis(a.CreatedAt), toMillis(a.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAccountExists
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (*core.Account, error) {
	return s.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*core.Account, error) {
	return s.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
}

func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*core.Account, error) {
	return s.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
}

func (s *Store) getAccount(ctx context.Context, query, arg string) (*core.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *Store) ListAccountsByRole(ctx context.Context, role core.Role) ([]*core.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE role = ? ORDER BY created_at, rowid`, role.String())
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*core.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

func (s *Store) UpdateAccount(ctx context.Context, a *core.Account) error {
	lists, err := encodeAccountLists(a)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET username = ?, email = ?, password_hash = ?, first_name = ?, last_name = ?,
		   date_of_birth = ?, allergies = ?, current_medications = ?, assigned_patients = ?, updated_at = ?
		 WHERE id = ?`,
		a.Username, a.Email, a.PasswordHash, a.Profile.FirstName, a.Profile.LastName,
		nullMillis(a.Profile.DateOfBirth), lists[0], lists[1], lists[2], toMillis(a.UpdatedAt), a.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAccountExists
		}
		return fmt.Errorf("update account: %w", err)
	}
	return requireAffected(res, core.ErrAccountNotFound)
}

// encodeAccountLists returns allergies, medications and assigned patients.
func encodeAccountLists(a *core.Account) ([3]string, error) {
	var out [3]string
	for i, list := range [][]string{a.Profile.Allergies, a.Profile.CurrentMedications, a.AssignedPatients} {
		raw, err := encodeList(list)
		if err != nil {
			return out, err
		}
		out[i] = raw
	}
	return out, nil
}

func scanAccount(row rowScanner) (*core.Account, error) {
	a := &core.Account{}
	var (
		role                             string
		dob                              sql.NullInt64
		allergies, medications, assigned string
		createdAt, updatedAt             int64
	)
	if err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &role,
		&a.Profile.FirstName, &a.Profile.LastName, &dob,
		&allergies, &medications, &assigned,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if a.Role, err = core.ParseRole(role); err != nil {
		return nil, fmt.Errorf("account %s has stored role %q: %w", a.ID, role, err)
	}
	if a.Profile.Allergies, err = decodeList(allergies); err != nil {
		return nil, err
	}
	if a.Profile.CurrentMedications, err = decodeList(medications); err != nil {
		return nil, err
	}
	if a.AssignedPatients, err = decodeList(assigned); err != nil {
		return nil, err
	}
	a.Profile.DateOfBirth = fromNullMillis(dob)
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return a, nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
