package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopcore/identity/internal/common"
	"github.com/shopcore/identity/internal/dbx"
)

const selectColumns = `id, email, password_hash, name, phone_number, address, avatar_url, ` +
	`role, status, email_verification_token, reset_password_token, refresh_token, created_at, updated_at`

// PostgresStore implements Store over a pooled *sql.DB. All SQL is built from
// the fixed column map in columns.go; values only ever travel as $n
// parameters.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*Account, error) {
	var (
		acc                          Account
		name, phone, address, avatar sql.NullString
		verification, reset, refresh sql.NullString
	)

	err := row.Scan(
		&acc.ID, &acc.Email, &acc.PasswordHash,
		&name, &phone, &address, &avatar,
		&acc.Role, &acc.Status,
		&verification, &reset, &refresh,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	acc.Name = name.String
	acc.PhoneNumber = phone.String
	acc.Address = address.String
	acc.AvatarURL = avatar.String
	acc.EmailVerificationToken = nullable(verification)
	acc.ResetPasswordToken = nullable(reset)
	acc.RefreshToken = nullable(refresh)

	return &acc, nil
}

func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// sortedFields returns the map's keys in a fixed order so the generated SQL
// is deterministic regardless of map iteration order.
func sortedFields(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// buildWhere translates a logical filter into a WHERE clause with $n
// placeholders, rejecting any field not in the column map.
func buildWhere(filter map[string]any) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	names := sortedFields(filter)
	conds := make([]string, 0, len(names))
	args := make([]any, 0, len(names))

	for i, f := range names {
		col, err := columnFor(f)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, filter[f])
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (s *PostgresStore) FindByField(ctx context.Context, field string, value any) (*Account, error) {
	col, err := columnFor(field)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, selectColumns, col)

	acc, err := scanAccount(s.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return acc, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Account, error) {
	return s.FindByField(ctx, "ID", id)
}

func (s *PostgresStore) FindMany(ctx context.Context, filter map[string]any, page *Page) ([]*Account, int, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, 0, err
	}

	countQuery := `SELECT count(*) FROM users` + where

	listQuery := `SELECT ` + selectColumns + ` FROM users` + where + ` ORDER BY created_at, id`
	listArgs := args
	if page != nil {
		listQuery += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		listArgs = append(append([]any{}, args...), page.Limit, page.Offset)
	}

	var (
		out   []*Account
		total int
	)

	// Count and rows run in one read-only transaction so the total stays
	// consistent with the page.
	err = dbx.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx dbx.DBTX) error {
		if err := tx.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		rows, err := tx.QueryContext(ctx, listQuery, listArgs...)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			acc, err := scanAccount(rows)
			if err != nil {
				return fmt.Errorf("db error: %w", err)
			}
			out = append(out, acc)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (s *PostgresStore) Insert(ctx context.Context, fields map[string]any) (*Account, error) {
	merged := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		merged[k] = v
	}
	if _, ok := merged["Status"]; !ok {
		merged["Status"] = StatusPendingVerification
	}
	if _, ok := merged["Role"]; !ok {
		merged["Role"] = RoleUser
	}

	names := sortedFields(merged)
	cols := make([]string, 0, len(names))
	placeholders := make([]string, 0, len(names))
	args := make([]any, 0, len(names))

	for i, f := range names {
		col, err := columnFor(f)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, merged[f])
	}

	query := fmt.Sprintf(`INSERT INTO users (%s) VALUES (%s) RETURNING %s`,
		strings.Join(cols, ", "), strings.Join(placeholders, ", "), selectColumns)

	acc, err := scanAccount(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return acc, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, fields map[string]any) (*Account, error) {
	if len(fields) == 0 {
		return s.FindByID(ctx, id)
	}

	names := sortedFields(fields)
	sets := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)

	for i, f := range names {
		col, err := columnFor(f)
		if err != nil {
			return nil, err
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, fields[f])
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(names)+1, selectColumns)

	acc, err := scanAccount(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return acc, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(`DELETE FROM users WHERE id = $1 RETURNING %s`, selectColumns)

	acc, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return acc, nil
}
