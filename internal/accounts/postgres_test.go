package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/shopcore/identity/internal/common"
)

func newStoreWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresStore(db), mock, db
}

var accountColumns = []string{
	"id", "email", "password_hash", "name", "phone_number", "address", "avatar_url",
	"role", "status", "email_verification_token", "reset_password_token", "refresh_token",
	"created_at", "updated_at",
}

func accountRow(id, email string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(accountColumns).
		AddRow(id, email, "$2a$12$hash", "Alice", nil, nil, nil,
			RoleUser, StatusActive, nil, nil, nil, now, now)
}

func TestFindByField_Found(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`SELECT ` + selectColumns + ` FROM users WHERE email = $1`)
	mock.ExpectQuery(q).WithArgs("a@x.com").WillReturnRows(accountRow("u-1", "a@x.com"))

	got, err := store.FindByField(context.Background(), "Email", "a@x.com")
	if err != nil {
		t.Fatalf("FindByField error: %v", err)
	}
	if got.ID != "u-1" || got.Email != "a@x.com" || got.Name != "Alice" {
		t.Fatalf("unexpected account: %+v", got)
	}
	if got.EmailVerificationToken != nil {
		t.Fatalf("expected nil verification token, got %v", *got.EmailVerificationToken)
	}
}

func TestFindByField_NotFound(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM users WHERE reset_password_token = \$1`).
		WithArgs("tok").
		WillReturnError(sql.ErrNoRows)

	_, err := store.FindByField(context.Background(), "ResetPasswordToken", "tok")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByField_UnknownFieldRejected(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	_, err := store.FindByField(context.Background(), "email; DROP TABLE users", "x")
	if err == nil {
		t.Fatal("expected an error for an unmapped field name")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no SQL should have been issued: %v", err)
	}
}

func TestFindByField_DBError(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnError(errors.New("db down"))

	_, err := store.FindByField(context.Background(), "Email", "a@x.com")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestInsert_AppliesDefaults(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	// Columns appear in sorted logical-field order; Role and Status are
	// filled in because the caller omitted them.
	q := regexp.QuoteMeta(`INSERT INTO users (email, email_verification_token, name, password_hash, role, status) ` +
		`VALUES ($1, $2, $3, $4, $5, $6) RETURNING ` + selectColumns)

	rows := sqlmock.NewRows(accountColumns).
		AddRow("u-9", "a@x.com", "$2a$12$hash", "Alice", nil, nil, nil,
			RoleUser, StatusPendingVerification, "vtok", nil, nil, time.Now(), time.Now())

	mock.ExpectQuery(q).
		WithArgs("a@x.com", "vtok", "Alice", "$2a$12$hash", RoleUser, StatusPendingVerification).
		WillReturnRows(rows)

	got, err := store.Insert(context.Background(), map[string]any{
		"Email":                  "a@x.com",
		"PasswordHash":           "$2a$12$hash",
		"Name":                   "Alice",
		"EmailVerificationToken": "vtok",
	})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if got.Status != StatusPendingVerification || got.Role != RoleUser {
		t.Fatalf("defaults not applied: %+v", got)
	}
	if got.EmailVerificationToken == nil || *got.EmailVerificationToken != "vtok" {
		t.Fatalf("verification token not returned: %+v", got)
	}
}

func TestUpdate_PartialSetsOnlyGivenFields(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`UPDATE users SET email_verification_token = $1, status = $2, updated_at = now() ` +
		`WHERE id = $3 RETURNING ` + selectColumns)

	mock.ExpectQuery(q).
		WithArgs(nil, StatusActive, "u-1").
		WillReturnRows(accountRow("u-1", "a@x.com"))

	got, err := store.Update(context.Background(), "u-1", map[string]any{
		"Status":                 StatusActive,
		"EmailVerificationToken": nil,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Status != StatusActive {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestUpdate_EmptyFieldsIsAFetch(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`SELECT ` + selectColumns + ` FROM users WHERE id = $1`)
	mock.ExpectQuery(q).WithArgs("u-1").WillReturnRows(accountRow("u-1", "a@x.com"))

	got, err := store.Update(context.Background(), "u-1", map[string]any{})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.ID != "u-1" {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestUpdate_MissingRow(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE users SET`).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Update(context.Background(), "nope", map[string]any{"Name": "X"})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_ReturnsSnapshot(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`DELETE FROM users WHERE id = $1 RETURNING ` + selectColumns)
	mock.ExpectQuery(q).WithArgs("u-1").WillReturnRows(accountRow("u-1", "a@x.com"))

	got, err := store.Delete(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if got.ID != "u-1" || got.Email != "a@x.com" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestDelete_MissingRow(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`DELETE FROM users WHERE id = \$1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Delete(context.Background(), "nope")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindMany_PagedWithTotal(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	countQ := regexp.QuoteMeta(`SELECT count(*) FROM users WHERE role = $1`)
	listQ := regexp.QuoteMeta(`SELECT ` + selectColumns + ` FROM users WHERE role = $1 ` +
		`ORDER BY created_at, id LIMIT $2 OFFSET $3`)

	now := time.Now()
	rows := sqlmock.NewRows(accountColumns).
		AddRow("u-1", "s1@x.com", "h", nil, nil, nil, nil, RoleSeller, StatusActive, nil, nil, nil, now, now).
		AddRow("u-2", "s2@x.com", "h", nil, nil, nil, nil, RoleSeller, StatusActive, nil, nil, nil, now, now)

	mock.ExpectBegin()
	mock.ExpectQuery(countQ).WithArgs(RoleSeller).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(listQ).WithArgs(RoleSeller, 10, 0).WillReturnRows(rows)
	mock.ExpectCommit()

	got, total, err := store.FindMany(context.Background(),
		map[string]any{"Role": RoleSeller}, &Page{Limit: 10, Offset: 0})
	if err != nil {
		t.Fatalf("FindMany error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if total != 12 {
		t.Fatalf("expected total 12 independent of paging, got %d", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindMany_NoFilterNoPage(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	countQ := regexp.QuoteMeta(`SELECT count(*) FROM users`)
	listQ := regexp.QuoteMeta(`SELECT ` + selectColumns + ` FROM users ORDER BY created_at, id`)

	mock.ExpectBegin()
	mock.ExpectQuery(countQ).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(listQ).WillReturnRows(accountRow("u-1", "a@x.com"))
	mock.ExpectCommit()

	got, total, err := store.FindMany(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("FindMany error: %v", err)
	}
	if len(got) != 1 || total != 1 {
		t.Fatalf("unexpected result: %d rows, total %d", len(got), total)
	}
}

func TestFindMany_FilterConjunctionIsOrderIndependent(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	// Fields sort alphabetically, so Role lands before Status no matter how
	// the caller built the map.
	countQ := regexp.QuoteMeta(`SELECT count(*) FROM users WHERE role = $1 AND status = $2`)
	listQ := regexp.QuoteMeta(`SELECT ` + selectColumns + ` FROM users WHERE role = $1 AND status = $2 ` +
		`ORDER BY created_at, id`)

	mock.ExpectBegin()
	mock.ExpectQuery(countQ).WithArgs(RoleSeller, StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(listQ).WithArgs(RoleSeller, StatusActive).
		WillReturnRows(sqlmock.NewRows(accountColumns))
	mock.ExpectCommit()

	got, total, err := store.FindMany(context.Background(),
		map[string]any{"Status": StatusActive, "Role": RoleSeller}, nil)
	if err != nil {
		t.Fatalf("FindMany error: %v", err)
	}
	if len(got) != 0 || total != 0 {
		t.Fatalf("unexpected result: %d rows, total %d", len(got), total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindMany_UnknownFilterFieldRejected(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	_, _, err := store.FindMany(context.Background(), map[string]any{"Bogus": 1}, nil)
	if err == nil {
		t.Fatal("expected an error for an unmapped filter field")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no SQL should have been issued: %v", err)
	}
}

func TestColumnMap_Invertible(t *testing.T) {
	seen := make(map[string]string, len(columnForField))
	for field, col := range columnForField {
		if prev, dup := seen[col]; dup {
			t.Fatalf("column %q mapped from both %q and %q", col, prev, field)
		}
		seen[col] = field
	}
}
