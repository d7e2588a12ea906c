package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/techasish/accountd/internal/common"
	"github.com/techasish/accountd/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRows(u *models.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "is_account_verified",
		"verify_otp", "verify_otp_expire_at", "reset_otp", "reset_otp_expire_at", "created_at",
	}).AddRow(
		u.ID, u.Name, u.Email, u.PasswordHash, u.IsAccountVerified,
		u.VerifyOTP, u.VerifyOTPExpireAt, u.ResetOTP, u.ResetOTPExpireAt, u.CreatedAt,
	)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*name,\s*email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+created_at\s*$`

	created := time.Now()
	rows := sqlmock.NewRows([]string{"created_at"}).AddRow(created)
	mock.ExpectQuery(q).
		WithArgs("u-1", "Alice", "a@x.com", "hash").
		WillReturnRows(rows)

	u := &models.User{ID: "u-1", Name: "Alice", Email: "a@x.com", PasswordHash: "hash"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "u-1" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("u-2", "Bob", "a@x.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{ID: "u-2", Name: "Bob", Email: "a@x.com", PasswordHash: "hash"})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("u-3", "Carol", "c@x.com", "hash").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{ID: "u-3", Name: "Carol", Email: "c@x.com", PasswordHash: "hash"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	want := &models.User{
		ID: "u-1", Name: "Alice", Email: "a@x.com", PasswordHash: "hash",
		VerifyOTP: "123456", VerifyOTPExpireAt: 42, CreatedAt: time.Now(),
	}
	mock.ExpectQuery(`SELECT\s+.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("a@x.com").
		WillReturnRows(userRows(want))

	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "u-1" || got.VerifyOTP != "123456" || got.VerifyOTPExpireAt != 42 {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("missing@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@x.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	want := &models.User{ID: "u-9", Name: "Dan", Email: "d@x.com", PasswordHash: "h", CreatedAt: time.Now()}
	mock.ExpectQuery(`SELECT\s+.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("u-9").
		WillReturnRows(userRows(want))

	got, err := repo.GetByID(context.Background(), "u-9")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Email != "d@x.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestSetVerifyOTP_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+verify_otp\s*=\s*\$2,\s*verify_otp_expire_at\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("u-1", "654321", int64(1000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetVerifyOTP(context.Background(), "u-1", "654321", 1000); err != nil {
		t.Fatalf("SetVerifyOTP error: %v", err)
	}
}

func TestMarkVerified_GuardsOnCode(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `UPDATE\s+users\s+SET\s+is_account_verified\s*=\s*TRUE,\s*verify_otp\s*=\s*'',\s*verify_otp_expire_at\s*=\s*0\s+WHERE\s+id\s*=\s*\$1\s+AND\s+verify_otp\s*=\s*\$2`

	mock.ExpectExec(q).
		WithArgs("u-1", "654321").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.MarkVerified(context.Background(), "u-1", "654321"); err != nil {
		t.Fatalf("MarkVerified error: %v", err)
	}

	// Code already consumed: zero rows matched.
	mock.ExpectExec(q).
		WithArgs("u-1", "654321").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.MarkVerified(context.Background(), "u-1", "654321")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound for consumed code, got %v", err)
	}
}

func TestUpdatePassword_GuardsOnCode(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2,\s*reset_otp\s*=\s*'',\s*reset_otp_expire_at\s*=\s*0\s+WHERE\s+id\s*=\s*\$1\s+AND\s+reset_otp\s*=\s*\$3`

	mock.ExpectExec(q).
		WithArgs("u-1", "new-hash", "111222").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.UpdatePassword(context.Background(), "u-1", "new-hash", "111222"); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}

	mock.ExpectExec(q).
		WithArgs("u-1", "new-hash", "111222").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdatePassword(context.Background(), "u-1", "new-hash", "111222")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound for consumed code, got %v", err)
	}
}

func TestSetResetOTP_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+reset_otp`).
		WithArgs("u-1", "999999", int64(5)).
		WillReturnError(errors.New("db down"))

	err := repo.SetResetOTP(context.Background(), "u-1", "999999", 5)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
