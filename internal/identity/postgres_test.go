package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreCreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("insert into users").
		WithArgs("alice", "hash", at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	store := NewPGStore(db)
	user, err := store.CreateUser(context.Background(), "alice", "hash", at)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID != 7 || user.Name != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreTokenLifecycle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("insert into tokens").
		WithArgs(int64(7), "tok-value", at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery("select id, user_id, value, created_at, is_active from tokens").
		WithArgs("tok-value").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "value", "created_at", "is_active"}).
			AddRow(3, 7, "tok-value", at, true))
	mock.ExpectExec("update tokens set is_active=false").
		WithArgs("tok-value").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPGStore(db)
	ctx := context.Background()

	token, err := store.CreateToken(ctx, 7, "tok-value", at)
	if err != nil || token.ID != 3 || !token.Active {
		t.Fatalf("CreateToken: %+v err=%v", token, err)
	}

	got, err := store.TokenByValue(ctx, "tok-value")
	if err != nil || got.UserID != 7 {
		t.Fatalf("TokenByValue: %+v err=%v", got, err)
	}

	if err := store.DeactivateToken(ctx, "tok-value"); err != nil {
		t.Fatalf("DeactivateToken: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreNotFoundMapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select id, name, hashed_password, created_at from users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "hashed_password", "created_at"}))
	mock.ExpectExec("update tokens set is_active=false").
		WithArgs("ghost-token").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPGStore(db)
	if _, err := store.UserByName(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.DeactivateToken(context.Background(), "ghost-token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
