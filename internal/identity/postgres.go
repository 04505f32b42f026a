package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (s *PGStore) CreateUser(ctx context.Context, name, passwordHash string, at time.Time) (User, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`insert into users(name, hashed_password, created_at) values($1,$2,$3) returning id`,
		name, passwordHash, at,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrConflict
		}
		return User{}, err
	}
	return User{ID: id, Name: name, PasswordHash: passwordHash, CreatedAt: at}, nil
}

func (s *PGStore) UserByName(ctx context.Context, name string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, hashed_password, created_at from users where name=$1`, name)
	return scanUser(row)
}

func (s *PGStore) UserByID(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, hashed_password, created_at from users where id=$1`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (s *PGStore) CreateToken(ctx context.Context, userID int64, value string, at time.Time) (Token, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`insert into tokens(user_id, value, created_at, is_active) values($1,$2,$3,true) returning id`,
		userID, value, at,
	).Scan(&id)
	if err != nil {
		return Token{}, err
	}
	return Token{ID: id, UserID: userID, Value: value, CreatedAt: at, Active: true}, nil
}

func (s *PGStore) TokenByValue(ctx context.Context, value string) (Token, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, user_id, value, created_at, is_active from tokens where value=$1`, value)
	var t Token
	if err := row.Scan(&t.ID, &t.UserID, &t.Value, &t.CreatedAt, &t.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Token{}, ErrNotFound
		}
		return Token{}, err
	}
	return t, nil
}

func (s *PGStore) DeactivateToken(ctx context.Context, value string) error {
	res, err := s.db.ExecContext(ctx,
		`update tokens set is_active=false where value=$1`, value)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
