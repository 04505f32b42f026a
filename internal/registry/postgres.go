package registry

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"givechain.org/internal/chain"
)

// PGStore implements Store using PostgreSQL. Ownership scoping is expressed
// as joins over the closure; every mutation runs in one transaction.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const pgForeignKeyViolation = "23503"

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

func (s *PGStore) CreateMethod(ctx context.Context, m PaymentMethod) (PaymentMethod, error) {
	err := s.db.QueryRowContext(ctx,
		`insert into payment_methods(user_id, type, private_key, created_at)
		 values($1,$2,$3,$4) returning id`,
		m.UserID, string(m.Type), m.Key.Reveal(), m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return PaymentMethod{}, err
	}
	return m, nil
}

func (s *PGStore) MethodsByUser(ctx context.Context, userID int64) ([]PaymentMethod, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, user_id, type, private_key, created_at
		 from payment_methods where user_id=$1 order by id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaymentMethod
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PGStore) MethodByID(ctx context.Context, userID, id int64) (PaymentMethod, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, user_id, type, private_key, created_at
		 from payment_methods where id=$1 and user_id=$2`, id, userID)
	m, err := scanMethod(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PaymentMethod{}, ErrNotFound
		}
		return PaymentMethod{}, err
	}
	return m, nil
}

func (s *PGStore) DeleteMethod(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`delete from payment_methods where id=$1 and user_id=$2`, id, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInUse
		}
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

func (s *PGStore) CreateFoundation(ctx context.Context, f Foundation) (Foundation, error) {
	err := s.db.QueryRowContext(ctx,
		`insert into foundations(name, description, payment_address, created_at)
		 values($1,$2,$3,$4) returning id`,
		f.Name, f.Description, f.PaymentAddress, f.CreatedAt,
	).Scan(&f.ID)
	if err != nil {
		return Foundation{}, err
	}
	return f, nil
}

func (s *PGStore) Foundations(ctx context.Context) ([]Foundation, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, name, description, payment_address, created_at
		 from foundations order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Foundation
	for rows.Next() {
		var f Foundation
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.PaymentAddress, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *PGStore) FoundationByID(ctx context.Context, id int64) (Foundation, error) {
	var f Foundation
	err := s.db.QueryRowContext(ctx,
		`select id, name, description, payment_address, created_at
		 from foundations where id=$1`, id).
		Scan(&f.ID, &f.Name, &f.Description, &f.PaymentAddress, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Foundation{}, ErrNotFound
	}
	if err != nil {
		return Foundation{}, err
	}
	return f, nil
}

func (s *PGStore) CreateRule(ctx context.Context, userID int64, r PaymentRule) (PaymentRule, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PaymentRule{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx,
		`select 1 from foundations where id=$1`, r.FoundationID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return PaymentRule{}, ErrFoundationNotFound
	}
	if err != nil {
		return PaymentRule{}, err
	}

	err = tx.QueryRowContext(ctx,
		`select 1 from payment_methods where id=$1 and user_id=$2`,
		r.PaymentMethodID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return PaymentRule{}, ErrPaymentMethodNotFound
	}
	if err != nil {
		return PaymentRule{}, err
	}

	err = tx.QueryRowContext(ctx,
		`insert into payment_rules(payment_method_id, foundation_id, amount, created_at)
		 values($1,$2,$3,$4) returning id`,
		r.PaymentMethodID, r.FoundationID, r.Amount, r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		return PaymentRule{}, err
	}
	if err := tx.Commit(); err != nil {
		return PaymentRule{}, err
	}
	return r, nil
}

func (s *PGStore) RulesByUser(ctx context.Context, userID int64) ([]PaymentRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`select r.id, r.payment_method_id, r.foundation_id, r.amount, r.created_at
		 from payment_rules r
		 join payment_methods m on m.id = r.payment_method_id
		 where m.user_id=$1 order by r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaymentRule
	for rows.Next() {
		var r PaymentRule
		if err := rows.Scan(&r.ID, &r.PaymentMethodID, &r.FoundationID, &r.Amount, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGStore) RuleByID(ctx context.Context, userID, id int64) (PaymentRule, error) {
	var r PaymentRule
	err := s.db.QueryRowContext(ctx,
		`select r.id, r.payment_method_id, r.foundation_id, r.amount, r.created_at
		 from payment_rules r
		 join payment_methods m on m.id = r.payment_method_id
		 where r.id=$1 and m.user_id=$2`, id, userID).
		Scan(&r.ID, &r.PaymentMethodID, &r.FoundationID, &r.Amount, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return PaymentRule{}, ErrNotFound
	}
	if err != nil {
		return PaymentRule{}, err
	}
	return r, nil
}

func (s *PGStore) DeleteRule(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`delete from payment_rules r using payment_methods m
		 where r.id=$1 and m.id = r.payment_method_id and m.user_id=$2`, id, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInUse
		}
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

func (s *PGStore) RuleOwner(ctx context.Context, ruleID int64) (int64, error) {
	var owner int64
	err := s.db.QueryRowContext(ctx,
		`select m.user_id
		 from payment_rules r
		 join payment_methods m on m.id = r.payment_method_id
		 where r.id=$1`, ruleID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return owner, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMethod(row rowScanner) (PaymentMethod, error) {
	var (
		m        PaymentMethod
		kind     string
		material string
	)
	if err := row.Scan(&m.ID, &m.UserID, &kind, &material, &m.CreatedAt); err != nil {
		return PaymentMethod{}, err
	}
	key, err := chain.ParsePrivateKey(material)
	if err != nil {
		return PaymentMethod{}, err
	}
	m.Type = MethodType(kind)
	m.Key = key
	return m, nil
}
