package payments

import (
	"context"
	"database/sql"
	"errors"

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

func (s *PGStore) Create(ctx context.Context, p Payment) (Payment, error) {
	err := s.db.QueryRowContext(ctx,
		`insert into payments(payment_rule_id, transaction_hash, created_at)
		 values($1,$2,$3) returning id`,
		p.PaymentRuleID, p.TransactionHash, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Payment{}, ErrRuleNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (s *PGStore) ListByUser(ctx context.Context, userID int64) ([]Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`select p.id, p.payment_rule_id, p.transaction_hash, p.created_at
		 from payments p
		 join payment_rules r on r.id = p.payment_rule_id
		 join payment_methods m on m.id = r.payment_method_id
		 where m.user_id=$1
		 order by p.created_at, p.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Payment{}
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.PaymentRuleID, &p.TransactionHash, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
