// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/account-bank/internal/domain"
	"github.com/go-petr/account-bank/pkg/dbpkg"
	"github.com/go-petr/account-bank/pkg/errorspkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns account RepoPGS scoped to the given transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns account RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		a     domain.Account
		score sql.NullInt64
	)

	err := row.Scan(
		&a.ID,
		&a.Number,
		&a.Balance,
		&a.Type,
		&score,
		&a.CreatedAt,
	)

	if score.Valid {
		a.BonusScore = &score.Int64
	}

	return a, err
}

const createQuery = `
INSERT INTO
    accounts (number, balance, type, bonus_score)
VALUES
    ($1, $2, $3, $4)
RETURNING id, number, balance, type, bonus_score, created_at
`

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var score sql.NullInt64
	if arg.BonusScore != nil {
		score = sql.NullInt64{Int64: *arg.BonusScore, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, createQuery, arg.Number, arg.Balance, arg.Type, score)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_number_key" {
				return a, domain.ErrAccountAlreadyExists
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getByNumberQuery = `
SELECT id, number, balance, type, bonus_score, created_at FROM accounts
WHERE number = $1
`

// GetByNumber returns the account with the given number.
func (r *RepoPGS) GetByNumber(ctx context.Context, number int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByNumberQuery, number)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const listByTypeQuery = `
SELECT id, number, balance, type, bonus_score, created_at FROM accounts
WHERE type = $1
ORDER BY id
`

// ListByType returns all accounts of the given type in insertion order.
func (r *RepoPGS) ListByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByTypeQuery, accountType)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var (
			a     domain.Account
			score sql.NullInt64
		)

		if err := rows.Scan(
			&a.ID,
			&a.Number,
			&a.Balance,
			&a.Type,
			&score,
			&a.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		if score.Valid {
			a.BonusScore = &score.Int64
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const updateQuery = `
UPDATE accounts
SET balance = $1, bonus_score = COALESCE($2, bonus_score)
WHERE number = $3
RETURNING id, number, balance, type, bonus_score, created_at
`

// Update persists new balance state for the account with the given number.
// The bonus score column is left untouched when arg.BonusScore is nil.
func (r *RepoPGS) Update(ctx context.Context, arg domain.UpdateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var score sql.NullInt64
	if arg.BonusScore != nil {
		score = sql.NullInt64{Int64: *arg.BonusScore, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, updateQuery, arg.Balance, score, arg.Number)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrInsufficientBalance
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

// Transfer applies both balance updates within a single database transaction.
func (r *RepoPGS) Transfer(ctx context.Context, from, to domain.UpdateAccountParams) (domain.Account, domain.Account, error) {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, domain.Account{}, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	txRepo := NewTxRepoPGS(tx)

	var fromAccount, toAccount domain.Account

	// To avoid deadlocks execute statements in consistent number order.
	if from.Number < to.Number {
		fromAccount, err = txRepo.Update(ctx, from)
		if err == nil {
			toAccount, err = txRepo.Update(ctx, to)
		}
	} else {
		toAccount, err = txRepo.Update(ctx, to)
		if err == nil {
			fromAccount, err = txRepo.Update(ctx, from)
		}
	}

	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, domain.Account{}, errorspkg.ErrInternal
	}

	return fromAccount, toAccount, nil
}

const deleteQuery = `
DELETE FROM accounts
WHERE number = $1
`

// Delete removes the account with the given number.
func (r *RepoPGS) Delete(ctx context.Context, number int64) error {
	_, err := r.db.ExecContext(ctx, deleteQuery, number)
	return err
}
