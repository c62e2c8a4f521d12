package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LockRepo implements ports.LockRepository. Lock rows exist only while the
// reservation is open; release and commit remove the row and the wallet log
// keeps the history.
type LockRepo struct {
	pool Pool
}

// NewLockRepo creates a new LockRepo.
func NewLockRepo(pool Pool) *LockRepo {
	return &LockRepo{pool: pool}
}

// Insert creates a lock row and returns the generated lock id.
func (r *LockRepo) Insert(ctx context.Context, tx pgx.Tx, lock *domain.Lock) (int64, error) {
	query := `INSERT INTO wallet_locks (uid, assetid, amount, type, reason, context)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING lockid`

	var lockID int64
	err := tx.QueryRow(ctx, query,
		lock.UID, lock.AssetID, lock.Amount, lock.Type, lock.Reason, lock.Context,
	).Scan(&lockID)
	if err != nil {
		return 0, fmt.Errorf("insert lock: %w", err)
	}
	return lockID, nil
}

// DeleteReturning removes a lock row and returns its final state. Returns
// nil, nil when the lock id does not exist; deleting and reading in one
// statement is what makes double release/commit race-safe.
func (r *LockRepo) DeleteReturning(ctx context.Context, tx pgx.Tx, lockID int64) (*domain.Lock, error) {
	query := `DELETE FROM wallet_locks WHERE lockid = $1
		RETURNING lockid, uid, assetid, amount, type, reason, context`

	l := &domain.Lock{}
	err := tx.QueryRow(ctx, query, lockID).Scan(
		&l.LockID, &l.UID, &l.AssetID, &l.Amount, &l.Type, &l.Reason, &l.Context,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete lock: %w", err)
	}
	return l, nil
}

// GetForUpdate fetches a lock row with a row lock held for the rest of the
// transaction. This MUST be called within a transaction. Returns nil, nil
// when absent.
func (r *LockRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, lockID int64) (*domain.Lock, error) {
	query := `SELECT lockid, uid, assetid, amount, type, reason, context
		FROM wallet_locks WHERE lockid = $1 FOR UPDATE`

	l := &domain.Lock{}
	err := tx.QueryRow(ctx, query, lockID).Scan(
		&l.LockID, &l.UID, &l.AssetID, &l.Amount, &l.Type, &l.Reason, &l.Context,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lock for update: %w", err)
	}
	return l, nil
}

// UpdateAmount sets a lock row's amount.
func (r *LockRepo) UpdateAmount(ctx context.Context, tx pgx.Tx, lockID int64, amount decimal.Decimal) error {
	query := `UPDATE wallet_locks SET amount = $2 WHERE lockid = $1`

	tag, err := tx.Exec(ctx, query, lockID, amount)
	if err != nil {
		return fmt.Errorf("update lock amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lock not found: %d", lockID)
	}
	return nil
}
