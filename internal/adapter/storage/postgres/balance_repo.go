package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BalanceRepo implements ports.BalanceRepository. Every mutation is a single
// conditional UPDATE; the guard predicate lives in the WHERE clause so the
// check and the write are one atomic statement. A zero row count means the
// guard did not hold, never that the statement failed.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// Credit adds amount to total, creating the balance row on first credit.
// The upsert keeps concurrent first credits inside one statement; a losing
// insert lands on the conflict arm instead of erroring and aborting the
// surrounding transaction.
func (r *BalanceRepo) Credit(ctx context.Context, tx pgx.Tx, uid int64, assetID string, amount decimal.Decimal) error {
	query := `INSERT INTO wallet_balances (uid, assetid, total, locked) VALUES ($1, $2, $3, 0)
		ON CONFLICT (uid, assetid) DO UPDATE SET total = wallet_balances.total + EXCLUDED.total`

	_, err := tx.Exec(ctx, query, uid, assetID, amount)
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	return nil
}

// Debit subtracts amount from total, guarded by available funds.
func (r *BalanceRepo) Debit(ctx context.Context, tx pgx.Tx, uid int64, assetID string, amount decimal.Decimal) (bool, error) {
	query := `UPDATE wallet_balances SET total = total - $3
		WHERE uid = $1 AND assetid = $2 AND total - locked >= $3`

	tag, err := tx.Exec(ctx, query, uid, assetID, amount)
	if err != nil {
		return false, fmt.Errorf("debit balance: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AddLocked moves amount from available into locked, guarded by available
// funds.
func (r *BalanceRepo) AddLocked(ctx context.Context, tx pgx.Tx, uid int64, assetID string, amount decimal.Decimal) (bool, error) {
	query := `UPDATE wallet_balances SET locked = locked + $3
		WHERE uid = $1 AND assetid = $2 AND total - locked >= $3`

	tag, err := tx.Exec(ctx, query, uid, assetID, amount)
	if err != nil {
		return false, fmt.Errorf("add locked balance: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// LockAvailable reserves everything available by setting locked = total.
// The pre-update available amount is what got reserved, so the row is read
// FOR UPDATE in a subquery and its snapshot returned. ok=false means the
// row is absent or nothing was available.
func (r *BalanceRepo) LockAvailable(ctx context.Context, tx pgx.Tx, uid int64, assetID string) (decimal.Decimal, bool, error) {
	query := `UPDATE wallet_balances b SET locked = b.total
		FROM (
			SELECT uid, assetid, total - locked AS available
			FROM wallet_balances WHERE uid = $1 AND assetid = $2 FOR UPDATE
		) cur
		WHERE b.uid = cur.uid AND b.assetid = cur.assetid AND cur.available > 0
		RETURNING cur.available`

	var reserved decimal.Decimal
	err := tx.QueryRow(ctx, query, uid, assetID).Scan(&reserved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("lock available balance: %w", err)
	}
	return reserved, true, nil
}

// SubLocked returns amount from locked to available, guarded by locked >=
// amount so the row can never go negative.
func (r *BalanceRepo) SubLocked(ctx context.Context, tx pgx.Tx, uid int64, assetID string, amount decimal.Decimal) (bool, error) {
	query := `UPDATE wallet_balances SET locked = locked - $3
		WHERE uid = $1 AND assetid = $2 AND locked >= $3`

	tag, err := tx.Exec(ctx, query, uid, assetID, amount)
	if err != nil {
		return false, fmt.Errorf("sub locked balance: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CommitLocked undoes a reservation of lockAmount and permanently debits
// debitAmount in the same statement. debitAmount <= lockAmount is the
// caller's responsibility; the remainder implicitly returns to available.
func (r *BalanceRepo) CommitLocked(ctx context.Context, tx pgx.Tx, uid int64, assetID string, lockAmount, debitAmount decimal.Decimal) (bool, error) {
	query := `UPDATE wallet_balances SET locked = locked - $3, total = total - $4
		WHERE uid = $1 AND assetid = $2 AND locked >= $3`

	tag, err := tx.Exec(ctx, query, uid, assetID, lockAmount, debitAmount)
	if err != nil {
		return false, fmt.Errorf("commit locked balance: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AdjustLocked applies a signed delta to locked. Growing the reservation is
// guarded by available funds; shrinking always matches an existing row.
func (r *BalanceRepo) AdjustLocked(ctx context.Context, tx pgx.Tx, uid int64, assetID string, delta decimal.Decimal) (bool, error) {
	query := `UPDATE wallet_balances SET locked = locked + $3
		WHERE uid = $1 AND assetid = $2 AND ($3 <= 0 OR total - locked >= $3)`

	tag, err := tx.Exec(ctx, query, uid, assetID, delta)
	if err != nil {
		return false, fmt.Errorf("adjust locked balance: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Get fetches a balance row without locking. Returns nil, nil when absent.
func (r *BalanceRepo) Get(ctx context.Context, uid int64, assetID string) (*domain.Balance, error) {
	query := `SELECT uid, assetid, total, locked FROM wallet_balances
		WHERE uid = $1 AND assetid = $2`

	b := &domain.Balance{}
	err := r.pool.QueryRow(ctx, query, uid, assetID).Scan(&b.UID, &b.AssetID, &b.Total, &b.Locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// ListByUser fetches every balance row of one user, keyed by asset id.
func (r *BalanceRepo) ListByUser(ctx context.Context, uid int64) (map[string]*domain.Balance, error) {
	query := `SELECT uid, assetid, total, locked FROM wallet_balances WHERE uid = $1`

	rows, err := r.pool.Query(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]*domain.Balance)
	for rows.Next() {
		b := &domain.Balance{}
		if err := rows.Scan(&b.UID, &b.AssetID, &b.Total, &b.Locked); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		balances[b.AssetID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balances: %w", err)
	}
	return balances, nil
}
