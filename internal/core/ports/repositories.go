package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

// BalanceRepository defines the atomic conditional mutations on balance rows.
// Every check-then-mutate is a single statement evaluated by the store; the
// boolean result reports whether the guard predicate matched a row. Methods
// accepting pgx.Tx must run inside the caller's transaction.
type BalanceRepository interface {
	// Credit increments total, upserting the balance row in one statement so
	// a concurrent first credit never errors mid-transaction.
	Credit(ctx context.Context, tx pgx.Tx, uid int64, assetID string, amount decimal.Decimal) error
	// Debit decrements total, conditioned on total - locked >= amount.
	Debit(ctx context.Context, tx pgx.Tx, uid int64, assetID string, amount decimal.Decimal) (bool, error)
	// AddLocked increments locked, conditioned on total - locked >= amount.
	AddLocked(ctx context.Context, tx pgx.Tx, uid int64, assetID string, amount decimal.Decimal) (bool, error)
	// LockAvailable sets locked := total, reserving everything available.
	// Returns the reserved amount, or ok=false when available <= 0.
	LockAvailable(ctx context.Context, tx pgx.Tx, uid int64, assetID string) (decimal.Decimal, bool, error)
	// SubLocked decrements locked, conditioned on locked >= amount.
	SubLocked(ctx context.Context, tx pgx.Tx, uid int64, assetID string, amount decimal.Decimal) (bool, error)
	// CommitLocked applies locked -= lockAmount, total -= debitAmount in one
	// statement, conditioned on locked >= lockAmount.
	CommitLocked(ctx context.Context, tx pgx.Tx, uid int64, assetID string, lockAmount, debitAmount decimal.Decimal) (bool, error)
	// AdjustLocked applies locked += delta; a positive delta is conditioned
	// on total - locked >= delta, a negative one always matches.
	AdjustLocked(ctx context.Context, tx pgx.Tx, uid int64, assetID string, delta decimal.Decimal) (bool, error)

	// Get fetches a balance row. Returns nil, nil when absent.
	Get(ctx context.Context, uid int64, assetID string) (*domain.Balance, error)
	// ListByUser fetches all balance rows of one user keyed by asset id.
	ListByUser(ctx context.Context, uid int64) (map[string]*domain.Balance, error)
}

// LockRepository defines persistence for open reservations.
type LockRepository interface {
	// Insert creates a lock row and returns the generated lock id.
	Insert(ctx context.Context, tx pgx.Tx, lock *domain.Lock) (int64, error)
	// DeleteReturning removes a lock row and returns it. Returns nil, nil
	// when the lock id does not exist.
	DeleteReturning(ctx context.Context, tx pgx.Tx, lockID int64) (*domain.Lock, error)
	// GetForUpdate fetches a lock row with a row lock held for the rest of
	// the transaction. Returns nil, nil when absent.
	GetForUpdate(ctx context.Context, tx pgx.Tx, lockID int64) (*domain.Lock, error)
	// UpdateAmount sets a lock row's amount.
	UpdateAmount(ctx context.Context, tx pgx.Tx, lockID int64, amount decimal.Decimal) error
}

// WalletLogRepository appends to the audit log. Append runs inside the
// caller's transaction so the entry is atomic with the mutation it documents;
// the engine never reads the log back.
type WalletLogRepository interface {
	Append(ctx context.Context, tx pgx.Tx, entry *domain.LogEntry) error
}

// AssetRepository reads asset reference data.
type AssetRepository interface {
	// Get fetches an asset by id. Returns nil, nil when unknown.
	Get(ctx context.Context, assetID string) (*domain.Asset, error)
	// List returns a page of assets and whether more pages exist.
	List(ctx context.Context, params AssetListParams) ([]domain.Asset, bool, error)
}

// AssetListParams holds filter + pagination for asset listings.
type AssetListParams struct {
	EnabledOnly bool
	Query       string // substring match on assetid/name
	Offset      int
	Limit       int
}

// AssetCache is a TTL cache in front of AssetRepository.
type AssetCache interface {
	// Get retrieves a cached asset. Returns nil, nil on a miss.
	Get(ctx context.Context, assetID string) (*domain.Asset, error)
	// Set stores an asset with TTL.
	Set(ctx context.Context, asset *domain.Asset, ttl time.Duration) error
	// Invalidate drops a cached asset.
	Invalidate(ctx context.Context, assetID string) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
