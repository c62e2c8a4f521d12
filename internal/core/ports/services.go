package ports

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

// CreditParams carries a credit mutation.
type CreditParams struct {
	UID     int64
	AssetID string
	Amount  decimal.Decimal
	Reason  string
	Context *string
}

// DebitParams carries a debit mutation.
type DebitParams struct {
	UID     int64
	AssetID string
	Amount  decimal.Decimal
	Reason  string
	Context *string
}

// LockParams carries a reservation request. A nil Amount requests a delayed
// lock reserving everything available; a set Amount requests a simple lock.
type LockParams struct {
	UID     int64
	AssetID string
	Amount  *decimal.Decimal
	Reason  string
	Context *string
}

// LockResult reports the created reservation.
type LockResult struct {
	LockID int64
	Amount decimal.Decimal
	Type   domain.LockType
}

// ReleaseParams carries a release request.
type ReleaseParams struct {
	LockID  int64
	Reason  string
	Context *string
}

// ReleaseResult reports the funds returned to available.
type ReleaseResult struct {
	UID     int64
	AssetID string
	Amount  decimal.Decimal
}

// CommitParams carries a commit request. Amount is the final consumed
// amount; it is required for delayed locks and defaults to the reserved
// amount for simple locks when nil.
type CommitParams struct {
	LockID  int64
	Amount  *decimal.Decimal
	Reason  string
	Context *string
}

// CommitResult reports the permanent debit and any remainder freed back to
// available.
type CommitResult struct {
	UID      int64
	AssetID  string
	Debited  decimal.Decimal
	Released decimal.Decimal
}

// RelockParams carries a lock resize. Exactly one of Abs and Rel is set:
// Abs is the new absolute reserved amount, Rel a signed delta.
type RelockParams struct {
	LockID  int64
	Abs     *decimal.Decimal
	Rel     *decimal.Decimal
	Reason  string
	Context *string
}

// RelockResult reports the resized reservation.
type RelockResult struct {
	UID       int64
	AssetID   string
	OldAmount decimal.Decimal
	NewAmount decimal.Decimal
}

// LedgerService is the reservation engine. Each method is one atomic
// transaction; on any failure the balances are untouched.
type LedgerService interface {
	Credit(ctx context.Context, params CreditParams) error
	Debit(ctx context.Context, params DebitParams) error
	Lock(ctx context.Context, params LockParams) (*LockResult, error)
	Release(ctx context.Context, params ReleaseParams) (*ReleaseResult, error)
	Commit(ctx context.Context, params CommitParams) (*CommitResult, error)
	Relock(ctx context.Context, params RelockParams) (*RelockResult, error)
}

// AssetService resolves and lists asset reference data.
type AssetService interface {
	// Resolve returns the asset for an id, or an error when the asset is
	// unknown or disabled.
	Resolve(ctx context.Context, assetID string) (*domain.Asset, error)
	// List returns a page of assets and whether more pages exist.
	List(ctx context.Context, params AssetListParams) ([]domain.Asset, bool, error)
}

// BalanceQuery carries a balance listing request.
type BalanceQuery struct {
	UID      int64
	AssetIDs []string // empty = all enabled assets
}

// ReportingService serves read-side balance views.
type ReportingService interface {
	// Balances returns per-asset balances for a user, including zero rows
	// for requested assets the user never touched.
	Balances(ctx context.Context, query BalanceQuery) ([]domain.Balance, error)
}
