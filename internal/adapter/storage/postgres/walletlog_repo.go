package postgres

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletLogRepo implements ports.WalletLogRepository. The log is append-only;
// entries are written inside the same transaction as the mutation they
// document so the two can never disagree.
type WalletLogRepo struct {
	pool Pool
}

// NewWalletLogRepo creates a new WalletLogRepo.
func NewWalletLogRepo(pool Pool) *WalletLogRepo {
	return &WalletLogRepo{pool: pool}
}

// Append inserts one log entry within the caller's transaction.
func (r *WalletLogRepo) Append(ctx context.Context, tx pgx.Tx, entry *domain.LogEntry) error {
	query := `INSERT INTO wallet_log (operation, lockid, uid, assetid, amount, reason, context)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		entry.Operation, entry.LockID, entry.UID, entry.AssetID,
		entry.Amount, entry.Reason, entry.Context,
	)
	if err != nil {
		return fmt.Errorf("append wallet log: %w", err)
	}
	return nil
}
