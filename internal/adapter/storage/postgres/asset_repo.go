package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// AssetRepo implements ports.AssetRepository.
type AssetRepo struct {
	pool Pool
}

// NewAssetRepo creates a new AssetRepo.
func NewAssetRepo(pool Pool) *AssetRepo {
	return &AssetRepo{pool: pool}
}

// Get fetches an asset by id. Returns nil, nil when unknown.
func (r *AssetRepo) Get(ctx context.Context, assetID string) (*domain.Asset, error) {
	query := `SELECT assetid, name, icon_url, default_prec, enabled, min_deposit, min_withdrawal
		FROM assets WHERE assetid = $1`

	a := &domain.Asset{}
	err := r.pool.QueryRow(ctx, query, assetID).Scan(
		&a.AssetID, &a.Name, &a.IconURL, &a.DefaultPrec,
		&a.Enabled, &a.MinDeposit, &a.MinWithdrawal,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

// List returns a page of assets ordered by id. One extra row is fetched to
// report whether more pages exist.
func (r *AssetRepo) List(ctx context.Context, params ports.AssetListParams) ([]domain.Asset, bool, error) {
	var (
		conds []string
		args  []any
	)
	if params.EnabledOnly {
		conds = append(conds, "enabled")
	}
	if params.Query != "" {
		args = append(args, "%"+params.Query+"%")
		conds = append(conds, fmt.Sprintf("(assetid ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT assetid, name, icon_url, default_prec, enabled, min_deposit, min_withdrawal FROM assets`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, params.Offset)
	query += fmt.Sprintf(" ORDER BY assetid OFFSET $%d", len(args))
	args = append(args, params.Limit+1)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(
			&a.AssetID, &a.Name, &a.IconURL, &a.DefaultPrec,
			&a.Enabled, &a.MinDeposit, &a.MinWithdrawal,
		); err != nil {
			return nil, false, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate assets: %w", err)
	}

	more := len(assets) > params.Limit
	if more {
		assets = assets[:params.Limit]
	}
	return assets, more, nil
}
