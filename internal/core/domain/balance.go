package domain

import (
	"github.com/shopspring/decimal"
)

// Balance is the per-user, per-asset record of total and locked funds.
// A missing row is equivalent to total=0, locked=0. Rows are created
// implicitly on first credit and never deleted.
//
// Invariants after every committed transaction:
//
//	total >= 0, locked >= 0, locked <= total
type Balance struct {
	UID     int64           `json:"uid"`
	AssetID string          `json:"assetid"`
	Total   decimal.Decimal `json:"total"`
	Locked  decimal.Decimal `json:"locked"`
}

// Available returns the spendable portion: total - locked.
func (b *Balance) Available() decimal.Decimal {
	return b.Total.Sub(b.Locked)
}

// ZeroBalance returns the implicit balance for a (uid, assetid) pair
// that has no row yet.
func ZeroBalance(uid int64, assetID string) *Balance {
	return &Balance{
		UID:     uid,
		AssetID: assetID,
		Total:   decimal.Zero,
		Locked:  decimal.Zero,
	}
}
