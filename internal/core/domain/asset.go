package domain

import (
	"github.com/shopspring/decimal"
)

// Asset is reference data for a supported asset. The ledger engine does not
// own this catalog; it consults it to reject mutations against unknown
// assets and to render balance listings.
type Asset struct {
	AssetID       string          `json:"assetid"`
	Name          string          `json:"name"`
	IconURL       *string         `json:"icon_url,omitempty"`
	DefaultPrec   int32           `json:"default_prec"`
	Enabled       bool            `json:"enabled"`
	MinDeposit    decimal.Decimal `json:"min_deposit"`
	MinWithdrawal decimal.Decimal `json:"min_withdrawal"`
}

// Symbol returns the public symbol of the asset. Asset ids are their
// symbols; the indirection is kept so the id scheme can change later.
func (a *Asset) Symbol() string {
	return a.AssetID
}
