package domain

import (
	"github.com/shopspring/decimal"
)

// LockType distinguishes the two reservation semantics.
type LockType string

const (
	// LockTypeSimple reserves a caller-specified fixed amount.
	LockTypeSimple LockType = "SIMPLE"
	// LockTypeDelayed reserves the entirety of available funds at creation
	// time; the amount is fixed then and the final consumed amount is
	// supplied at commit.
	LockTypeDelayed LockType = "DELAYED"
)

// Lock is an open reservation against available funds. Its amount is
// mirrored 1:1 into the owning Balance's locked field at creation and
// undone at release or commit. Terminal transitions delete the row; the
// wallet log keeps the permanent record.
type Lock struct {
	LockID  int64           `json:"lockid"`
	UID     int64           `json:"uid"`
	AssetID string          `json:"assetid"`
	Amount  decimal.Decimal `json:"amount"`
	Type    LockType        `json:"type"`
	Reason  string          `json:"reason"`
	Context *string         `json:"context,omitempty"`
}
