package dto

// Amounts travel as decimal strings, never as floats; the amount /
// signed_amount validators bound their precision before decimal parsing.

// CreditRequest is the request body for crediting a balance.
type CreditRequest struct {
	UID     int64   `json:"uid" binding:"required,gt=0"`
	AssetID string  `json:"assetid" binding:"required,asset_symbol"`
	Amount  string  `json:"amount" binding:"required,amount"`
	Reason  string  `json:"reason" binding:"required,max=255"`
	Context *string `json:"context,omitempty" binding:"omitempty,max=1024"`
}

// DebitRequest is the request body for debiting a balance.
type DebitRequest struct {
	UID     int64   `json:"uid" binding:"required,gt=0"`
	AssetID string  `json:"assetid" binding:"required,asset_symbol"`
	Amount  string  `json:"amount" binding:"required,amount"`
	Reason  string  `json:"reason" binding:"required,max=255"`
	Context *string `json:"context,omitempty" binding:"omitempty,max=1024"`
}

// LockRequest is the request body for reserving funds. Omitting amount
// requests a delayed lock over everything available.
type LockRequest struct {
	UID     int64   `json:"uid" binding:"required,gt=0"`
	AssetID string  `json:"assetid" binding:"required,asset_symbol"`
	Amount  *string `json:"amount,omitempty" binding:"omitempty,amount"`
	Reason  string  `json:"reason" binding:"required,max=255"`
	Context *string `json:"context,omitempty" binding:"omitempty,max=1024"`
}

// ReleaseRequest is the request body for cancelling a reservation.
type ReleaseRequest struct {
	LockID  int64   `json:"lockid" binding:"required,gt=0"`
	Reason  string  `json:"reason" binding:"required,max=255"`
	Context *string `json:"context,omitempty" binding:"omitempty,max=1024"`
}

// CommitRequest is the request body for settling a reservation. Omitting
// amount consumes the full reserved amount (simple locks only).
type CommitRequest struct {
	LockID  int64   `json:"lockid" binding:"required,gt=0"`
	Amount  *string `json:"amount,omitempty" binding:"omitempty,amount"`
	Reason  string  `json:"reason" binding:"required,max=255"`
	Context *string `json:"context,omitempty" binding:"omitempty,max=1024"`
}

// RelockRequest is the request body for resizing a reservation. Exactly one
// of amount (absolute) and delta (signed relative) must be present.
type RelockRequest struct {
	LockID  int64   `json:"lockid" binding:"required,gt=0"`
	Amount  *string `json:"amount,omitempty" binding:"omitempty,amount"`
	Delta   *string `json:"delta,omitempty" binding:"omitempty,signed_amount"`
	Reason  string  `json:"reason" binding:"required,max=255"`
	Context *string `json:"context,omitempty" binding:"omitempty,max=1024"`
}

// MutationResponse acknowledges a credit or debit.
type MutationResponse struct {
	UID     int64  `json:"uid"`
	AssetID string `json:"assetid"`
	Amount  string `json:"amount"`
}

// LockResponse is the response body for a created reservation.
type LockResponse struct {
	LockID int64  `json:"lockid"`
	Amount string `json:"amount"`
	Type   string `json:"type"`
}

// ReleaseResponse is the response body for a cancelled reservation.
type ReleaseResponse struct {
	LockID  int64  `json:"lockid"`
	UID     int64  `json:"uid"`
	AssetID string `json:"assetid"`
	Amount  string `json:"amount"`
}

// CommitResponse is the response body for a settled reservation.
type CommitResponse struct {
	LockID   int64  `json:"lockid"`
	UID      int64  `json:"uid"`
	AssetID  string `json:"assetid"`
	Debited  string `json:"debited"`
	Released string `json:"released"`
}

// RelockResponse is the response body for a resized reservation.
type RelockResponse struct {
	LockID    int64  `json:"lockid"`
	UID       int64  `json:"uid"`
	AssetID   string `json:"assetid"`
	OldAmount string `json:"old_amount"`
	NewAmount string `json:"new_amount"`
}

// BalanceResponse is one per-asset balance row.
type BalanceResponse struct {
	AssetID   string `json:"assetid"`
	Total     string `json:"total"`
	Locked    string `json:"locked"`
	Available string `json:"avbl"`
}

// BalanceListResponse wraps a user's balances.
type BalanceListResponse struct {
	UID      int64             `json:"uid"`
	Balances []BalanceResponse `json:"balances"`
}

// AssetResponse is one asset catalog entry.
type AssetResponse struct {
	AssetID       string  `json:"assetid"`
	Name          string  `json:"name"`
	IconURL       *string `json:"icon_url,omitempty"`
	DefaultPrec   int32   `json:"default_prec"`
	Enabled       bool    `json:"enabled"`
	MinDeposit    string  `json:"min_deposit"`
	MinWithdrawal string  `json:"min_withdrawal"`
}

// AssetListResponse wraps a paginated asset catalog page.
type AssetListResponse struct {
	Assets []AssetResponse `json:"assets"`
	More   bool            `json:"more"`
}
