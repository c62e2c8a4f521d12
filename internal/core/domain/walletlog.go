package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LogOperation tags a wallet log entry with the mutation that produced it.
type LogOperation string

const (
	LogOpCredit  LogOperation = "CREDIT"
	LogOpDebit   LogOperation = "DEBIT"
	LogOpLock    LogOperation = "LOCK"
	LogOpRelease LogOperation = "RELEASE"
	LogOpCommit  LogOperation = "COMMIT"
	LogOpRelock  LogOperation = "RELOCK"
)

// LogEntry is one append-only wallet log row. Entries are written inside
// the same transaction as the balance mutation they document and are never
// updated or deleted; replaying the log reconstructs every balance.
//
// Amount meaning per operation: CREDIT/DEBIT — the credited/debited amount;
// LOCK — the reserved amount; RELEASE — the amount returned to available;
// COMMIT — the amount permanently debited; RELOCK — the signed delta.
type LogEntry struct {
	LogID     int64           `json:"logid"`
	Operation LogOperation    `json:"operation"`
	LockID    *int64          `json:"lockid,omitempty"`
	UID       int64           `json:"uid"`
	AssetID   string          `json:"assetid"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	Context   *string         `json:"context,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
