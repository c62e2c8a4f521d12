package postgres

import (
	"context"
	"errors"
	"testing"

	"wallet-ledger/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletLogRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletLogRepo(mock)
	lockID := int64(11)
	entry := &domain.LogEntry{
		Operation: domain.LogOpLock,
		LockID:    &lockID,
		UID:       1,
		AssetID:   "BTC",
		Amount:    dec("40"),
		Reason:    "order hold",
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallet_log").
		WithArgs(entry.Operation, entry.LockID, entry.UID, entry.AssetID, entry.Amount, entry.Reason, entry.Context).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.Append(context.Background(), tx, entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletLogRepo_Append_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletLogRepo(mock)
	entry := &domain.LogEntry{
		Operation: domain.LogOpCredit,
		UID:       1,
		AssetID:   "BTC",
		Amount:    dec("10"),
		Reason:    "deposit",
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallet_log").
		WithArgs(entry.Operation, entry.LockID, entry.UID, entry.AssetID, entry.Amount, entry.Reason, entry.Context).
		WillReturnError(errors.New("connection reset"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Append(context.Background(), tx, entry)
	assert.ErrorContains(t, err, "append wallet log")
}
