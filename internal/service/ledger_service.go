package service

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService. Every operation is one
// database transaction built from conditional statements; there is no
// in-process locking, concurrent callers are serialized by the row guards.
type LedgerServiceImpl struct {
	balanceRepo ports.BalanceRepository
	lockRepo    ports.LockRepository
	logRepo     ports.WalletLogRepository
	assetSvc    ports.AssetService
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	balanceRepo ports.BalanceRepository,
	lockRepo ports.LockRepository,
	logRepo ports.WalletLogRepository,
	assetSvc ports.AssetService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		balanceRepo: balanceRepo,
		lockRepo:    lockRepo,
		logRepo:     logRepo,
		assetSvc:    assetSvc,
		transactor:  transactor,
		log:         log,
	}
}

// Credit adds funds to a user's total. The first credit for a (user, asset)
// pair creates the balance row; the repo upserts in one statement, so a
// concurrent first credit serializes on the row instead of erroring.
func (s *LedgerServiceImpl) Credit(ctx context.Context, params ports.CreditParams) error {
	if !params.Amount.IsPositive() {
		return apperror.ErrValidation("amount must be positive")
	}
	if _, err := s.assetSvc.Resolve(ctx, params.AssetID); err != nil {
		return err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.balanceRepo.Credit(ctx, dbTx, params.UID, params.AssetID, params.Amount); err != nil {
		return apperror.InternalError(fmt.Errorf("credit balance: %w", err))
	}

	entry := &domain.LogEntry{
		Operation: domain.LogOpCredit,
		UID:       params.UID,
		AssetID:   params.AssetID,
		Amount:    params.Amount,
		Reason:    params.Reason,
		Context:   params.Context,
	}
	if err := s.logRepo.Append(ctx, dbTx, entry); err != nil {
		return apperror.InternalError(fmt.Errorf("append wallet log: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("uid", params.UID).
		Str("assetid", params.AssetID).
		Str("amount", params.Amount.String()).
		Str("reason", params.Reason).
		Msg("balance credited")

	return nil
}

// Debit removes funds from a user's total, bounded by available funds.
// Locked funds are never debitable directly; they go through commit.
func (s *LedgerServiceImpl) Debit(ctx context.Context, params ports.DebitParams) error {
	if !params.Amount.IsPositive() {
		return apperror.ErrValidation("amount must be positive")
	}
	if _, err := s.assetSvc.Resolve(ctx, params.AssetID); err != nil {
		return err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	matched, err := s.balanceRepo.Debit(ctx, dbTx, params.UID, params.AssetID, params.Amount)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("debit balance: %w", err))
	}
	if !matched {
		return apperror.ErrInsufficientBalance("debit account")
	}

	entry := &domain.LogEntry{
		Operation: domain.LogOpDebit,
		UID:       params.UID,
		AssetID:   params.AssetID,
		Amount:    params.Amount,
		Reason:    params.Reason,
		Context:   params.Context,
	}
	if err := s.logRepo.Append(ctx, dbTx, entry); err != nil {
		return apperror.InternalError(fmt.Errorf("append wallet log: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("uid", params.UID).
		Str("assetid", params.AssetID).
		Str("amount", params.Amount.String()).
		Str("reason", params.Reason).
		Msg("balance debited")

	return nil
}

// Lock reserves funds. With an amount it is a simple lock over exactly that
// amount; without one it is a delayed lock over everything available.
func (s *LedgerServiceImpl) Lock(ctx context.Context, params ports.LockParams) (*ports.LockResult, error) {
	if params.Amount != nil && !params.Amount.IsPositive() {
		return nil, apperror.ErrValidation("amount must be positive")
	}
	if _, err := s.assetSvc.Resolve(ctx, params.AssetID); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	lock := &domain.Lock{
		UID:     params.UID,
		AssetID: params.AssetID,
		Reason:  params.Reason,
		Context: params.Context,
	}
	if params.Amount != nil {
		lock.Type = domain.LockTypeSimple
		lock.Amount = *params.Amount

		matched, err := s.balanceRepo.AddLocked(ctx, dbTx, params.UID, params.AssetID, lock.Amount)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("add locked: %w", err))
		}
		if !matched {
			return nil, apperror.ErrInsufficientBalance("lock funds")
		}
	} else {
		lock.Type = domain.LockTypeDelayed

		reserved, ok, err := s.balanceRepo.LockAvailable(ctx, dbTx, params.UID, params.AssetID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock available: %w", err))
		}
		if !ok {
			return nil, apperror.ErrInsufficientBalance("lock funds")
		}
		lock.Amount = reserved
	}

	lockID, err := s.lockRepo.Insert(ctx, dbTx, lock)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("insert lock: %w", err))
	}

	entry := &domain.LogEntry{
		Operation: domain.LogOpLock,
		LockID:    &lockID,
		UID:       params.UID,
		AssetID:   params.AssetID,
		Amount:    lock.Amount,
		Reason:    params.Reason,
		Context:   params.Context,
	}
	if err := s.logRepo.Append(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append wallet log: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("lockid", lockID).
		Int64("uid", params.UID).
		Str("assetid", params.AssetID).
		Str("amount", lock.Amount.String()).
		Str("type", string(lock.Type)).
		Msg("funds locked")

	return &ports.LockResult{LockID: lockID, Amount: lock.Amount, Type: lock.Type}, nil
}

// Release cancels a reservation, returning its full amount to available.
// The delete-returning on the lock row makes a concurrent double release
// resolve to exactly one winner.
func (s *LedgerServiceImpl) Release(ctx context.Context, params ports.ReleaseParams) (*ports.ReleaseResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	lock, err := s.lockRepo.DeleteReturning(ctx, dbTx, params.LockID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("delete lock: %w", err))
	}
	if lock == nil {
		return nil, apperror.ErrNotFound("lock")
	}

	matched, err := s.balanceRepo.SubLocked(ctx, dbTx, lock.UID, lock.AssetID, lock.Amount)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sub locked: %w", err))
	}
	if !matched {
		return nil, apperror.ErrDataIntegrity("locked balance does not cover lock being released")
	}

	entry := &domain.LogEntry{
		Operation: domain.LogOpRelease,
		LockID:    &lock.LockID,
		UID:       lock.UID,
		AssetID:   lock.AssetID,
		Amount:    lock.Amount,
		Reason:    params.Reason,
		Context:   params.Context,
	}
	if err := s.logRepo.Append(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append wallet log: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("lockid", lock.LockID).
		Int64("uid", lock.UID).
		Str("assetid", lock.AssetID).
		Str("amount", lock.Amount.String()).
		Msg("lock released")

	return &ports.ReleaseResult{UID: lock.UID, AssetID: lock.AssetID, Amount: lock.Amount}, nil
}

// Commit settles a reservation: the consumed amount leaves total for good
// and any remainder returns to available in the same statement. A missing
// amount means "consume everything reserved" and is only meaningful for
// simple locks; delayed locks reserved an amount the caller never chose, so
// they must state what was actually consumed.
func (s *LedgerServiceImpl) Commit(ctx context.Context, params ports.CommitParams) (*ports.CommitResult, error) {
	if params.Amount != nil && params.Amount.IsNegative() {
		return nil, apperror.ErrOutOfRange("amount cannot be negative")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	lock, err := s.lockRepo.DeleteReturning(ctx, dbTx, params.LockID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("delete lock: %w", err))
	}
	if lock == nil {
		return nil, apperror.ErrNotFound("lock")
	}

	debit := lock.Amount
	if params.Amount != nil {
		if params.Amount.GreaterThan(lock.Amount) {
			return nil, apperror.ErrOutOfRange("commit amount exceeds locked amount")
		}
		debit = *params.Amount
	} else if lock.Type == domain.LockTypeDelayed {
		return nil, apperror.ErrMissingData("amount")
	}

	matched, err := s.balanceRepo.CommitLocked(ctx, dbTx, lock.UID, lock.AssetID, lock.Amount, debit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit locked: %w", err))
	}
	if !matched {
		return nil, apperror.ErrDataIntegrity("locked balance does not cover lock being committed")
	}

	entry := &domain.LogEntry{
		Operation: domain.LogOpCommit,
		LockID:    &lock.LockID,
		UID:       lock.UID,
		AssetID:   lock.AssetID,
		Amount:    debit,
		Reason:    params.Reason,
		Context:   params.Context,
	}
	if err := s.logRepo.Append(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append wallet log: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	released := lock.Amount.Sub(debit)

	s.log.Info().
		Int64("lockid", lock.LockID).
		Int64("uid", lock.UID).
		Str("assetid", lock.AssetID).
		Str("debited", debit.String()).
		Str("released", released.String()).
		Msg("lock committed")

	return &ports.CommitResult{
		UID:      lock.UID,
		AssetID:  lock.AssetID,
		Debited:  debit,
		Released: released,
	}, nil
}

// Relock resizes an open reservation, either to an absolute amount or by a
// signed delta. Growing is bounded by available funds; shrinking to zero is
// allowed and keeps the lock open.
func (s *LedgerServiceImpl) Relock(ctx context.Context, params ports.RelockParams) (*ports.RelockResult, error) {
	if (params.Abs == nil) == (params.Rel == nil) {
		return nil, apperror.ErrValidation("exactly one of absolute and relative amount must be set")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	lock, err := s.lockRepo.GetForUpdate(ctx, dbTx, params.LockID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get lock: %w", err))
	}
	if lock == nil {
		return nil, apperror.ErrNotFound("lock")
	}

	newAmount := lock.Amount
	if params.Abs != nil {
		newAmount = *params.Abs
	} else {
		newAmount = newAmount.Add(*params.Rel)
	}
	if newAmount.IsNegative() {
		return nil, apperror.ErrOutOfRange("new lock amount cannot be negative")
	}

	delta := newAmount.Sub(lock.Amount)
	if !delta.IsZero() {
		matched, err := s.balanceRepo.AdjustLocked(ctx, dbTx, lock.UID, lock.AssetID, delta)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("adjust locked: %w", err))
		}
		if !matched {
			return nil, apperror.ErrInsufficientBalance("grow lock")
		}

		if err := s.lockRepo.UpdateAmount(ctx, dbTx, lock.LockID, newAmount); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update lock amount: %w", err))
		}
	}

	entry := &domain.LogEntry{
		Operation: domain.LogOpRelock,
		LockID:    &lock.LockID,
		UID:       lock.UID,
		AssetID:   lock.AssetID,
		Amount:    delta,
		Reason:    params.Reason,
		Context:   params.Context,
	}
	if err := s.logRepo.Append(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append wallet log: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("lockid", lock.LockID).
		Int64("uid", lock.UID).
		Str("assetid", lock.AssetID).
		Str("old_amount", lock.Amount.String()).
		Str("new_amount", newAmount.String()).
		Msg("lock resized")

	return &ports.RelockResult{
		UID:       lock.UID,
		AssetID:   lock.AssetID,
		OldAmount: lock.Amount,
		NewAmount: newAmount,
	}, nil
}
