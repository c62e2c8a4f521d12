package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles the mutating wallet endpoints.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// parseAmount converts a pre-validated decimal string. Binding validators
// already bound the format, so a parse failure here means the value slipped
// past them and is rejected rather than trusted.
func parseAmount(s string) (decimal.Decimal, *apperror.AppError) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, apperror.ErrValidation("invalid amount: " + s)
	}
	return d, nil
}

func parseOptionalAmount(s *string) (*decimal.Decimal, *apperror.AppError) {
	if s == nil {
		return nil, nil
	}
	d, appErr := parseAmount(*s)
	if appErr != nil {
		return nil, appErr
	}
	return &d, nil
}

// Credit handles POST /api/v1/wallet/credit.
func (h *LedgerHandler) Credit(c *gin.Context) {
	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	amount, appErr := parseAmount(req.Amount)
	if appErr != nil {
		response.Error(c, appErr)
		return
	}

	err := h.ledgerSvc.Credit(c.Request.Context(), ports.CreditParams{
		UID:     req.UID,
		AssetID: req.AssetID,
		Amount:  amount,
		Reason:  req.Reason,
		Context: req.Context,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.MutationResponse{
		UID:     req.UID,
		AssetID: req.AssetID,
		Amount:  amount.String(),
	})
}

// Debit handles POST /api/v1/wallet/debit.
func (h *LedgerHandler) Debit(c *gin.Context) {
	var req dto.DebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	amount, appErr := parseAmount(req.Amount)
	if appErr != nil {
		response.Error(c, appErr)
		return
	}

	err := h.ledgerSvc.Debit(c.Request.Context(), ports.DebitParams{
		UID:     req.UID,
		AssetID: req.AssetID,
		Amount:  amount,
		Reason:  req.Reason,
		Context: req.Context,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.MutationResponse{
		UID:     req.UID,
		AssetID: req.AssetID,
		Amount:  amount.String(),
	})
}

// Lock handles POST /api/v1/wallet/lock.
func (h *LedgerHandler) Lock(c *gin.Context) {
	var req dto.LockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	amount, appErr := parseOptionalAmount(req.Amount)
	if appErr != nil {
		response.Error(c, appErr)
		return
	}

	result, err := h.ledgerSvc.Lock(c.Request.Context(), ports.LockParams{
		UID:     req.UID,
		AssetID: req.AssetID,
		Amount:  amount,
		Reason:  req.Reason,
		Context: req.Context,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.LockResponse{
		LockID: result.LockID,
		Amount: result.Amount.String(),
		Type:   string(result.Type),
	})
}

// Release handles POST /api/v1/wallet/release.
func (h *LedgerHandler) Release(c *gin.Context) {
	var req dto.ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.ledgerSvc.Release(c.Request.Context(), ports.ReleaseParams{
		LockID:  req.LockID,
		Reason:  req.Reason,
		Context: req.Context,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ReleaseResponse{
		LockID:  req.LockID,
		UID:     result.UID,
		AssetID: result.AssetID,
		Amount:  result.Amount.String(),
	})
}

// Commit handles POST /api/v1/wallet/commit.
func (h *LedgerHandler) Commit(c *gin.Context) {
	var req dto.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	amount, appErr := parseOptionalAmount(req.Amount)
	if appErr != nil {
		response.Error(c, appErr)
		return
	}

	result, err := h.ledgerSvc.Commit(c.Request.Context(), ports.CommitParams{
		LockID:  req.LockID,
		Amount:  amount,
		Reason:  req.Reason,
		Context: req.Context,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.CommitResponse{
		LockID:   req.LockID,
		UID:      result.UID,
		AssetID:  result.AssetID,
		Debited:  result.Debited.String(),
		Released: result.Released.String(),
	})
}

// Relock handles POST /api/v1/wallet/relock.
func (h *LedgerHandler) Relock(c *gin.Context) {
	var req dto.RelockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	abs, appErr := parseOptionalAmount(req.Amount)
	if appErr != nil {
		response.Error(c, appErr)
		return
	}
	rel, appErr := parseOptionalAmount(req.Delta)
	if appErr != nil {
		response.Error(c, appErr)
		return
	}

	result, err := h.ledgerSvc.Relock(c.Request.Context(), ports.RelockParams{
		LockID:  req.LockID,
		Abs:     abs,
		Rel:     rel,
		Reason:  req.Reason,
		Context: req.Context,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.RelockResponse{
		LockID:    req.LockID,
		UID:       result.UID,
		AssetID:   result.AssetID,
		OldAmount: result.OldAmount.String(),
		NewAmount: result.NewAmount.String(),
	})
}
