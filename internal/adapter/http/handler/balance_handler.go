package handler

import (
	"strconv"
	"strings"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// BalanceHandler handles the balance reporting endpoints.
type BalanceHandler struct {
	reportingSvc ports.ReportingService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(reportingSvc ports.ReportingService) *BalanceHandler {
	return &BalanceHandler{reportingSvc: reportingSvc}
}

// GetBalance handles GET /api/v1/balances/:symbol. A user who never touched
// the asset reads as zeros.
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	uid, appErr := parseUID(c)
	if appErr != nil {
		response.Error(c, appErr)
		return
	}

	balances, err := h.reportingSvc.Balances(c.Request.Context(), ports.BalanceQuery{
		UID:      uid,
		AssetIDs: []string{c.Param("symbol")},
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(balances) != 1 {
		response.Error(c, apperror.ErrNotFound("balance"))
		return
	}

	b := &balances[0]
	response.OK(c, dto.BalanceResponse{
		AssetID:   b.AssetID,
		Total:     b.Total.String(),
		Locked:    b.Locked.String(),
		Available: b.Available().String(),
	})
}

func parseUID(c *gin.Context) (int64, *apperror.AppError) {
	rawUID := c.Query("uid")
	if rawUID == "" {
		return 0, apperror.ErrMissingData("uid")
	}
	uid, err := strconv.ParseInt(rawUID, 10, 64)
	if err != nil || uid <= 0 {
		return 0, apperror.ErrValidation("invalid uid")
	}
	return uid, nil
}

// GetBalances handles GET /api/v1/balances.
// Query params: uid (required), assets (comma-separated symbols; empty
// means every enabled asset).
func (h *BalanceHandler) GetBalances(c *gin.Context) {
	uid, appErr := parseUID(c)
	if appErr != nil {
		response.Error(c, appErr)
		return
	}

	var assetIDs []string
	if raw := c.Query("assets"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			assetIDs = append(assetIDs, part)
		}
	}

	balances, err := h.reportingSvc.Balances(c.Request.Context(), ports.BalanceQuery{
		UID:      uid,
		AssetIDs: assetIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.BalanceListResponse{
		UID:      uid,
		Balances: make([]dto.BalanceResponse, 0, len(balances)),
	}
	for i := range balances {
		b := &balances[i]
		resp.Balances = append(resp.Balances, dto.BalanceResponse{
			AssetID:   b.AssetID,
			Total:     b.Total.String(),
			Locked:    b.Locked.String(),
			Available: b.Available().String(),
		})
	}
	response.OK(c, resp)
}
