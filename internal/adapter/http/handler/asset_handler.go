package handler

import (
	"strconv"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultAssetPageSize = 50
	maxAssetPageSize     = 200
)

// AssetHandler handles the asset catalog endpoints.
type AssetHandler struct {
	assetSvc ports.AssetService
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetSvc ports.AssetService) *AssetHandler {
	return &AssetHandler{assetSvc: assetSvc}
}

// ListAssets handles GET /api/v1/assets.
// Query params: offset, limit, q (substring match on symbol or name),
// enabled (true restricts to enabled assets).
func (h *AssetHandler) ListAssets(c *gin.Context) {
	params := ports.AssetListParams{
		Limit: defaultAssetPageSize,
		Query: c.Query("q"),
	}

	if raw := c.Query("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			response.Error(c, apperror.ErrValidation("invalid offset"))
			return
		}
		params.Offset = v
	}
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxAssetPageSize {
			response.Error(c, apperror.ErrValidation("invalid limit"))
			return
		}
		params.Limit = v
	}
	if raw := c.Query("enabled"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, apperror.ErrValidation("invalid enabled flag"))
			return
		}
		params.EnabledOnly = v
	}

	assets, more, err := h.assetSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.AssetListResponse{
		Assets: make([]dto.AssetResponse, 0, len(assets)),
		More:   more,
	}
	for i := range assets {
		resp.Assets = append(resp.Assets, toAssetResponse(&assets[i]))
	}
	response.OK(c, resp)
}

// GetAsset handles GET /api/v1/assets/:symbol. Unknown symbols are
// NOT_FOUND; disabled assets are rejected the same way mutations are.
func (h *AssetHandler) GetAsset(c *gin.Context) {
	asset, err := h.assetSvc.Resolve(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toAssetResponse(asset))
}

func toAssetResponse(a *domain.Asset) dto.AssetResponse {
	return dto.AssetResponse{
		AssetID:       a.AssetID,
		Name:          a.Name,
		IconURL:       a.IconURL,
		DefaultPrec:   a.DefaultPrec,
		Enabled:       a.Enabled,
		MinDeposit:    a.MinDeposit.String(),
		MinWithdrawal: a.MinWithdrawal.String(),
	}
}
