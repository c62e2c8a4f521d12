package service

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// assetService implements ports.AssetService with a read-through Redis cache.
type assetService struct {
	repo     ports.AssetRepository
	cache    ports.AssetCache
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewAssetService creates a new asset service.
func NewAssetService(
	repo ports.AssetRepository,
	cache ports.AssetCache,
	cacheTTL time.Duration,
	log zerolog.Logger,
) ports.AssetService {
	return &assetService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Resolve returns the asset for an id. Unknown assets are NOT_FOUND and
// disabled assets are rejected, so callers can gate mutations on a single
// call. Cache failures fall through to the database; a failing entry is
// dropped so it cannot shadow the repopulated value.
func (s *assetService) Resolve(ctx context.Context, assetID string) (*domain.Asset, error) {
	asset, err := s.cache.Get(ctx, assetID)
	if err != nil {
		s.log.Warn().Err(err).Str("assetid", assetID).Msg("asset cache read failed, falling through to DB")
		if err := s.cache.Invalidate(ctx, assetID); err != nil {
			s.log.Warn().Err(err).Str("assetid", assetID).Msg("asset cache invalidate failed")
		}
	}

	if asset == nil {
		asset, err = s.repo.Get(ctx, assetID)
		if err != nil {
			return nil, apperror.InternalError(err)
		}
		if asset == nil {
			return nil, apperror.ErrNotFound("asset")
		}
		if err := s.cache.Set(ctx, asset, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Str("assetid", assetID).Msg("asset cache write failed")
		}
	}

	if !asset.Enabled {
		return nil, apperror.ErrValidation("asset " + assetID + " is disabled")
	}
	return asset, nil
}

// List returns a page of assets. Listings always hit the database; only
// per-asset resolution is cached.
func (s *assetService) List(ctx context.Context, params ports.AssetListParams) ([]domain.Asset, bool, error) {
	assets, more, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, false, apperror.InternalError(err)
	}
	return assets, more, nil
}
