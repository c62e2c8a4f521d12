package service

import (
	"context"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	balanceRepo ports.BalanceRepository
	assetSvc    ports.AssetService
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	balanceRepo ports.BalanceRepository,
	assetSvc ports.AssetService,
) ports.ReportingService {
	return &reportingService{
		balanceRepo: balanceRepo,
		assetSvc:    assetSvc,
	}
}

// Balances returns per-asset balances for one user. Assets the user never
// touched come back as zero rows, so the response shape does not leak which
// assets have balance rows. With no explicit asset filter every enabled
// asset is reported.
func (s *reportingService) Balances(ctx context.Context, query ports.BalanceQuery) ([]domain.Balance, error) {
	assetIDs := query.AssetIDs
	if len(assetIDs) == 0 {
		assets, _, err := s.assetSvc.List(ctx, ports.AssetListParams{
			EnabledOnly: true,
			Limit:       1000,
		})
		if err != nil {
			return nil, err
		}
		for _, a := range assets {
			assetIDs = append(assetIDs, a.AssetID)
		}
	} else {
		for _, id := range assetIDs {
			if _, err := s.assetSvc.Resolve(ctx, id); err != nil {
				return nil, err
			}
		}
	}

	rows, err := s.balanceRepo.ListByUser(ctx, query.UID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	balances := make([]domain.Balance, 0, len(assetIDs))
	for _, id := range assetIDs {
		if b, ok := rows[id]; ok {
			balances = append(balances, *b)
			continue
		}
		balances = append(balances, *domain.ZeroBalance(query.UID, id))
	}
	return balances, nil
}
