package service

import (
	"context"
	"time"

	"jewelpos/internal/dto"
	"jewelpos/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	recentSalesLimit  = 5
	topMerchantsLimit = 5
)

type DashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardSummary, error)
}

type dashboardService struct {
	repo    repository.DashboardRepository
	bills   repository.BillRepository
	timeout time.Duration
}

func NewDashboardService(repo repository.DashboardRepository, bills repository.BillRepository, timeout time.Duration) DashboardService {
	return &dashboardService{repo: repo, bills: bills, timeout: timeout}
}

// Summary runs the five aggregate queries concurrently. Each is a single
// statement, so the figures are individually consistent but may straddle a
// sale committed mid-request.
func (s *dashboardService) Summary(ctx context.Context) (*dto.DashboardSummary, error) {
	ctx, cancel := withStorageTimeout(ctx, s.timeout)
	defer cancel()

	var (
		revenue   repository.Totals
		inventory repository.Totals
		recent    []dto.RecentSale
		top       []dto.TopMerchant
		byType    []dto.TypeSummary
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.repo.Revenue(gctx)
		if err != nil {
			return storageError("revenue", err)
		}
		revenue = t
		return nil
	})
	g.Go(func() error {
		t, err := s.repo.InventoryValue(gctx)
		if err != nil {
			return storageError("inventory value", err)
		}
		inventory = t
		return nil
	})
	g.Go(func() error {
		bills, err := s.bills.List(gctx, recentSalesLimit)
		if err != nil {
			return storageError("recent sales", err)
		}
		recent = make([]dto.RecentSale, 0, len(bills))
		for _, b := range bills {
			sale := dto.RecentSale{
				ID:         b.ID,
				BillNumber: b.Number(),
				Amount:     b.TotalAmount,
				Date:       b.CreatedAt.UTC().Format(time.RFC3339),
				Items:      len(b.Items),
			}
			if b.Client != nil {
				sale.Client = b.Client.Name
			}
			recent = append(recent, sale)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.TopMerchants(gctx, topMerchantsLimit)
		if err != nil {
			return storageError("top merchants", err)
		}
		top = make([]dto.TopMerchant, 0, len(rows))
		for _, r := range rows {
			top = append(top, dto.TopMerchant{
				ID:         r.MerchantCode,
				Name:       r.Name,
				TotalSales: r.TotalSales,
				Revenue:    r.Revenue,
			})
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.InventoryByType(gctx)
		if err != nil {
			return storageError("inventory by type", err)
		}
		byType = make([]dto.TypeSummary, 0, len(rows))
		for _, r := range rows {
			byType = append(byType, dto.TypeSummary{Category: r.Type, Count: r.Count, Value: r.Value})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.DashboardSummary{
		Revenue:          dto.RevenueSummary{Total: revenue.Total, SalesCount: revenue.Count},
		Inventory:        dto.InventoryTotals{TotalValue: inventory.Total, ItemsInStock: inventory.Count},
		RecentSales:      recent,
		TopMerchants:     top,
		InventorySummary: byType,
	}, nil
}
