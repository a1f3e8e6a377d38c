// internal/service/sales_service.go
package service

import (
	"context"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/cheapr/opsboard/internal/repository"
)

// SalesService manages selling orders and the catalog pickers.
type SalesService struct {
	sales   repository.SellingOrderRepository
	catalog repository.CatalogRepository
}

func NewSalesService(
	sales repository.SellingOrderRepository,
	catalog repository.CatalogRepository,
) *SalesService {
	return &SalesService{
		sales:   sales,
		catalog: catalog,
	}
}

func (s *SalesService) CreateSellingOrder(ctx context.Context, order *domain.SellingOrder) error {
	if order.Status != "" {
		switch order.Status {
		case domain.SellingStatusActive, domain.SellingStatusShipped,
			domain.SellingStatusRefunded, domain.SellingStatusCanceled:
		default:
			return domain.NewRuleError("INVALID_STATUS", "unknown selling order status")
		}
	}
	return s.sales.CreateSellingOrder(ctx, order)
}

func (s *SalesService) GetSellingOrder(ctx context.Context, id int64) (*domain.SellingOrder, error) {
	return s.sales.GetSellingOrder(ctx, id)
}

func (s *SalesService) ListSellingOrders(ctx context.Context, limit, offset int) ([]*domain.SellingOrder, error) {
	return s.sales.ListSellingOrders(ctx, limit, offset)
}

func (s *SalesService) ListSellers(ctx context.Context) ([]*domain.Seller, error) {
	return s.catalog.ListSellers(ctx)
}

func (s *SalesService) SearchProducts(ctx context.Context, search string, limit, offset int) ([]*domain.Product, error) {
	return s.catalog.SearchProducts(ctx, search, limit, offset)
}
