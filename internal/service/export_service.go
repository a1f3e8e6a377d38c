// internal/service/export_service.go
package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/cheapr/opsboard/internal/repository"
	"github.com/cheapr/opsboard/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ExportService writes reconciliation reports for verified orders to object
// storage as CSV.
type ExportService struct {
	orders  repository.BuyingOrderRepository
	storage storage.ObjectStorage
}

func NewExportService(orders repository.BuyingOrderRepository, store storage.ObjectStorage) *ExportService {
	return &ExportService{
		orders:  orders,
		storage: store,
	}
}

// ExportVerifiedSince renders every order verified at or after the given
// time into a CSV report, one row per inventory item, and uploads it.
// Returns the object key.
func (s *ExportService) ExportVerifiedSince(ctx context.Context, since time.Time) (string, error) {
	orders, err := s.orders.ListVerifiedSince(ctx, since)
	if err != nil {
		return "", err
	}

	data, err := renderReconciliationCSV(orders)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("reconciliation/%s/%s.csv",
		time.Now().UTC().Format("2006-01-02"), uuid.NewString())
	if err := s.storage.UploadObject(ctx, key, "text/csv", data); err != nil {
		return "", err
	}

	log.Info().Str("key", key).Int("orders", len(orders)).Msg("reconciliation export uploaded")
	return key, nil
}

func renderReconciliationCSV(orders []*domain.BuyingOrder) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"buying_order", "order_date", "seller", "destination",
		"item", "sku", "matched", "landed_cost", "linked_sales",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, order := range orders {
		linked := ""
		for i, link := range order.Links {
			if i > 0 {
				linked += " "
			}
			linked += fmt.Sprintf("%d", link.SellingOrderID)
		}

		if len(order.Items) == 0 {
			row := []string{
				fmt.Sprintf("%d", order.ID),
				order.OrderDate.Format("2006-01-02"),
				order.SellerName,
				order.Destination.String(),
				"", "", "", "", linked,
			}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write csv row: %w", err)
			}
			continue
		}

		for _, item := range order.Items {
			matched := "no"
			if item.SalesItemID != nil {
				matched = "yes"
			}
			row := []string{
				fmt.Sprintf("%d", order.ID),
				order.OrderDate.Format("2006-01-02"),
				order.SellerName,
				order.Destination.String(),
				fmt.Sprintf("%d", item.ID),
				item.SKU,
				matched,
				domain.FormatRollup(item),
				linked,
			}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
