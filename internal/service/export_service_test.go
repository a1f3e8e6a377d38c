package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/cheapr/opsboard/internal/repository/memory"
	"github.com/cheapr/opsboard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorage records uploads in memory.
type fakeStorage struct {
	key         string
	contentType string
	data        []byte
}

func (f *fakeStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeStorage) UploadObject(ctx context.Context, key string, contentType string, data []byte) error {
	f.key = key
	f.contentType = contentType
	f.data = data
	return nil
}

func TestExportVerifiedSince(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	order := &domain.BuyingOrder{
		OrderDate:  time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		Channel:    "ebay",
		ShipToName: "Dana Whitfield",
		ShipToZip:  "43004",
	}
	require.NoError(t, store.CreateBuyingOrder(ctx, order))

	salesItemID := int64(42)
	store.AddItem(&domain.InventoryItem{
		BuyingOrderID: order.ID,
		SKU:           "LAP-DEL-5520",
		SalesItemID:   &salesItemID,
		TotalCost:     dec("310.00"),
		ShippingCost:  dec("12.50"),
	})
	store.AddItem(&domain.InventoryItem{
		BuyingOrderID: order.ID,
		SKU:           "MON-SAM-27",
	})

	_, err := store.SetDestination(ctx, order.ID, domain.DestinationHouse)
	require.NoError(t, err)
	_, err = store.Verify(ctx, order.ID)
	require.NoError(t, err)

	// An order verified before the window stays out of the report.
	old := &domain.BuyingOrder{OrderDate: time.Now().Add(-90 * 24 * time.Hour)}
	require.NoError(t, store.CreateBuyingOrder(ctx, old))

	sink := &fakeStorage{}
	svc := NewExportService(store, sink)

	key, err := svc.ExportVerifiedSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "reconciliation/"), "key %q", key)
	assert.True(t, strings.HasSuffix(key, ".csv"))
	assert.Equal(t, key, sink.key)
	assert.Equal(t, "text/csv", sink.contentType)

	rows, err := csv.NewReader(bytes.NewReader(sink.data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per item")

	header := rows[0]
	assert.Equal(t, []string{
		"buying_order", "order_date", "seller", "destination",
		"item", "sku", "matched", "landed_cost", "linked_sales",
	}, header)

	matched := rows[1]
	assert.Equal(t, "2026-08-20", matched[1])
	assert.Equal(t, "House", matched[3])
	assert.Equal(t, "LAP-DEL-5520", matched[5])
	assert.Equal(t, "yes", matched[6])
	assert.Equal(t, "$322.50", matched[7])

	unmatched := rows[2]
	assert.Equal(t, "MON-SAM-27", unmatched[5])
	assert.Equal(t, "no", unmatched[6])
	assert.Equal(t, "", unmatched[7], "no costs renders empty")
}

func TestExportWithNoOrders(t *testing.T) {
	store := memory.NewStore()
	sink := &fakeStorage{}
	svc := NewExportService(store, sink)

	key, err := svc.ExportVerifiedSince(context.Background(), time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, key)

	rows, err := csv.NewReader(bytes.NewReader(sink.data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
