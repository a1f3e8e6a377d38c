package service

import (
	"context"
	"testing"
	"time"

	"github.com/cheapr/opsboard/internal/cache"
	"github.com/cheapr/opsboard/internal/domain"
	"github.com/cheapr/opsboard/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyCache counts cache traffic so tests can assert invalidation happens on
// link mutations.
type spyCache struct {
	cache.MatchCache
	invalidations []int64
}

func newSpyCache() *spyCache {
	return &spyCache{MatchCache: cache.NewNoopMatchCache()}
}

func (s *spyCache) Invalidate(ctx context.Context, buyingOrderID int64) error {
	s.invalidations = append(s.invalidations, buyingOrderID)
	return nil
}

func newReconcileFixture(t *testing.T) (*memory.Store, *ReconcileService, *spyCache) {
	t.Helper()
	store := memory.NewStore()
	spy := newSpyCache()
	return store, NewReconcileService(store, store, spy), spy
}

func seedBuyingOrder(t *testing.T, store *memory.Store, shipToName, shipToZip string) *domain.BuyingOrder {
	t.Helper()
	order := &domain.BuyingOrder{
		OrderDate:  time.Now().Add(-48 * time.Hour),
		Channel:    "ebay",
		ShipToName: shipToName,
		ShipToZip:  shipToZip,
	}
	require.NoError(t, store.CreateBuyingOrder(context.Background(), order))
	return order
}

func seedSellingOrder(t *testing.T, store *memory.Store, customer *domain.Person, status domain.SellingStatus) *domain.SellingOrder {
	t.Helper()
	order := &domain.SellingOrder{
		OrderDate: time.Now().Add(-24 * time.Hour),
		Channel:   "ebay",
		Status:    status,
		Customer:  customer,
		Items:     []*domain.SalesItem{{SubSKU: strPtr("LAP-DEL-5520")}},
	}
	require.NoError(t, store.CreateSellingOrder(context.Background(), order))
	return order
}

func strPtr(s string) *string { return &s }

func TestFindMatchesRanksByNameThenZip(t *testing.T) {
	store, svc, _ := newReconcileFixture(t)
	ctx := context.Background()

	buying := seedBuyingOrder(t, store, "Dana Whitfield", "43004")

	nameMatch := seedSellingOrder(t, store,
		&domain.Person{Name: "Dana Whitfield", Zip: "43004"}, domain.SellingStatusActive)
	zipMatch := seedSellingOrder(t, store,
		&domain.Person{Name: "Marcus Bell", Zip: "43004"}, domain.SellingStatusActive)
	// Canceled orders never show up, even on an exact name match.
	seedSellingOrder(t, store,
		&domain.Person{Name: "Dana Whitfield", Zip: "43004"}, domain.SellingStatusCanceled)
	// Unrelated order matches neither name nor zip.
	seedSellingOrder(t, store,
		&domain.Person{Name: "Ana Ortiz", Zip: "90210"}, domain.SellingStatusActive)

	candidates, err := svc.FindMatches(ctx, buying.ID)
	require.NoError(t, err)

	require.Len(t, candidates.Best, 1)
	assert.Equal(t, nameMatch.ID, candidates.Best[0].ID)
	require.Len(t, candidates.Other, 1)
	assert.Equal(t, zipMatch.ID, candidates.Other[0].ID)
}

func TestFindMatchesNameIsCaseInsensitive(t *testing.T) {
	store, svc, _ := newReconcileFixture(t)
	ctx := context.Background()

	buying := seedBuyingOrder(t, store, "dana whitfield", "99999")
	match := seedSellingOrder(t, store,
		&domain.Person{Name: "DANA WHITFIELD", Zip: "43004"}, domain.SellingStatusActive)

	candidates, err := svc.FindMatches(ctx, buying.ID)
	require.NoError(t, err)
	require.Len(t, candidates.Best, 1)
	assert.Equal(t, match.ID, candidates.Best[0].ID)
	assert.Empty(t, candidates.Other)
}

func TestFindMatchesUnknownOrder(t *testing.T) {
	_, svc, _ := newReconcileFixture(t)

	_, err := svc.FindMatches(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPickSellingIsIdempotent(t *testing.T) {
	store, svc, spy := newReconcileFixture(t)
	ctx := context.Background()

	buying := seedBuyingOrder(t, store, "Dana Whitfield", "43004")
	selling := seedSellingOrder(t, store,
		&domain.Person{Name: "Dana Whitfield"}, domain.SellingStatusActive)

	cmd := domain.LinkSale{BuyingOrderID: buying.ID, SellingOrderID: selling.ID}

	created, err := svc.PickSelling(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, created)

	// Second pick of the same pair is a no-op.
	created, err = svc.PickSelling(ctx, cmd)
	require.NoError(t, err)
	assert.False(t, created)

	reloaded, err := store.GetBuyingOrder(ctx, buying.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Links, 1)
	assert.Equal(t, []int64{buying.ID}, spy.invalidations)
}

func TestPickSellingRejectsCanceledOrder(t *testing.T) {
	store, svc, _ := newReconcileFixture(t)
	ctx := context.Background()

	buying := seedBuyingOrder(t, store, "Dana Whitfield", "43004")
	canceled := seedSellingOrder(t, store,
		&domain.Person{Name: "Dana Whitfield"}, domain.SellingStatusCanceled)

	_, err := svc.PickSelling(ctx, domain.LinkSale{
		BuyingOrderID:  buying.ID,
		SellingOrderID: canceled.ID,
	})
	require.Error(t, err)
	var ruleErr *domain.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "CANCELED_ORDER", ruleErr.Code)
}

func TestRemoveSellingRoundTrip(t *testing.T) {
	store, svc, spy := newReconcileFixture(t)
	ctx := context.Background()

	buying := seedBuyingOrder(t, store, "Dana Whitfield", "43004")
	selling := seedSellingOrder(t, store,
		&domain.Person{Name: "Dana Whitfield"}, domain.SellingStatusActive)
	cmd := domain.LinkSale{BuyingOrderID: buying.ID, SellingOrderID: selling.ID}

	_, err := svc.PickSelling(ctx, cmd)
	require.NoError(t, err)

	deleted, err := svc.RemoveSelling(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Removing again reports nothing to delete.
	deleted, err = svc.RemoveSelling(ctx, cmd)
	require.NoError(t, err)
	assert.False(t, deleted)

	reloaded, err := store.GetBuyingOrder(ctx, buying.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Links)
	assert.Equal(t, []int64{buying.ID, buying.ID}, spy.invalidations)
}

func TestCreateReplacementLinksAndClones(t *testing.T) {
	store, svc, _ := newReconcileFixture(t)
	ctx := context.Background()

	buying := seedBuyingOrder(t, store, "Dana Whitfield", "43004")
	selling := seedSellingOrder(t, store,
		&domain.Person{Name: "Dana Whitfield"}, domain.SellingStatusActive)
	require.Len(t, selling.Items, 1)
	source := selling.Items[0]

	replacement, err := svc.CreateReplacement(ctx, source.ID, buying.ID)
	require.NoError(t, err)

	assert.Equal(t, selling.ID, replacement.SellingOrderID)
	assert.Equal(t, source.SubSKU, replacement.SubSKU)
	assert.Nil(t, replacement.InventoryItemID)
	assert.Nil(t, replacement.TrackingID)
	assert.Nil(t, replacement.Refunded)
	assert.NotEqual(t, source.ID, replacement.ID)

	// The link lands in the same unit of work as the new item.
	reloadedBuying, err := store.GetBuyingOrder(ctx, buying.ID)
	require.NoError(t, err)
	require.Len(t, reloadedBuying.Links, 1)
	assert.Equal(t, selling.ID, reloadedBuying.Links[0].SellingOrderID)

	reloadedSelling, err := store.GetSellingOrder(ctx, selling.ID)
	require.NoError(t, err)
	assert.Len(t, reloadedSelling.Items, 2)
}

func TestCreateReplacementDoesNotDuplicateLink(t *testing.T) {
	store, svc, _ := newReconcileFixture(t)
	ctx := context.Background()

	buying := seedBuyingOrder(t, store, "Dana Whitfield", "43004")
	selling := seedSellingOrder(t, store,
		&domain.Person{Name: "Dana Whitfield"}, domain.SellingStatusActive)

	_, err := svc.PickSelling(ctx, domain.LinkSale{
		BuyingOrderID:  buying.ID,
		SellingOrderID: selling.ID,
	})
	require.NoError(t, err)

	_, err = svc.CreateReplacement(ctx, selling.Items[0].ID, buying.ID)
	require.NoError(t, err)

	reloaded, err := store.GetBuyingOrder(ctx, buying.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Links, 1)
}

func TestSetDestinationToDropshipReturnsCandidates(t *testing.T) {
	store, svc, _ := newReconcileFixture(t)
	ctx := context.Background()

	buying := seedBuyingOrder(t, store, "Dana Whitfield", "43004")
	match := seedSellingOrder(t, store,
		&domain.Person{Name: "Dana Whitfield"}, domain.SellingStatusActive)

	order, candidates, err := svc.SetDestination(ctx, buying.ID,
		domain.SetDestination{Destination: domain.DestinationDropship})
	require.NoError(t, err)
	assert.Equal(t, domain.DestinationDropship, order.Destination)
	require.NotNil(t, candidates)
	require.Len(t, candidates.Best, 1)
	assert.Equal(t, match.ID, candidates.Best[0].ID)
}

func TestSetDestinationToHouseSkipsMatching(t *testing.T) {
	store, svc, _ := newReconcileFixture(t)
	ctx := context.Background()

	buying := seedBuyingOrder(t, store, "Dana Whitfield", "43004")

	order, candidates, err := svc.SetDestination(ctx, buying.ID,
		domain.SetDestination{Destination: domain.DestinationHouse})
	require.NoError(t, err)
	assert.Equal(t, domain.DestinationHouse, order.Destination)
	assert.Nil(t, candidates)
}

func TestSetDestinationRejectsVerifiedOrder(t *testing.T) {
	store, svc, _ := newReconcileFixture(t)
	ctx := context.Background()

	buying := seedBuyingOrder(t, store, "", "")
	_, _, err := svc.SetDestination(ctx, buying.ID,
		domain.SetDestination{Destination: domain.DestinationHouse})
	require.NoError(t, err)

	_, err = svc.SetVerified(ctx, buying.ID, domain.SetVerified{Verified: true})
	require.NoError(t, err)

	_, _, err = svc.SetDestination(ctx, buying.ID,
		domain.SetDestination{Destination: domain.DestinationDropship})
	require.Error(t, err)
	var ruleErr *domain.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "ORDER_VERIFIED", ruleErr.Code)
}

func TestRemoveSellingRejectsVerifiedOrder(t *testing.T) {
	store, svc, _ := newReconcileFixture(t)
	ctx := context.Background()

	buying := seedBuyingOrder(t, store, "Dana Whitfield", "43004")
	selling := seedSellingOrder(t, store,
		&domain.Person{Name: "Dana Whitfield"}, domain.SellingStatusActive)
	cmd := domain.LinkSale{BuyingOrderID: buying.ID, SellingOrderID: selling.ID}

	_, _, err := svc.SetDestination(ctx, buying.ID,
		domain.SetDestination{Destination: domain.DestinationDropship})
	require.NoError(t, err)
	_, err = svc.PickSelling(ctx, cmd)
	require.NoError(t, err)
	_, err = svc.SetVerified(ctx, buying.ID, domain.SetVerified{Verified: true})
	require.NoError(t, err)

	// The last link cannot leave while the order is verified; a verified
	// order with zero links must stay unreachable.
	_, err = svc.RemoveSelling(ctx, cmd)
	var ruleErr *domain.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "ORDER_VERIFIED", ruleErr.Code)

	reloaded, err := store.GetBuyingOrder(ctx, buying.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Verified)
	assert.Len(t, reloaded.Links, 1)

	// Unverify first, then the unlink goes through.
	_, err = svc.SetVerified(ctx, buying.ID, domain.SetVerified{Verified: false})
	require.NoError(t, err)
	deleted, err := svc.RemoveSelling(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestSetDestinationRejectsHouseWhileLinked(t *testing.T) {
	store, svc, _ := newReconcileFixture(t)
	ctx := context.Background()

	buying := seedBuyingOrder(t, store, "Dana Whitfield", "43004")
	selling := seedSellingOrder(t, store,
		&domain.Person{Name: "Dana Whitfield"}, domain.SellingStatusActive)
	cmd := domain.LinkSale{BuyingOrderID: buying.ID, SellingOrderID: selling.ID}

	_, _, err := svc.SetDestination(ctx, buying.ID,
		domain.SetDestination{Destination: domain.DestinationDropship})
	require.NoError(t, err)
	_, err = svc.PickSelling(ctx, cmd)
	require.NoError(t, err)

	// A linked dropship order cannot reroute to house; the links would be
	// stranded on an order that never ships to a customer.
	_, _, err = svc.SetDestination(ctx, buying.ID,
		domain.SetDestination{Destination: domain.DestinationHouse})
	var ruleErr *domain.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "INVALID_TRANSITION", ruleErr.Code)

	reloaded, err := store.GetBuyingOrder(ctx, buying.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DestinationDropship, reloaded.Destination)
	assert.Len(t, reloaded.Links, 1)

	// Once the link is removed the reroute is legal again.
	_, err = svc.RemoveSelling(ctx, cmd)
	require.NoError(t, err)
	order, _, err := svc.SetDestination(ctx, buying.ID,
		domain.SetDestination{Destination: domain.DestinationHouse})
	require.NoError(t, err)
	assert.Equal(t, domain.DestinationHouse, order.Destination)
}

func TestSetVerifiedEnforcesGate(t *testing.T) {
	store, svc, _ := newReconcileFixture(t)
	ctx := context.Background()

	buying := seedBuyingOrder(t, store, "Dana Whitfield", "43004")
	_, _, err := svc.SetDestination(ctx, buying.ID,
		domain.SetDestination{Destination: domain.DestinationDropship})
	require.NoError(t, err)

	// Unlinked dropship cannot verify.
	_, err = svc.SetVerified(ctx, buying.ID, domain.SetVerified{Verified: true})
	var ruleErr *domain.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "NO_SELLING_LINK", ruleErr.Code)

	selling := seedSellingOrder(t, store,
		&domain.Person{Name: "Dana Whitfield"}, domain.SellingStatusActive)
	_, err = svc.PickSelling(ctx, domain.LinkSale{
		BuyingOrderID:  buying.ID,
		SellingOrderID: selling.ID,
	})
	require.NoError(t, err)

	// An unmatched inventory item still blocks.
	item := store.AddItem(&domain.InventoryItem{BuyingOrderID: buying.ID, SKU: "LAP-DEL-5520"})
	_, err = svc.SetVerified(ctx, buying.ID, domain.SetVerified{Verified: true})
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "UNMATCHED_ITEM", ruleErr.Code)

	salesItemID := selling.Items[0].ID
	item.SalesItemID = &salesItemID

	order, err := svc.SetVerified(ctx, buying.ID, domain.SetVerified{Verified: true})
	require.NoError(t, err)
	assert.True(t, order.Verified)

	// Verification is reversible.
	order, err = svc.SetVerified(ctx, buying.ID, domain.SetVerified{Verified: false})
	require.NoError(t, err)
	assert.False(t, order.Verified)
}
