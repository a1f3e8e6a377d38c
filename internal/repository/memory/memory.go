// Package memory holds an in-memory implementation of the repository
// interfaces. It backs the service tests and the demo mode of the server;
// production uses the postgres implementation.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/shopspring/decimal"
)

// Store keeps every entity in maps guarded by one mutex. It implements all
// of the repository interfaces so a single instance can back a whole server.
type Store struct {
	mu sync.RWMutex

	sellers       map[int64]*domain.Seller
	products      map[int64]*domain.Product
	persons       map[int64]*domain.Person
	trackings     map[int64]*domain.Tracking
	buyingOrders  map[int64]*domain.BuyingOrder
	inventory     map[int64]*domain.InventoryItem
	sellingOrders map[int64]*domain.SellingOrder
	salesItems    map[int64]*domain.SalesItem
	links         map[int64]*domain.SellingBuyingLink

	nextID int64
}

func NewStore() *Store {
	return &Store{
		sellers:       make(map[int64]*domain.Seller),
		products:      make(map[int64]*domain.Product),
		persons:       make(map[int64]*domain.Person),
		trackings:     make(map[int64]*domain.Tracking),
		buyingOrders:  make(map[int64]*domain.BuyingOrder),
		inventory:     make(map[int64]*domain.InventoryItem),
		sellingOrders: make(map[int64]*domain.SellingOrder),
		salesItems:    make(map[int64]*domain.SalesItem),
		links:         make(map[int64]*domain.SellingBuyingLink),
	}
}

func (s *Store) nextPK() int64 {
	s.nextID++
	return s.nextID
}

// AddSeller seeds a seller record
func (s *Store) AddSeller(seller *domain.Seller) *domain.Seller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seller.ID == 0 {
		seller.ID = s.nextPK()
	}
	s.sellers[seller.ID] = seller
	return seller
}

// AddProduct seeds a product record
func (s *Store) AddProduct(product *domain.Product) *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.ID == 0 {
		product.ID = s.nextPK()
	}
	s.products[product.ID] = product
	return product
}

// AddItem seeds an inventory item under an existing buying order
func (s *Store) AddItem(item *domain.InventoryItem) *domain.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == 0 {
		item.ID = s.nextPK()
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	s.inventory[item.ID] = item
	return item
}

// AddTracking seeds a tracking record
func (s *Store) AddTracking(t *domain.Tracking) *domain.Tracking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.nextPK()
	}
	if t.Status == "" {
		t.Status = domain.TrackingNotStarted
	}
	s.trackings[t.ID] = t
	return t
}

func (s *Store) CreateBuyingOrder(ctx context.Context, order *domain.BuyingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = s.nextPK()
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	stored := *order
	stored.Items = nil
	stored.Links = nil
	s.buyingOrders[order.ID] = &stored
	return nil
}

func (s *Store) GetBuyingOrder(ctx context.Context, id int64) (*domain.BuyingOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buyingOrderLocked(id)
}

// buyingOrderLocked returns a detached copy with children populated.
// Callers hold at least the read lock.
func (s *Store) buyingOrderLocked(id int64) (*domain.BuyingOrder, error) {
	stored, ok := s.buyingOrders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	order := *stored
	if seller, ok := s.sellers[valueOr(order.SellerID)]; ok {
		order.SellerName = seller.Name
	}
	order.Items = nil
	order.Links = nil
	for _, item := range s.inventory {
		if item.BuyingOrderID == id {
			copied := *item
			order.Items = append(order.Items, &copied)
		}
	}
	for _, link := range s.links {
		if link.BuyingOrderID == id {
			copied := *link
			order.Links = append(order.Links, &copied)
		}
	}
	sort.Slice(order.Items, func(i, j int) bool { return order.Items[i].ID < order.Items[j].ID })
	sort.Slice(order.Links, func(i, j int) bool { return order.Links[i].ID < order.Links[j].ID })
	return &order, nil
}

func (s *Store) ListBuyingOrders(ctx context.Context, limit, offset int) ([]*domain.BuyingOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.buyingOrders))
	for id := range s.buyingOrders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return []*domain.BuyingOrder{}, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}

	orders := make([]*domain.BuyingOrder, 0, end-offset)
	for _, id := range ids[offset:end] {
		order, err := s.buyingOrderLocked(id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *Store) SetDestination(ctx context.Context, id int64, dest domain.Destination) (*domain.BuyingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.buyingOrders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if stored.Verified {
		return nil, domain.NewRuleError("ORDER_VERIFIED", "cannot change destination of a verified order")
	}

	if stored.Destination != dest {
		order, err := s.buyingOrderLocked(id)
		if err != nil {
			return nil, err
		}

		// Routing targets the destination's entry state; the link count only
		// refines the state afterwards, through pick and remove.
		target := domain.StateHouse
		if dest == domain.DestinationDropship {
			target = domain.StateDropshipUnlinked
		}
		if !domain.StateOf(order).CanTransitionTo(target) {
			return nil, domain.NewRuleError("INVALID_TRANSITION",
				"destination change not allowed from the current fulfillment state")
		}

		stored.Destination = dest
		stored.UpdatedAt = time.Now()
	}
	return s.buyingOrderLocked(id)
}

func (s *Store) Verify(ctx context.Context, id int64) (*domain.BuyingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.buyingOrders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	order, err := s.buyingOrderLocked(id)
	if err != nil {
		return nil, err
	}
	if err := domain.VerifyGate(order); err != nil {
		return nil, err
	}

	stored.Verified = true
	stored.UpdatedAt = time.Now()
	return s.buyingOrderLocked(id)
}

func (s *Store) Unverify(ctx context.Context, id int64) (*domain.BuyingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.buyingOrders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	stored.Verified = false
	stored.UpdatedAt = time.Now()
	return s.buyingOrderLocked(id)
}

func (s *Store) ListUnverifiedDropship(ctx context.Context, limit int) ([]*domain.BuyingOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	var orders []*domain.BuyingOrder
	for id, stored := range s.buyingOrders {
		if stored.Verified || stored.Destination != domain.DestinationDropship {
			continue
		}
		order, err := s.buyingOrderLocked(id)
		if err != nil {
			return nil, err
		}
		if len(order.Links) == 0 {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderDate.Before(orders[j].OrderDate) })
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (s *Store) ListVerifiedSince(ctx context.Context, since time.Time) ([]*domain.BuyingOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []*domain.BuyingOrder
	for id, stored := range s.buyingOrders {
		if !stored.Verified || stored.UpdatedAt.Before(since) {
			continue
		}
		order, err := s.buyingOrderLocked(id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].UpdatedAt.Before(orders[j].UpdatedAt) })
	return orders, nil
}

func (s *Store) FindMatches(ctx context.Context, buyingOrderID int64) (*domain.MatchCandidates, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target, ok := s.buyingOrders[buyingOrderID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	candidates := &domain.MatchCandidates{
		Best:  []*domain.SellingOrder{},
		Other: []*domain.SellingOrder{},
	}

	for id, so := range s.sellingOrders {
		if so.Status.IsCanceled() || so.PersonID == nil {
			continue
		}
		person, ok := s.persons[*so.PersonID]
		if !ok {
			continue
		}
		order, err := s.sellingOrderLocked(id)
		if err != nil {
			return nil, err
		}
		switch {
		case target.ShipToName != "" && strings.EqualFold(person.Name, target.ShipToName):
			candidates.Best = append(candidates.Best, order)
		case target.ShipToZip != "" && person.Zip == target.ShipToZip:
			candidates.Other = append(candidates.Other, order)
		}
	}

	byDateDesc := func(orders []*domain.SellingOrder) {
		sort.Slice(orders, func(i, j int) bool { return orders[i].OrderDate.After(orders[j].OrderDate) })
	}
	byDateDesc(candidates.Best)
	byDateDesc(candidates.Other)
	return candidates, nil
}

func (s *Store) CreateLink(ctx context.Context, buyingOrderID, sellingOrderID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	selling, ok := s.sellingOrders[sellingOrderID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if selling.Status.IsCanceled() {
		return false, domain.NewRuleError("CANCELED_ORDER", "cannot link a canceled selling order")
	}
	if _, ok := s.buyingOrders[buyingOrderID]; !ok {
		return false, domain.ErrNotFound
	}

	for _, link := range s.links {
		if link.BuyingOrderID == buyingOrderID && link.SellingOrderID == sellingOrderID {
			return false, nil
		}
	}

	id := s.nextPK()
	s.links[id] = &domain.SellingBuyingLink{
		ID:             id,
		BuyingOrderID:  buyingOrderID,
		SellingOrderID: sellingOrderID,
		CreatedAt:      time.Now(),
	}
	return true, nil
}

func (s *Store) DeleteLink(ctx context.Context, buyingOrderID, sellingOrderID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.buyingOrders[buyingOrderID]
	if !ok {
		return false, domain.ErrNotFound
	}
	// Verified orders keep their link set frozen until unverified.
	if stored.Verified {
		return false, domain.NewRuleError("ORDER_VERIFIED", "cannot unlink a verified order; unverify first")
	}

	for id, link := range s.links {
		if link.BuyingOrderID == buyingOrderID && link.SellingOrderID == sellingOrderID {
			delete(s.links, id)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateReplacementAndLink(ctx context.Context, salesItemID, buyingOrderID int64) (*domain.SalesItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.salesItems[salesItemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if _, ok := s.buyingOrders[buyingOrderID]; !ok {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	replacement := &domain.SalesItem{
		ID:             s.nextPK(),
		SellingOrderID: source.SellingOrderID,
		SubSKU:         source.SubSKU,
		ManagerID:      source.ManagerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.salesItems[replacement.ID] = replacement

	linked := false
	for _, link := range s.links {
		if link.BuyingOrderID == buyingOrderID && link.SellingOrderID == source.SellingOrderID {
			linked = true
			break
		}
	}
	if !linked {
		id := s.nextPK()
		s.links[id] = &domain.SellingBuyingLink{
			ID:             id,
			BuyingOrderID:  buyingOrderID,
			SellingOrderID: source.SellingOrderID,
			CreatedAt:      now,
		}
	}

	copied := *replacement
	return &copied, nil
}

func (s *Store) CreateSellingOrder(ctx context.Context, order *domain.SellingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if order.Customer != nil {
		if order.Customer.ID == 0 {
			order.Customer.ID = s.nextPK()
		}
		person := *order.Customer
		s.persons[person.ID] = &person
		order.PersonID = &person.ID
	}
	if order.Status == "" {
		order.Status = domain.SellingStatusActive
	}

	order.ID = s.nextPK()
	order.CreatedAt = now
	order.UpdatedAt = now
	stored := *order
	stored.Customer = nil
	stored.Items = nil
	s.sellingOrders[order.ID] = &stored

	for _, item := range order.Items {
		item.ID = s.nextPK()
		item.SellingOrderID = order.ID
		item.CreatedAt = now
		item.UpdatedAt = now
		copied := *item
		s.salesItems[item.ID] = &copied
	}
	return nil
}

func (s *Store) GetSellingOrder(ctx context.Context, id int64) (*domain.SellingOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sellingOrderLocked(id)
}

func (s *Store) sellingOrderLocked(id int64) (*domain.SellingOrder, error) {
	stored, ok := s.sellingOrders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	order := *stored
	if order.PersonID != nil {
		if person, ok := s.persons[*order.PersonID]; ok {
			copied := *person
			order.Customer = &copied
		}
	}
	order.Items = nil
	for _, item := range s.salesItems {
		if item.SellingOrderID == id {
			copied := *item
			order.Items = append(order.Items, &copied)
		}
	}
	sort.Slice(order.Items, func(i, j int) bool { return order.Items[i].ID < order.Items[j].ID })
	return &order, nil
}

func (s *Store) ListSellingOrders(ctx context.Context, limit, offset int) ([]*domain.SellingOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.sellingOrders))
	for id := range s.sellingOrders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return []*domain.SellingOrder{}, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}

	orders := make([]*domain.SellingOrder, 0, end-offset)
	for _, id := range ids[offset:end] {
		order, err := s.sellingOrderLocked(id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *Store) GetItem(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.inventory[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *Store) CopyItem(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.inventory[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	copy := &domain.InventoryItem{
		ID:            s.nextPK(),
		BuyingOrderID: source.BuyingOrderID,
		ProductID:     source.ProductID,
		SKU:           source.SKU,
		TotalCost:     source.TotalCost,
		ShippingCost:  source.ShippingCost,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.inventory[copy.ID] = copy
	copied := *copy
	return &copied, nil
}

func (s *Store) UseTrackingForAll(ctx context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.inventory[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if source.TrackingID == nil {
		return 0, domain.NewRuleError("NO_TRACKING", "item has no tracking to propagate")
	}

	updated := 0
	for _, sibling := range s.inventory {
		if sibling.BuyingOrderID == source.BuyingOrderID && sibling.ID != source.ID {
			trackingID := *source.TrackingID
			sibling.TrackingID = &trackingID
			sibling.UpdatedAt = time.Now()
			updated++
		}
	}
	return updated, nil
}

func (s *Store) AttachTracking(ctx context.Context, itemID, trackingID int64) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trackings[trackingID]; !ok {
		return nil, domain.ErrNotFound
	}
	item, ok := s.inventory[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	item.TrackingID = &trackingID
	item.UpdatedAt = time.Now()
	copied := *item
	return &copied, nil
}

func (s *Store) UpdateCosts(ctx context.Context, id int64, totalCost, shippingCost *decimal.Decimal) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.inventory[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if totalCost != nil {
		item.TotalCost = totalCost
	}
	if shippingCost != nil {
		item.ShippingCost = shippingCost
	}
	item.UpdatedAt = time.Now()
	copied := *item
	return &copied, nil
}

func (s *Store) CreateTracking(ctx context.Context, t *domain.Tracking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Status == "" {
		t.Status = domain.TrackingNotStarted
	}
	t.ID = s.nextPK()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	stored := *t
	s.trackings[t.ID] = &stored
	return nil
}

func (s *Store) GetTracking(ctx context.Context, id int64) (*domain.Tracking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trackings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *Store) FindTrackingByNumber(ctx context.Context, carrier, number string) (*domain.Tracking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.trackings {
		if t.Carrier == carrier && t.TrackingNumber == number {
			copied := *t
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) UpdateTracking(ctx context.Context, id int64, cmd domain.UpdateTracking) (*domain.Tracking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trackings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if cmd.Carrier != nil {
		t.Carrier = *cmd.Carrier
	}
	if cmd.TrackingNumber != nil {
		t.TrackingNumber = *cmd.TrackingNumber
	}
	if cmd.Status != nil {
		t.Status = *cmd.Status
	}
	if cmd.ETADate != nil {
		eta := *cmd.ETADate
		t.ETADate = &eta
	}
	t.UpdatedAt = time.Now()
	copied := *t
	return &copied, nil
}

func (s *Store) ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]*domain.Tracking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	var overdue []*domain.Tracking
	for _, t := range s.trackings {
		if t.Status.IsOpen() && t.ETADate != nil && t.ETADate.Before(asOf) {
			copied := *t
			overdue = append(overdue, &copied)
		}
	}
	sort.Slice(overdue, func(i, j int) bool { return overdue[i].ETADate.Before(*overdue[j].ETADate) })
	if len(overdue) > limit {
		overdue = overdue[:limit]
	}
	return overdue, nil
}

func (s *Store) MarkIssue(ctx context.Context, ids []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	for _, id := range ids {
		t, ok := s.trackings[id]
		if !ok || !t.Status.IsOpen() {
			continue
		}
		t.Status = domain.TrackingIssue
		t.UpdatedAt = time.Now()
		marked++
	}
	return marked, nil
}

func (s *Store) ListSellers(ctx context.Context) ([]*domain.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sellers := make([]*domain.Seller, 0, len(s.sellers))
	for _, seller := range s.sellers {
		copied := *seller
		sellers = append(sellers, &copied)
	}
	sort.Slice(sellers, func(i, j int) bool { return sellers[i].Name < sellers[j].Name })
	return sellers, nil
}

func (s *Store) SearchProducts(ctx context.Context, search string, limit, offset int) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	needle := strings.ToLower(search)
	var products []*domain.Product
	for _, p := range s.products {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.SKU), needle) ||
			strings.Contains(strings.ToLower(p.Model), needle) ||
			strings.Contains(strings.ToLower(p.MPN), needle) {
			copied := *p
			products = append(products, &copied)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].SKU < products[j].SKU })

	if offset >= len(products) {
		return []*domain.Product{}, nil
	}
	end := offset + limit
	if end > len(products) {
		end = len(products)
	}
	return products[offset:end], nil
}

func valueOr(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
