// internal/service/reconcile_service.go
package service

import (
	"context"

	"github.com/cheapr/opsboard/internal/cache"
	"github.com/cheapr/opsboard/internal/domain"
	"github.com/cheapr/opsboard/internal/repository"
	"github.com/rs/zerolog/log"
)

// ReconcileService drives the purchase reconciliation workflow: routing
// orders to house or dropship, matching purchases to sales, linking and
// verifying. Match candidate sets are cached per buying order and dropped
// on any mutation that can change them.
type ReconcileService struct {
	orders  repository.BuyingOrderRepository
	matches repository.MatchRepository
	cache   cache.MatchCache
}

func NewReconcileService(
	orders repository.BuyingOrderRepository,
	matches repository.MatchRepository,
	matchCache cache.MatchCache,
) *ReconcileService {
	return &ReconcileService{
		orders:  orders,
		matches: matches,
		cache:   matchCache,
	}
}

func (s *ReconcileService) CreateBuyingOrder(ctx context.Context, order *domain.BuyingOrder) error {
	if order.Destination != domain.DestinationUnset && !order.Destination.IsValid() {
		return domain.NewRuleError("INVALID_DESTINATION", "destination must be House or Dropship")
	}
	return s.orders.CreateBuyingOrder(ctx, order)
}

func (s *ReconcileService) GetBuyingOrder(ctx context.Context, id int64) (*domain.BuyingOrder, error) {
	return s.orders.GetBuyingOrder(ctx, id)
}

func (s *ReconcileService) ListBuyingOrders(ctx context.Context, limit, offset int) ([]*domain.BuyingOrder, error) {
	return s.orders.ListBuyingOrders(ctx, limit, offset)
}

// FindMatches returns candidate selling orders for a purchase, cached per
// buying order id.
func (s *ReconcileService) FindMatches(ctx context.Context, buyingOrderID int64) (*domain.MatchCandidates, error) {
	if cached, ok, err := s.cache.GetCandidates(ctx, buyingOrderID); err != nil {
		log.Warn().Err(err).Int64("buying_order", buyingOrderID).Msg("match cache read failed")
	} else if ok {
		return cached, nil
	}

	candidates, err := s.matches.FindMatches(ctx, buyingOrderID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetCandidates(ctx, buyingOrderID, candidates); err != nil {
		log.Warn().Err(err).Int64("buying_order", buyingOrderID).Msg("match cache write failed")
	}

	return candidates, nil
}

// PickSelling links a selling order to a buying order. Picking an
// already-linked pair is a no-op that reports created=false.
func (s *ReconcileService) PickSelling(ctx context.Context, cmd domain.LinkSale) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	created, err := s.matches.CreateLink(ctx, cmd.BuyingOrderID, cmd.SellingOrderID)
	if err != nil {
		return false, err
	}

	if created {
		s.invalidate(ctx, cmd.BuyingOrderID)
	}
	return created, nil
}

// RemoveSelling unlinks a selling order from a buying order.
func (s *ReconcileService) RemoveSelling(ctx context.Context, cmd domain.LinkSale) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	deleted, err := s.matches.DeleteLink(ctx, cmd.BuyingOrderID, cmd.SellingOrderID)
	if err != nil {
		return false, err
	}

	if deleted {
		s.invalidate(ctx, cmd.BuyingOrderID)
	}
	return deleted, nil
}

// CreateReplacement synthesizes a fresh sales item next to an existing one
// and links its selling order to the purchase, as one unit of work.
func (s *ReconcileService) CreateReplacement(ctx context.Context, salesItemID, buyingOrderID int64) (*domain.SalesItem, error) {
	replacement, err := s.matches.CreateReplacementAndLink(ctx, salesItemID, buyingOrderID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, buyingOrderID)
	return replacement, nil
}

// SetDestination routes an order. Switching to dropship also returns the
// match candidates so the caller can render the picker in one round trip.
func (s *ReconcileService) SetDestination(ctx context.Context, id int64, cmd domain.SetDestination) (*domain.BuyingOrder, *domain.MatchCandidates, error) {
	if err := cmd.Validate(); err != nil {
		return nil, nil, err
	}

	order, err := s.orders.SetDestination(ctx, id, cmd.Destination)
	if err != nil {
		return nil, nil, err
	}
	s.invalidate(ctx, id)

	if cmd.Destination != domain.DestinationDropship {
		return order, nil, nil
	}

	candidates, err := s.FindMatches(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return order, candidates, nil
}

// SetVerified toggles the verified flag. Verification re-checks the gate
// inside the repository transaction.
func (s *ReconcileService) SetVerified(ctx context.Context, id int64, cmd domain.SetVerified) (*domain.BuyingOrder, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if cmd.Verified {
		return s.orders.Verify(ctx, id)
	}
	return s.orders.Unverify(ctx, id)
}

func (s *ReconcileService) invalidate(ctx context.Context, buyingOrderID int64) {
	if err := s.cache.Invalidate(ctx, buyingOrderID); err != nil {
		log.Warn().Err(err).Int64("buying_order", buyingOrderID).Msg("match cache invalidation failed")
	}
}
