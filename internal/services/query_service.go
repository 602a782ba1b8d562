package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"
)

// EnrichedOrder is the read model: the stored record plus display fields
// derived on the way out. Nothing here is written back to the store.
type EnrichedOrder struct {
	domain.Order
	Detail     string  `json:"detail"`
	DetailText string  `json:"detailText"`
	Total      float64 `json:"total"`
}

type QueryService struct {
	store repository.OrderStore
}

func NewQueryService(store repository.OrderStore) *QueryService {
	return &QueryService{store: store}
}

func (s *QueryService) GetOrder(ctx context.Context, id string) (*EnrichedOrder, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	enriched := enrich(*o)
	return &enriched, nil
}

// ListOrders returns every order, most recent first. The underlying store
// lists in insertion order, so the stable sort keeps ties in that order.
func (s *QueryService) ListOrders(ctx context.Context) ([]EnrichedOrder, error) {
	orders, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := enrichAll(orders)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListApprovedPayments returns approved orders sorted by when their status
// last changed, falling back to creation time.
func (s *QueryService) ListApprovedPayments(ctx context.Context) ([]EnrichedOrder, error) {
	orders, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	approved := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == domain.StatusApproved {
			approved = append(approved, o)
		}
	}

	out := enrichAll(approved)
	sort.SliceStable(out, func(i, j int) bool {
		return effectiveTime(&out[i].Order).After(effectiveTime(&out[j].Order))
	})
	return out, nil
}

func effectiveTime(o *domain.Order) time.Time {
	if !o.UpdatedAt.IsZero() {
		return o.UpdatedAt
	}
	return o.CreatedAt
}

func enrichAll(orders []domain.Order) []EnrichedOrder {
	out := make([]EnrichedOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, enrich(o))
	}
	return out
}

func enrich(o domain.Order) EnrichedOrder {
	text := detailText(&o)
	return EnrichedOrder{
		Order:      o,
		Detail:     text,
		DetailText: text,
		Total:      o.Total(),
	}
}

// detailText renders the customer detail variant as a single display line.
func detailText(o *domain.Order) string {
	switch {
	case o.CustomerDetail.Delivery != nil:
		d := o.CustomerDetail.Delivery
		parts := []string{d.Name, d.Phone, d.Address}
		if d.Commune != "" {
			parts = append(parts, d.Commune)
		}
		line := "Delivery: " + strings.Join(parts, ", ")
		if d.Notes != "" {
			line += fmt.Sprintf(" (notas: %s)", d.Notes)
		}
		return line
	case o.CustomerDetail.Pickup != nil:
		p := o.CustomerDetail.Pickup
		line := "Retiro en tienda: " + p.Name + ", " + p.Phone
		if p.Rut != "" {
			line += ", RUT " + p.Rut
		}
		return line
	default:
		return ""
	}
}
