package repository

import (
	"context"

	"checkout-service/internal/domain"
)

// OrderStore is the single source of truth for order state. Implementations
// return (nil, nil) from Get and Update when the id is unknown; callers map
// that to their own not-found handling.
//
// Update applies fn to the stored record atomically with respect to other
// Updates on the same id, so concurrent reconciliations cannot lose writes.
type OrderStore interface {
	Put(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	Update(ctx context.Context, id string, fn func(*domain.Order)) (*domain.Order, error)
}
