package memory

import (
	"context"
	"errors"
	"sync"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"
)

var ErrDuplicateID = errors.New("order id already exists")

// Store keeps every order for the lifetime of the process. Records are
// stored by value and handed out as copies; the only way to mutate one is
// through Update, which runs under the store lock.
type Store struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	ids    []string // insertion order, for stable listing
}

var _ repository.OrderStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{orders: make(map[string]domain.Order)}
}

func (s *Store) Put(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.ID]; exists {
		return ErrDuplicateID
	}
	s.orders[order.ID] = *order
	s.ids = append(s.ids, order.ID)
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *Store) ListAll(ctx context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Order, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.orders[id])
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, id string, fn func(*domain.Order)) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	fn(&o)
	s.orders[id] = o
	return &o, nil
}
