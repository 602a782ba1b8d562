package mysql

import (
	"context"
	"errors"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderStore is the durable OrderStore variant. The in-memory store is the
// default; this one is selected when a MySQL DSN is configured.
type orderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) repository.OrderStore {
	return &orderStore{db: db}
}

func (s *orderStore) Put(ctx context.Context, order *domain.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *orderStore) Get(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := s.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (s *orderStore) ListAll(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update locks the row for the duration of the merge so concurrent
// reconciliations of the same order serialize instead of losing writes.
func (s *orderStore) Update(ctx context.Context, id string, fn func(*domain.Order)) (*domain.Order, error) {
	var updated *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o domain.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		fn(&o)
		if err := tx.Save(&o).Error; err != nil {
			return err
		}
		updated = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
