package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra/payments"
	rabbit "checkout-service/internal/infra/rabbitmq"
	"checkout-service/internal/repository"
	"checkout-service/internal/validator"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrNoCredential  = errors.New("payment credential not configured")
)

const deliveryItemTitle = "Envío (Delivery)"

type CheckoutResult struct {
	InitPoint    string
	OrderID      string
	PreferenceID string
}

type CheckoutOptions struct {
	DeliveryFee     float64
	NotificationURL string
	SuccessURL      string
	FailureURL      string
	PendingURL      string
}

// CheckoutService owns order creation: it persists the order first, then
// requests a payment preference from the provider.
type CheckoutService struct {
	store     repository.OrderStore
	payments  payments.PaymentClientInterface
	publisher rabbit.PublisherInterface
	log       *slog.Logger
	opts      CheckoutOptions
}

func NewCheckoutService(store repository.OrderStore, client payments.PaymentClientInterface, pub rabbit.PublisherInterface, log *slog.Logger, opts CheckoutOptions) *CheckoutService {
	return &CheckoutService{
		store:     store,
		payments:  client,
		publisher: pub,
		log:       log,
		opts:      opts,
	}
}

// CreateOrder stores the validated order in status created, then asks the
// provider for a preference. The record is written before the external call
// so a notification arriving at any point always finds it; it is never
// rolled back on provider failure.
func (s *CheckoutService) CreateOrder(ctx context.Context, v *validator.ValidatedOrder) (*CheckoutResult, error) {
	if s.payments == nil {
		return nil, ErrNoCredential
	}

	fee := 0.0
	if v.ShippingOption == domain.ShippingDelivery {
		fee = s.opts.DeliveryFee
	}

	items := make([]domain.Item, len(v.Items), len(v.Items)+1)
	copy(items, v.Items)
	if fee > 0 {
		items = append(items, domain.Item{
			Title:     deliveryItemTitle,
			Quantity:  1,
			UnitPrice: fee,
			Currency:  domain.Currency,
		})
	}

	now := time.Now()
	order := &domain.Order{
		ID:             uuid.NewString(),
		Status:         domain.StatusCreated,
		Items:          items,
		ShippingOption: v.ShippingOption,
		ShippingCost:   fee,
		CustomerDetail: v.CustomerDetail,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Put(ctx, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	pref, err := s.payments.CreatePreference(ctx, s.preferenceRequest(order))
	if err != nil {
		// The order stays in the store in status created.
		s.log.Error("create preference failed", "orderId", order.ID, "error", err)
		return nil, err
	}

	go s.publishOrderCreatedEvent(context.Background(), order, pref.ID)

	return &CheckoutResult{
		InitPoint:    pref.InitPoint,
		OrderID:      order.ID,
		PreferenceID: pref.ID,
	}, nil
}

func (s *CheckoutService) preferenceRequest(order *domain.Order) *payments.PreferenceRequest {
	items := make([]payments.PreferenceItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, payments.PreferenceItem{
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			CurrencyID: it.Currency,
		})
	}

	req := &payments.PreferenceRequest{
		Items:             items,
		ExternalReference: order.ID,
		NotificationURL:   s.opts.NotificationURL,
	}
	if s.opts.SuccessURL != "" || s.opts.FailureURL != "" || s.opts.PendingURL != "" {
		req.BackURLs = &payments.BackURLs{
			Success: s.opts.SuccessURL,
			Failure: s.opts.FailureURL,
			Pending: s.opts.PendingURL,
		}
	}
	return req
}

func (s *CheckoutService) publishOrderCreatedEvent(ctx context.Context, order *domain.Order, preferenceID string) {
	if s.publisher == nil {
		return
	}

	evt := domain.OrderCreatedEvent{
		OrderID:      order.ID,
		PreferenceID: preferenceID,
		Total:        order.Total(),
		CreatedAt:    order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, "order.created", evt); err != nil {
		s.log.Error("failed to publish order.created", "orderId", order.ID, "error", err)
	}
}
