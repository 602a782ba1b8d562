package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra/payments"
	rabbit "checkout-service/internal/infra/rabbitmq"
	"checkout-service/internal/repository"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache keys for the enriched list projections; invalidated whenever a
// reconciliation lands.
const (
	OrdersListCacheKey       = "orders:list"
	ApprovedPaymentsCacheKey = "payments:approved"
)

// Notification is what the provider's webhook carries once the transport
// details (query vs body) are stripped away.
type Notification struct {
	Topic     string
	PaymentID string
}

// ReconcileService applies authoritative payment status to stored orders.
// It runs after the webhook response has already been sent, so every error
// here is logged and goes nowhere else.
type ReconcileService struct {
	store       repository.OrderStore
	payments    payments.PaymentClientInterface
	publisher   rabbit.PublisherInterface
	log         *slog.Logger
	redisClient *redis.Client
	group       singleflight.Group
}

func NewReconcileService(store repository.OrderStore, client payments.PaymentClientInterface, pub rabbit.PublisherInterface, log *slog.Logger) *ReconcileService {
	return &ReconcileService{
		store:     store,
		payments:  client,
		publisher: pub,
		log:       log,
	}
}

func (s *ReconcileService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// Reconcile fetches the payment named by the notification and merges its
// status into the matching order. Notifications that cannot be acted on
// (wrong topic, missing id, no credential, unknown reference) are dropped
// without error: the provider already got its 200.
//
// Duplicate notifications for the same payment id collapse onto a single
// fetch-and-merge via singleflight; the merge itself is last-write-wins per
// field, so reapplying converges to the same record either way.
func (s *ReconcileService) Reconcile(ctx context.Context, n Notification) error {
	if n.Topic != "" && n.Topic != "payment" {
		return nil
	}
	if n.PaymentID == "" || s.payments == nil {
		return nil
	}

	_, err, _ := s.group.Do(n.PaymentID, func() (any, error) {
		return nil, s.fetchAndMerge(ctx, n.PaymentID)
	})
	return err
}

func (s *ReconcileService) fetchAndMerge(ctx context.Context, paymentID string) error {
	pay, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}
	if pay.ExternalReference == "" {
		s.log.Warn("payment has no external reference", "paymentId", paymentID)
		return nil
	}

	updated, err := s.store.Update(ctx, pay.ExternalReference, func(o *domain.Order) {
		o.Status = domain.OrderStatus(pay.Status)
		o.PaymentID = strconv.FormatInt(pay.ID, 10)
		o.PaymentStatusDetail = pay.StatusDetail
		o.UpdatedAt = time.Now()
	})
	if err != nil {
		return fmt.Errorf("merge payment %s: %w", paymentID, err)
	}
	if updated == nil {
		// Unknown or foreign reference; not ours to handle.
		s.log.Info("dropping notification for unknown order", "paymentId", paymentID, "externalReference", pay.ExternalReference)
		return nil
	}

	s.log.Info("order reconciled", "orderId", updated.ID, "paymentId", updated.PaymentID, "status", updated.Status)

	s.invalidateListCaches(ctx)
	s.publishOrderReconciledEvent(ctx, updated)
	return nil
}

func (s *ReconcileService) invalidateListCaches(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.Del(ctx, OrdersListCacheKey, ApprovedPaymentsCacheKey)
}

func (s *ReconcileService) publishOrderReconciledEvent(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}

	evt := domain.OrderReconciledEvent{
		OrderID:      order.ID,
		PaymentID:    order.PaymentID,
		Status:       order.Status,
		ReconciledAt: order.UpdatedAt,
	}
	if err := s.publisher.Publish(ctx, "order.reconciled", evt); err != nil {
		s.log.Error("failed to publish order.reconciled", "orderId", order.ID, "error", err)
	}
}
