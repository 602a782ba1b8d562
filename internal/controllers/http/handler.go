package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"checkout-service/internal/infra/payments"
	"checkout-service/internal/services"
	"checkout-service/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const listCacheTTL = 10 * time.Second

type Handler struct {
	checkout   *services.CheckoutService
	reconciler *services.ReconcileService
	queries    *services.QueryService
	rdb        *redis.Client
	log        *slog.Logger
	adminToken string
}

func NewHandler(checkout *services.CheckoutService, reconciler *services.ReconcileService, queries *services.QueryService, rdb *redis.Client, log *slog.Logger, adminToken string) *Handler {
	return &Handler{
		checkout:   checkout,
		reconciler: reconciler,
		queries:    queries,
		rdb:        rdb,
		log:        log,
		adminToken: adminToken,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/:id", h.GetOrder)

	// The provider probes with GET before delivering via POST.
	r.POST("/webhook", h.Webhook)
	r.GET("/webhook", h.Webhook)

	gated := r.Group("/", AdminGate(h.adminToken))
	gated.GET("/orders", h.ListOrders)
	gated.GET("/payments", h.ListApprovedPayments)

	admin := r.Group("/admin", AdminGate(h.adminToken))
	admin.GET("/orders", h.AdminOrdersView)
	admin.GET("/payments", h.AdminPaymentsView)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var sub validator.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, err := validator.Validate(sub)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.checkout.CreateOrder(c.Request.Context(), v)
	if err != nil {
		h.writeCheckoutError(c, err)
		return
	}

	h.invalidateListCaches(c.Request.Context())

	c.JSON(http.StatusOK, CreateOrderResponse{
		InitPoint:    res.InitPoint,
		OrderID:      res.OrderID,
		PreferenceID: res.PreferenceID,
	})
}

func (h *Handler) writeCheckoutError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNoCredential) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": services.ErrNoCredential.Error()})
		return
	}

	var upstream *payments.UpstreamError
	if errors.As(err, &upstream) {
		c.JSON(upstream.StatusCode, gin.H{"error": "payment provider error", "detail": upstream.Body})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.queries.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}

// Webhook acknowledges every notification with a 200 before any work
// happens; reconciliation runs detached so its outcome cannot reach the
// response already sent.
func (h *Handler) Webhook(c *gin.Context) {
	n := notificationFrom(c)
	c.Status(http.StatusOK)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := h.reconciler.Reconcile(ctx, n); err != nil {
			h.log.Error("webhook reconciliation failed", "paymentId", n.PaymentID, "error", err)
		}
	}()
}

func notificationFrom(c *gin.Context) services.Notification {
	topic := c.Query("topic")
	if topic == "" {
		topic = c.Query("type")
	}

	id := c.Query("id")
	if id == "" {
		id = c.Query("data.id")
	}

	if (id == "" || topic == "") && c.Request.Body != nil {
		var body webhookBody
		if err := json.NewDecoder(c.Request.Body).Decode(&body); err == nil {
			if topic == "" {
				topic = body.Topic
				if topic == "" {
					topic = body.Type
				}
			}
			if id == "" {
				id = body.Data.ID.String()
			}
		}
	}

	return services.Notification{Topic: topic, PaymentID: id}
}

func (h *Handler) ListOrders(c *gin.Context) {
	h.serveList(c, services.OrdersListCacheKey, h.queries.ListOrders)
}

func (h *Handler) ListApprovedPayments(c *gin.Context) {
	h.serveList(c, services.ApprovedPaymentsCacheKey, h.queries.ListApprovedPayments)
}

func (h *Handler) serveList(c *gin.Context, cacheKey string, list func(context.Context) ([]services.EnrichedOrder, error)) {
	ctx := c.Request.Context()

	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Result(); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			return
		}
	}

	orders, err := list(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.rdb != nil {
		if data, err := json.Marshal(orders); err == nil {
			h.rdb.Set(ctx, cacheKey, data, listCacheTTL)
		}
	}

	c.JSON(http.StatusOK, orders)
}

func (h *Handler) AdminOrdersView(c *gin.Context) {
	orders, err := h.queries.ListOrders(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to list orders")
		return
	}
	c.HTML(http.StatusOK, "orders.html", gin.H{"Orders": orders})
}

func (h *Handler) AdminPaymentsView(c *gin.Context) {
	orders, err := h.queries.ListApprovedPayments(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to list payments")
		return
	}
	c.HTML(http.StatusOK, "payments.html", gin.H{"Orders": orders})
}

func (h *Handler) invalidateListCaches(ctx context.Context) {
	if h.rdb == nil {
		return
	}
	h.rdb.Del(ctx, services.OrdersListCacheKey, services.ApprovedPaymentsCacheKey)
}
