package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra/payments"
	"checkout-service/internal/mocks"
	"checkout-service/internal/repository/memory"
	"checkout-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// The shippingCost field is ignored: the server computes its own fee.
const deliveryBody = `{
	"items": [{"title": "Bread", "quantity": 2, "unitprice": 1000}],
	"shippingOption": "delivery",
	"shippingCost": 10,
	"delivery": {"name": "A", "phone": "123", "address": "X", "commune": "coquimbo"}
}`

func newTestRouter(t *testing.T, client payments.PaymentClientInterface, adminToken string) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	checkout := services.NewCheckoutService(store, client, nil, log, services.CheckoutOptions{
		DeliveryFee: 4990,
	})
	reconciler := services.NewReconcileService(store, client, nil, log)
	queries := services.NewQueryService(store)

	h := NewHandler(checkout, reconciler, queries, nil, log, adminToken)

	r := gin.New()
	r.LoadHTMLGlob("../../../templates/*.html")
	h.RegisterRoutes(r)
	return r, store
}

func perform(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrder_DeliveryScenario(t *testing.T) {
	client := new(mocks.MockPaymentClient)
	client.On("CreatePreference", mock.Anything, mock.Anything).Return(&payments.Preference{
		ID:        "pref-1",
		InitPoint: "https://pay.example/init/pref-1",
	}, nil)

	r, store := newTestRouter(t, client, "")

	w := perform(r, http.MethodPost, "/orders", deliveryBody, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res CreateOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "https://pay.example/init/pref-1", res.InitPoint)
	assert.Equal(t, "pref-1", res.PreferenceID)
	require.NotEmpty(t, res.OrderID)

	stored, err := store.Get(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusCreated, stored.Status)
	assert.Equal(t, 4990.0, stored.ShippingCost)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Bread", stored.Items[0].Title)
	assert.Equal(t, "Envío (Delivery)", stored.Items[1].Title)
	assert.Equal(t, "Coquimbo", stored.CustomerDetail.Delivery.Commune)
}

func TestCreateOrder_MalformedJSON(t *testing.T) {
	r, _ := newTestRouter(t, new(mocks.MockPaymentClient), "")

	w := perform(r, http.MethodPost, "/orders", "{", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrder_ValidationFailureStoresNothing(t *testing.T) {
	client := new(mocks.MockPaymentClient)
	r, store := newTestRouter(t, client, "")

	body := `{"items": [], "shippingOption": "delivery", "delivery": {"name": "A", "phone": "1", "address": "X"}}`
	w := perform(r, http.MethodPost, "/orders", body, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")

	orders, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
	client.AssertNotCalled(t, "CreatePreference", mock.Anything, mock.Anything)
}

func TestCreateOrder_NoCredential(t *testing.T) {
	r, _ := newTestRouter(t, nil, "")

	w := perform(r, http.MethodPost, "/orders", deliveryBody, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "credential")
}

func TestCreateOrder_UpstreamStatusPassthrough(t *testing.T) {
	client := new(mocks.MockPaymentClient)
	client.On("CreatePreference", mock.Anything, mock.Anything).
		Return(nil, &payments.UpstreamError{StatusCode: 422, Body: `{"message":"invalid items"}`})

	r, store := newTestRouter(t, client, "")

	w := perform(r, http.MethodPost, "/orders", deliveryBody, nil)
	assert.Equal(t, 422, w.Code)
	assert.Contains(t, w.Body.String(), "invalid items")

	// The order stays stored despite the provider failure.
	orders, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestGetOrder_NotFound(t *testing.T) {
	r, _ := newTestRouter(t, new(mocks.MockPaymentClient), "")

	w := perform(r, http.MethodGet, "/orders/never-created", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestGetOrder_ReturnsEnrichedRecord(t *testing.T) {
	r, store := newTestRouter(t, new(mocks.MockPaymentClient), "")

	order := domain.Order{
		ID:     "ord-1",
		Status: domain.StatusCreated,
		Items: []domain.Item{
			{Title: "Bread", Quantity: 2, UnitPrice: 1000, Currency: domain.Currency},
		},
		ShippingOption: domain.ShippingPickup,
		CustomerDetail: domain.CustomerDetail{
			Pickup: &domain.PickupDetail{Name: "Luis", Phone: "123"},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, store.Put(context.Background(), &order))

	w := perform(r, http.MethodGet, "/orders/ord-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"detailText":"Retiro en tienda: Luis, 123"`)
	assert.Contains(t, w.Body.String(), `"total":2000`)
}

func TestWebhook_UnknownOrderStillReturns200(t *testing.T) {
	fetched := make(chan struct{})
	client := new(mocks.MockPaymentClient)
	client.On("GetPayment", mock.Anything, "999").
		Run(func(mock.Arguments) { close(fetched) }).
		Return(&payments.Payment{
			ID:                999,
			Status:            "approved",
			ExternalReference: "foreign-order",
		}, nil)

	r, store := newTestRouter(t, client, "")

	order := domain.Order{ID: "ord-1", Status: domain.StatusCreated, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, store.Put(context.Background(), &order))

	w := perform(r, http.MethodPost, "/webhook?topic=payment&id=999", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	select {
	case <-fetched:
	case <-time.After(time.Second):
		t.Fatal("payment was never fetched")
	}

	got, err := store.Get(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCreated, got.Status)
}

func TestWebhook_BodyNotificationReconciles(t *testing.T) {
	client := new(mocks.MockPaymentClient)
	client.On("GetPayment", mock.Anything, "999").Return(&payments.Payment{
		ID:                999,
		Status:            "approved",
		StatusDetail:      "accredited",
		ExternalReference: "ord-1",
	}, nil)

	r, store := newTestRouter(t, client, "")

	order := domain.Order{ID: "ord-1", Status: domain.StatusCreated, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, store.Put(context.Background(), &order))

	w := perform(r, http.MethodPost, "/webhook", `{"type":"payment","data":{"id":"999"}}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	require.Eventually(t, func() bool {
		got, err := store.Get(context.Background(), "ord-1")
		return err == nil && got.Status == domain.StatusApproved
	}, time.Second, 10*time.Millisecond)

	got, err := store.Get(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "999", got.PaymentID)
	assert.Equal(t, "accredited", got.PaymentStatusDetail)
}

func TestWebhook_NonPaymentTopicIsIgnored(t *testing.T) {
	client := new(mocks.MockPaymentClient)
	r, _ := newTestRouter(t, client, "")

	w := perform(r, http.MethodGet, "/webhook?topic=merchant_order&id=123", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	time.Sleep(50 * time.Millisecond)
	client.AssertNotCalled(t, "GetPayment", mock.Anything, mock.Anything)
}

func TestWebhook_MissingIDIsIgnored(t *testing.T) {
	client := new(mocks.MockPaymentClient)
	r, _ := newTestRouter(t, client, "")

	w := perform(r, http.MethodPost, "/webhook?topic=payment", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	time.Sleep(50 * time.Millisecond)
	client.AssertNotCalled(t, "GetPayment", mock.Anything, mock.Anything)
}

func TestAdminGate(t *testing.T) {
	tests := []struct {
		name         string
		adminToken   string
		authz        string
		expectedCode int
	}{
		{"gate disabled when unset", "", "", http.StatusOK},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"malformed header", "s3cret", "Token s3cret", http.StatusUnauthorized},
		{"wrong secret", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"correct secret", "s3cret", "Bearer s3cret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(t, new(mocks.MockPaymentClient), tt.adminToken)

			headers := map[string]string{}
			if tt.authz != "" {
				headers["Authorization"] = tt.authz
			}

			w := perform(r, http.MethodGet, "/orders", "", headers)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestListOrders_SortedMostRecentFirst(t *testing.T) {
	r, store := newTestRouter(t, new(mocks.MockPaymentClient), "")

	base := time.Now()
	older := domain.Order{ID: "older", Status: domain.StatusCreated, CreatedAt: base.Add(-time.Hour), UpdatedAt: base.Add(-time.Hour)}
	newer := domain.Order{ID: "newer", Status: domain.StatusCreated, CreatedAt: base, UpdatedAt: base}
	require.NoError(t, store.Put(context.Background(), &older))
	require.NoError(t, store.Put(context.Background(), &newer))

	w := perform(r, http.MethodGet, "/orders", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "newer", out[0]["id"])
	assert.Equal(t, "older", out[1]["id"])
}

func TestListApprovedPayments_FiltersByStatus(t *testing.T) {
	r, store := newTestRouter(t, new(mocks.MockPaymentClient), "")

	now := time.Now()
	approved := domain.Order{ID: "approved", Status: domain.StatusApproved, PaymentID: "999", CreatedAt: now, UpdatedAt: now}
	pending := domain.Order{ID: "pending", Status: domain.StatusPending, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Put(context.Background(), &approved))
	require.NoError(t, store.Put(context.Background(), &pending))

	w := perform(r, http.MethodGet, "/payments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "approved", out[0]["id"])
}

func TestAdminOrdersView_RendersHTML(t *testing.T) {
	r, store := newTestRouter(t, new(mocks.MockPaymentClient), "s3cret")

	order := domain.Order{
		ID:     "ord-html",
		Status: domain.StatusApproved,
		Items: []domain.Item{
			{Title: "Bread", Quantity: 2, UnitPrice: 1000, Currency: domain.Currency},
		},
		CustomerDetail: domain.CustomerDetail{
			Pickup: &domain.PickupDetail{Name: "Luis", Phone: "123"},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, store.Put(context.Background(), &order))

	w := perform(r, http.MethodGet, "/admin/orders", "", map[string]string{
		"Authorization": "Bearer s3cret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "ord-html")
	assert.Contains(t, w.Body.String(), "Retiro en tienda: Luis, 123")
}
