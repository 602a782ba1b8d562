package services

import (
	"io"
	"log/slog"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validatedDeliveryOrder() *validator.ValidatedOrder {
	return &validator.ValidatedOrder{
		Items: []domain.Item{
			{Title: "Bread", Quantity: 2, UnitPrice: 1000, Currency: domain.Currency},
		},
		ShippingOption: domain.ShippingDelivery,
		CustomerDetail: domain.CustomerDetail{
			Delivery: &domain.DeliveryDetail{
				Name:    "Ana",
				Phone:   "+56911112222",
				Address: "Calle Falsa 123",
				Commune: "Coquimbo",
			},
		},
	}
}

func validatedPickupOrder() *validator.ValidatedOrder {
	return &validator.ValidatedOrder{
		Items: []domain.Item{
			{Title: "Cake", Quantity: 1, UnitPrice: 8500, Currency: domain.Currency},
		},
		ShippingOption: domain.ShippingPickup,
		CustomerDetail: domain.CustomerDetail{
			Pickup: &domain.PickupDetail{Name: "Luis", Phone: "+56933334444"},
		},
	}
}

func storedOrder(id string, status domain.OrderStatus, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:     id,
		Status: status,
		Items: []domain.Item{
			{Title: "Bread", Quantity: 2, UnitPrice: 1000, Currency: domain.Currency},
		},
		ShippingOption: domain.ShippingPickup,
		CustomerDetail: domain.CustomerDetail{
			Pickup: &domain.PickupDetail{Name: "Luis", Phone: "+56933334444"},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

const (
	TestDeliveryFee     = float64(4990)
	TestNotificationURL = "https://shop.example/webhook"
	TestPreferenceID    = "pref-123"
	TestInitPoint       = "https://pay.example/init/pref-123"
)
