package domain

import "time"

type OrderCreatedEvent struct {
	OrderID      string    `json:"orderId"`
	PreferenceID string    `json:"preferenceId,omitempty"`
	Total        float64   `json:"total"`
	CreatedAt    time.Time `json:"createdAt"`
}

type OrderReconciledEvent struct {
	OrderID      string      `json:"orderId"`
	PaymentID    string      `json:"paymentId"`
	Status       OrderStatus `json:"status"`
	ReconciledAt time.Time   `json:"reconciledAt"`
}
