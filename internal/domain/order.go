package domain

import "time"

type OrderStatus string

const (
	StatusCreated  OrderStatus = "created"
	StatusApproved OrderStatus = "approved"
	StatusRejected OrderStatus = "rejected"
	StatusPending  OrderStatus = "pending"
)

type ShippingOption string

const (
	ShippingDelivery ShippingOption = "delivery"
	ShippingPickup   ShippingOption = "pickup"
)

const Currency = "CLP"

type Item struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Currency  string  `json:"currency"`
}

type DeliveryDetail struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Commune string `json:"commune,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type PickupDetail struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Rut   string `json:"rut,omitempty"`
}

// CustomerDetail holds exactly one variant; which one is populated follows
// the order's shipping option.
type CustomerDetail struct {
	Delivery *DeliveryDetail `json:"delivery,omitempty"`
	Pickup   *PickupDetail   `json:"pickup,omitempty"`
}

type Order struct {
	ID                  string         `json:"id" gorm:"primaryKey;size:64"`
	Status              OrderStatus    `json:"status" gorm:"size:32;index"`
	Items               []Item         `json:"items" gorm:"serializer:json"`
	ShippingOption      ShippingOption `json:"shippingOption" gorm:"size:16"`
	ShippingCost        float64        `json:"shippingCost"`
	CustomerDetail      CustomerDetail `json:"customerDetail" gorm:"serializer:json"`
	PaymentID           string         `json:"paymentId,omitempty" gorm:"size:64;index"`
	PaymentStatusDetail string         `json:"paymentStatusDetail,omitempty" gorm:"size:64"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// Total is the display total over all line items, shipping line included.
func (o *Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}
