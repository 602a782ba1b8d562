package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"checkout-service/internal/domain"
)

const (
	maxItems    = 50
	maxQuantity = 99
	maxTextLen  = 120
)

// Error carries the rejection reason back to the HTTP layer; it never
// escapes as anything but a 400.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func errf(format string, args ...any) *Error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// Submission is the raw client payload before any validation. Quantity and
// unit price are accepted as any JSON scalar and coerced to numbers.
type Submission struct {
	Items          []RawItem    `json:"items"`
	ShippingOption string       `json:"shippingOption"`
	Delivery       *RawDelivery `json:"delivery,omitempty"`
	Pickup         *RawPickup   `json:"pickup,omitempty"`
}

type RawItem struct {
	Title     string `json:"title"`
	Quantity  any    `json:"quantity"`
	UnitPrice any    `json:"unitprice"`
}

type RawDelivery struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Commune string `json:"commune"`
	Notes   string `json:"notes"`
}

type RawPickup struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Rut   string `json:"rut"`
}

// ValidatedOrder is the output of a successful validation; the customer
// detail variant always matches the shipping option.
type ValidatedOrder struct {
	Items          []domain.Item
	ShippingOption domain.ShippingOption
	CustomerDetail domain.CustomerDetail
}

// communeLabels maps lowered commune input to its canonical label.
// Unrecognized communes pass through verbatim.
var communeLabels = map[string]string{
	"la serena":  "La Serena",
	"coquimbo":   "Coquimbo",
	"andacollo":  "Andacollo",
	"la higuera": "La Higuera",
	"paihuano":   "Paihuano",
	"vicuna":     "Vicuña",
	"vicuña":     "Vicuña",
	"ovalle":     "Ovalle",
}

// Validate is a pure function of the submission: it either produces a
// normalized order or a *Error with the rejection reason.
func Validate(sub Submission) (*ValidatedOrder, error) {
	items, err := validateItems(sub.Items)
	if err != nil {
		return nil, err
	}

	shipping := NormalizeShipping(sub.ShippingOption)

	detail, err := validateDetail(shipping, sub.Delivery, sub.Pickup)
	if err != nil {
		return nil, err
	}

	return &ValidatedOrder{
		Items:          items,
		ShippingOption: shipping,
		CustomerDetail: detail,
	}, nil
}

// NormalizeShipping maps anything but a literal "pickup" to delivery.
func NormalizeShipping(raw string) domain.ShippingOption {
	if strings.EqualFold(strings.TrimSpace(raw), string(domain.ShippingPickup)) {
		return domain.ShippingPickup
	}
	return domain.ShippingDelivery
}

func validateItems(raw []RawItem) ([]domain.Item, error) {
	if len(raw) == 0 {
		return nil, errf("items must not be empty")
	}
	if len(raw) > maxItems {
		return nil, errf("too many items (max %d)", maxItems)
	}

	items := make([]domain.Item, 0, len(raw))
	for i, r := range raw {
		title := cleanText(r.Title)
		if title == "" {
			return nil, errf("item %d: title is required", i)
		}

		qty, ok := coerceNumber(r.Quantity)
		if !ok || !isFinite(qty) || qty <= 0 {
			return nil, errf("item %d: invalid quantity", i)
		}
		if qty > maxQuantity {
			return nil, errf("item %d: quantity exceeds %d", i, maxQuantity)
		}

		price, ok := coerceNumber(r.UnitPrice)
		if !ok || !isFinite(price) || price <= 0 {
			return nil, errf("item %d: invalid unit price", i)
		}

		items = append(items, domain.Item{
			Title:     title,
			Quantity:  int(qty),
			UnitPrice: price,
			Currency:  domain.Currency,
		})
	}
	return items, nil
}

func validateDetail(shipping domain.ShippingOption, del *RawDelivery, pick *RawPickup) (domain.CustomerDetail, error) {
	switch shipping {
	case domain.ShippingPickup:
		if pick == nil {
			return domain.CustomerDetail{}, errf("pickup detail is required")
		}
		name := cleanText(pick.Name)
		phone := cleanText(pick.Phone)
		if name == "" || phone == "" {
			return domain.CustomerDetail{}, errf("pickup requires name and phone")
		}
		return domain.CustomerDetail{Pickup: &domain.PickupDetail{
			Name:  name,
			Phone: phone,
			Rut:   cleanText(pick.Rut),
		}}, nil

	default:
		if del == nil {
			return domain.CustomerDetail{}, errf("delivery detail is required")
		}
		name := cleanText(del.Name)
		phone := cleanText(del.Phone)
		address := cleanText(del.Address)
		if name == "" || phone == "" || address == "" {
			return domain.CustomerDetail{}, errf("delivery requires name, phone and address")
		}
		return domain.CustomerDetail{Delivery: &domain.DeliveryDetail{
			Name:    name,
			Phone:   phone,
			Address: address,
			Commune: NormalizeCommune(del.Commune),
			Notes:   cleanText(del.Notes),
		}}, nil
	}
}

// NormalizeCommune returns the canonical label when the commune is known,
// otherwise the trimmed input verbatim.
func NormalizeCommune(raw string) string {
	trimmed := cleanText(raw)
	if label, ok := communeLabels[strings.ToLower(trimmed)]; ok {
		return label
	}
	return trimmed
}

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxTextLen {
		s = string(r[:maxTextLen])
	}
	return s
}

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
