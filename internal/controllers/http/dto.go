package http

import "encoding/json"

type CreateOrderResponse struct {
	InitPoint    string `json:"initpoint"`
	OrderID      string `json:"orderId"`
	PreferenceID string `json:"preferenceId"`
}

// webhookBody covers the provider's notification payload shape; the same
// fields may instead arrive as query parameters.
type webhookBody struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
	Data  struct {
		ID flexibleID `json:"id"`
	} `json:"data"`
}

// flexibleID tolerates the payment id arriving as a JSON string or number.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexibleID(n.String())
	}
	return nil
}

func (f flexibleID) String() string { return string(f) }
