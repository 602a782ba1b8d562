package payments

import "context"

type PaymentClientInterface interface {
	CreatePreference(ctx context.Context, pref *PreferenceRequest) (*Preference, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
}

var _ PaymentClientInterface = (*Client)(nil)
