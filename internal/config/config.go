package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	defaultPort           = "8080"
	defaultDeliveryFee    = 4990
	defaultPaymentAPIBase = "https://api.mercadopago.com"
	defaultTemplatesGlob  = "templates/*.html"
)

// Config is the full runtime configuration. Only a handful of fields are
// required; the optional integrations (MySQL, Redis, RabbitMQ) stay off
// when their variables are unset.
type Config struct {
	Port string

	// Payment provider. An empty AccessToken is allowed at boot; order
	// creation and reconciliation then refuse to contact the provider.
	AccessToken     string
	PaymentAPIBase  string
	NotificationURL string
	SuccessURL      string
	FailureURL      string
	PendingURL      string

	// Shared secret for the admin endpoints; empty leaves them open.
	AdminToken string

	DeliveryFee float64

	TemplatesGlob string

	// Optional integrations.
	UseMySQL    bool
	RedisHost   string
	RabbitMQURL string
}

func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		AccessToken:     os.Getenv("MP_ACCESS_TOKEN"),
		PaymentAPIBase:  os.Getenv("PAYMENT_API_BASE"),
		NotificationURL: os.Getenv("NOTIFICATION_URL"),
		SuccessURL:      os.Getenv("BACK_URL_SUCCESS"),
		FailureURL:      os.Getenv("BACK_URL_FAILURE"),
		PendingURL:      os.Getenv("BACK_URL_PENDING"),

		AdminToken: os.Getenv("ADMIN_TOKEN"),

		TemplatesGlob: os.Getenv("TEMPLATES_GLOB"),

		UseMySQL:    os.Getenv("MYSQL_HOST") != "",
		RedisHost:   os.Getenv("REDIS_HOST"),
		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.PaymentAPIBase == "" {
		cfg.PaymentAPIBase = defaultPaymentAPIBase
	}
	if cfg.TemplatesGlob == "" {
		cfg.TemplatesGlob = defaultTemplatesGlob
	}

	fee, err := feeFromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg.DeliveryFee = fee

	return cfg, nil
}

func feeFromEnv() (float64, error) {
	v := os.Getenv("DELIVERY_FEE")
	if v == "" {
		return defaultDeliveryFee, nil
	}
	fee, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("DELIVERY_FEE must be a number: %w", err)
	}
	if fee < 0 {
		return 0, fmt.Errorf("DELIVERY_FEE must not be negative")
	}
	return fee, nil
}
