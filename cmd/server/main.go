package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"checkout-service/internal/config"
	controllers "checkout-service/internal/controllers/http"
	"checkout-service/internal/infra/mysql"
	"checkout-service/internal/infra/payments"
	"checkout-service/internal/infra/rabbitmq"
	"checkout-service/internal/logging"
	"checkout-service/internal/repository"
	"checkout-service/internal/repository/memory"
	mysqlrepo "checkout-service/internal/repository/mysql"
	"checkout-service/internal/services"
	"checkout-service/internal/shutdown"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	log := logging.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config: load", "error", err)
		os.Exit(1)
	}

	var store repository.OrderStore
	if cfg.UseMySQL {
		db, err := mysql.NewMySQLFromEnv()
		if err != nil {
			log.Error("db: connect", "error", err)
			os.Exit(1)
		}
		store = mysqlrepo.NewOrderStore(db)
		log.Info("using MySQL order store")
	} else {
		store = memory.NewStore()
		log.Info("using in-memory order store")
	}

	var payClient payments.PaymentClientInterface
	if cfg.AccessToken != "" {
		payClient = payments.NewClient(cfg.PaymentAPIBase, cfg.AccessToken, 10*time.Second)
	} else {
		log.Warn("MP_ACCESS_TOKEN not set; provider calls disabled")
	}

	var publisher rabbitmq.PublisherInterface
	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, "order.exchange")
		if err != nil {
			log.Error("failed to init publisher", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	}

	checkout := services.NewCheckoutService(store, payClient, publisher, log, services.CheckoutOptions{
		DeliveryFee:     cfg.DeliveryFee,
		NotificationURL: cfg.NotificationURL,
		SuccessURL:      cfg.SuccessURL,
		FailureURL:      cfg.FailureURL,
		PendingURL:      cfg.PendingURL,
	})
	reconciler := services.NewReconcileService(store, payClient, publisher, log)
	queries := services.NewQueryService(store)

	var rdb *redis.Client
	if cfg.RedisHost != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.RedisHost + ":6379",
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		reconciler.SetRedisClient(rdb)
	}

	handler := controllers.NewHandler(checkout, reconciler, queries, rdb, log, cfg.AdminToken)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.LoadHTMLGlob(cfg.TemplatesGlob)

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	go func() {
		log.Info("starting checkout service", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server run", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
}
