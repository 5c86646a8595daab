package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/payflow/payment-service/internal/awsx"
	"github.com/payflow/payment-service/internal/handlers"
	"github.com/payflow/payment-service/internal/idempotency"
	"github.com/payflow/payment-service/internal/payments"
	"github.com/payflow/payment-service/internal/processor"
	"github.com/payflow/payment-service/internal/service"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterPaymentsRoutes(r, cfg)

	return r
}

func main() {
	ctx := context.Background()

	paymentsTable := os.Getenv("PAYMENTS_TABLE")

	var store payments.Store
	var publisher *awsx.Publisher
	var metrics *awsx.Metrics
	if paymentsTable != "" {
		clients, err := awsx.NewClients(ctx)
		if err != nil {
			log.Fatalf("failed to init aws clients: %v", err)
		}
		store = payments.NewDynamoStore(clients.DynamoDB, paymentsTable)
		if queueURL := os.Getenv("PAYMENT_EVENTS_QUEUE_URL"); queueURL != "" {
			publisher = awsx.NewPublisher(clients.SQS, queueURL)
		}
		metrics = awsx.NewMetrics(clients.CloudWatch, os.Getenv("METRICS_NAMESPACE"))
	} else {
		// no table configured: in-memory store for local development
		log.Printf("PAYMENTS_TABLE not set, using in-memory store")
		store = payments.NewMemoryStore()
	}

	breaker := processor.NewBreaker(
		envInt("BREAKER_FAILURE_THRESHOLD", 3),
		time.Duration(envInt("BREAKER_COOLDOWN_SECONDS", 30))*time.Second,
	)
	breaker.OnTransition = func(to string) {
		log.Printf("[breaker] -> %s", to)
		metrics.CountBreakerTransition(context.Background(), to)
	}
	resilient := processor.NewResilient(processor.NewSimulated(), breaker, 2, time.Second)

	svc := service.NewPaymentService(store, resilient, publisher, metrics)

	cache := idempotency.NewCache(24 * time.Hour)
	go func() {
		for range time.Tick(time.Hour) {
			cache.Sweep()
		}
	}()

	cfg := handlers.HandlerConfig{
		Service:             svc,
		SupportedCurrencies: supportedCurrencies(),
		Cache:               cache,
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		// the adapter handles proxying; use adapter.ProxyWithContext for proper context propagation
		return adapter.ProxyWithContext(ctx, req)
	})
}

func supportedCurrencies() []string {
	raw := os.Getenv("SUPPORTED_CURRENCIES")
	if raw == "" {
		raw = "USD,EUR,GBP"
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", name, raw, fallback)
		return fallback
	}
	return n
}
