package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vendora/backend/internal/address"
	"github.com/vendora/backend/internal/cart"
	"github.com/vendora/backend/internal/catalog"
	"github.com/vendora/backend/internal/config"
	"github.com/vendora/backend/internal/identity"
	"github.com/vendora/backend/internal/messaging"
	"github.com/vendora/backend/internal/orders"
	"github.com/vendora/backend/internal/telemetry"
)

const (
	serviceName    = "marketplace"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var placedPub, statusPub orders.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		placed := messaging.NewProducer(cfg.KafkaBrokers, messaging.TopicOrderPlaced)
		defer func() { _ = placed.Close() }()
		status := messaging.NewProducer(cfg.KafkaBrokers, messaging.TopicOrderStatusChanged)
		defer func() { _ = status.Close() }()
		placedPub, statusPub = placed, status
	} else {
		logger.Warn("KAFKA_BROKERS not set, order events will not be published")
	}

	catalogRepo := catalog.NewRepository(db)
	catalogHandler := catalog.NewHandler(catalogRepo, logger)

	cartStore := cart.NewSQLStore(db)
	cartService := cart.NewService(cartStore, catalogRepo)
	cartHandler := cart.NewHandler(cartService, logger)

	addressRepo := address.NewRepository(db)
	addressHandler := address.NewHandler(addressRepo, logger)

	orderRepo := orders.NewRepository(db, catalogRepo)
	orderService := orders.NewService(orderRepo, catalogRepo, cartStore, addressRepo, placedPub, statusPub, logger)
	orderHandler := orders.NewHandler(orderService, logger)

	auth := identity.Middleware(cfg.JWTSecret, logger)
	route := func(h http.HandlerFunc) http.Handler {
		return auth(telemetry.WithHTTPRoute(h))
	}

	mux := http.NewServeMux()

	mux.Handle("GET /cart", route(cartHandler.HandleGet))
	mux.Handle("POST /cart/items", route(cartHandler.HandleAddItem))
	mux.Handle("DELETE /cart/items/{itemId}", route(cartHandler.HandleRemoveItem))
	mux.Handle("DELETE /cart", route(cartHandler.HandleClear))

	mux.Handle("POST /orders", route(orderHandler.HandlePlace))
	mux.Handle("GET /orders", route(orderHandler.HandleListCustomerOrders))
	mux.Handle("GET /orders/{id}", route(orderHandler.HandleDetails))
	mux.Handle("GET /orders/{id}/tracking", route(orderHandler.HandleTrack))
	mux.Handle("POST /orders/{id}/complete", route(orderHandler.HandleComplete))

	mux.Handle("GET /vendor/orders", route(orderHandler.HandleListVendorOrders))
	mux.Handle("POST /vendor/orders/{id}/accept", route(orderHandler.HandleAccept))
	mux.Handle("POST /vendor/orders/{id}/reject", route(orderHandler.HandleReject))
	mux.Handle("POST /vendor/orders/{id}/out-for-delivery", route(orderHandler.HandleOutForDelivery))
	mux.Handle("POST /vendor/orders/{id}/deliver", route(orderHandler.HandleDelivered))

	mux.HandleFunc("GET /products", telemetry.WithHTTPRoute(catalogHandler.HandleListProducts))
	mux.HandleFunc("GET /products/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleGetProduct))
	mux.Handle("GET /vendor/products", route(catalogHandler.HandleListVendorProducts))
	mux.Handle("POST /vendor/products", route(catalogHandler.HandleCreateProduct))
	mux.Handle("PATCH /vendor/products/{id}", route(catalogHandler.HandleUpdateProduct))
	mux.Handle("POST /vendor/categories", route(catalogHandler.HandleCreateCategory))
	mux.Handle("GET /vendor/categories", route(catalogHandler.HandleListCategories))

	mux.Handle("GET /addresses", route(addressHandler.HandleList))
	mux.Handle("POST /addresses", route(addressHandler.HandleCreate))

	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(mux, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting marketplace server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
