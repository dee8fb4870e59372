package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kaluste-backend/config"
	"kaluste-backend/internal/delivery/http/middleware"
	v1 "kaluste-backend/internal/delivery/http/v1"
	"kaluste-backend/internal/infrastructure/cache"
	"kaluste-backend/internal/infrastructure/paytrail"
	"kaluste-backend/internal/repository/postgres"
	"kaluste-backend/internal/usecase"
	"kaluste-backend/pkg/logger"
	"kaluste-backend/pkg/storage"
	"kaluste-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	if err := postgres.RunMigrations(cfg.DBUrl); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Successfully connected to PostgreSQL")

	// Repositories
	productRepo := postgres.NewProductRepo(pgxPool)
	shippingRepo := postgres.NewShippingRepo(pgxPool)
	invoiceRepo := postgres.NewInvoiceRepo(pgxPool)
	reservationRepo := postgres.NewReservationRepo(pgxPool)
	tradeInRepo := postgres.NewTradeInRepo(pgxPool)
	txManager := postgres.NewTxManager(pgxPool)

	// In-memory cache: default expiration 30m, cleanup every 60m
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	mux := http.NewServeMux()

	// --- Modules ---

	// Storage (R2 product photos)
	r2Storage, err := storage.NewR2Storage(
		context.Background(),
		cfg.R2AccountID,
		cfg.R2AccessKeyID,
		cfg.R2AccessKeySecret,
		cfg.R2BucketName,
		cfg.R2PublicURL,
		cfg.R2UploadTimeout,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
	}
	uploadHandler := v1.NewUploadHandler(r2Storage, cfg.MaxUploadSizeMB)

	// Catalog
	catalogUC := usecase.NewCatalogUsecase(productRepo, memCache, cfg.CacheCatalogTTL)
	catalogHandler := v1.NewCatalogHandler(catalogUC)
	adminCatalogHandler := v1.NewAdminCatalogHandler(catalogUC)

	// Shipping
	shippingUC := usecase.NewShippingUsecase(shippingRepo, productRepo, txManager, memCache, cfg.CacheShippingTTL)
	shippingHandler := v1.NewShippingHandler(shippingUC)
	adminShippingHandler := v1.NewAdminShippingHandler(shippingUC)

	// Checkout (hosted payment sessions)
	paymentClient := paytrail.NewClient(cfg.PaymentAPIURL, cfg.PaymentMerchantID, cfg.PaymentSecret, cfg.PaymentTimeout)
	checkoutUC := usecase.NewCheckoutUsecase(productRepo, shippingUC, paymentClient, cfg.StorefrontURL, cfg.Currency, cfg.MaxCartQuantity)
	checkoutHandler := v1.NewCheckoutHandler(checkoutUC)

	// Invoices
	invoiceUC := usecase.NewInvoiceUsecase(invoiceRepo)
	adminInvoiceHandler := v1.NewAdminInvoiceHandler(invoiceUC)

	// Reservations and trade-ins
	reservationUC := usecase.NewReservationUsecase(reservationRepo, productRepo)
	tradeInUC := usecase.NewTradeInUsecase(tradeInRepo)
	tradeInHandler := v1.NewTradeInHandler(reservationUC, tradeInUC)

	// Config
	configHandler := v1.NewConfigHandler(memCache, shippingUC, cfg.CacheEnumsTTL)

	// --- Public routes ---

	mux.HandleFunc("GET /api/v1/config/enums", configHandler.GetEnums)

	mux.HandleFunc("GET /api/v1/products", catalogHandler.GetProducts)
	mux.HandleFunc("GET /api/v1/products/{id}", catalogHandler.GetProduct)
	mux.HandleFunc("GET /api/v1/categories/tree", catalogHandler.GetCategoryTree)

	mux.HandleFunc("POST /api/v1/shipping/calculate", shippingHandler.Calculate)
	mux.HandleFunc("POST /api/v1/checkout/create-session", checkoutHandler.CreateSession)

	mux.HandleFunc("POST /api/v1/reservations", tradeInHandler.CreateReservation)
	mux.HandleFunc("POST /api/v1/trade-in-requests", tradeInHandler.CreateTradeIn)

	// --- Admin routes ---

	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	mux.Handle("POST /api/v1/admin/upload", adminOnly(uploadHandler.UploadFile))

	mux.Handle("GET /api/v1/admin/products", adminOnly(adminCatalogHandler.GetProducts))
	mux.Handle("POST /api/v1/admin/products", adminOnly(adminCatalogHandler.CreateProduct))
	mux.Handle("PUT /api/v1/admin/products/{id}", adminOnly(adminCatalogHandler.UpdateProduct))
	mux.Handle("PATCH /api/v1/admin/products/{id}/status", adminOnly(adminCatalogHandler.UpdateProductStatus))
	mux.Handle("DELETE /api/v1/admin/products/{id}", adminOnly(adminCatalogHandler.DeleteProduct))

	mux.Handle("GET /api/v1/admin/categories", adminOnly(adminCatalogHandler.GetCategories))
	mux.Handle("POST /api/v1/admin/categories", adminOnly(adminCatalogHandler.CreateCategory))
	mux.Handle("PUT /api/v1/admin/categories/{id}", adminOnly(adminCatalogHandler.UpdateCategory))
	mux.Handle("DELETE /api/v1/admin/categories/{id}", adminOnly(adminCatalogHandler.DeleteCategory))

	mux.Handle("GET /api/v1/admin/shipping/zones", adminOnly(adminShippingHandler.GetAllZones))
	mux.Handle("POST /api/v1/admin/shipping/zones", adminOnly(adminShippingHandler.CreateZone))
	mux.Handle("PATCH /api/v1/admin/shipping/zones/{id}", adminOnly(adminShippingHandler.UpdateZone))
	mux.Handle("DELETE /api/v1/admin/shipping/zones/{id}", adminOnly(adminShippingHandler.DeleteZone))

	mux.Handle("GET /api/v1/admin/shipping/rules", adminOnly(adminShippingHandler.GetAllRules))
	mux.Handle("GET /api/v1/admin/shipping/rules/{id}", adminOnly(adminShippingHandler.GetRule))
	mux.Handle("POST /api/v1/admin/shipping/rules", adminOnly(adminShippingHandler.CreateRule))
	mux.Handle("PATCH /api/v1/admin/shipping/rules/{id}", adminOnly(adminShippingHandler.UpdateRule))
	mux.Handle("DELETE /api/v1/admin/shipping/rules/{id}", adminOnly(adminShippingHandler.DeleteRule))

	mux.Handle("GET /api/v1/admin/shipping/zone-prices", adminOnly(adminShippingHandler.GetAllZonePrices))
	mux.Handle("POST /api/v1/admin/shipping/zone-prices", adminOnly(adminShippingHandler.UpsertZonePrice))
	mux.Handle("PATCH /api/v1/admin/shipping/zone-prices/{id}", adminOnly(adminShippingHandler.UpdateZonePrice))

	mux.Handle("GET /api/v1/admin/invoices", adminOnly(adminInvoiceHandler.GetInvoices))
	mux.Handle("GET /api/v1/admin/invoices/{id}", adminOnly(adminInvoiceHandler.GetInvoice))
	mux.Handle("POST /api/v1/admin/invoices", adminOnly(adminInvoiceHandler.CreateInvoice))
	mux.Handle("PUT /api/v1/admin/invoices/{id}", adminOnly(adminInvoiceHandler.UpdateInvoice))
	mux.Handle("PATCH /api/v1/admin/invoices/{id}/status", adminOnly(adminInvoiceHandler.UpdateInvoiceStatus))
	mux.Handle("DELETE /api/v1/admin/invoices/{id}", adminOnly(adminInvoiceHandler.DeleteInvoice))

	mux.Handle("GET /api/v1/admin/reservations", adminOnly(tradeInHandler.GetReservations))
	mux.Handle("PATCH /api/v1/admin/reservations/{id}/status", adminOnly(tradeInHandler.UpdateReservationStatus))
	mux.Handle("GET /api/v1/admin/trade-in-requests", adminOnly(tradeInHandler.GetTradeIns))
	mux.Handle("GET /api/v1/admin/trade-in-requests/{id}", adminOnly(tradeInHandler.GetTradeIn))
	mux.Handle("PATCH /api/v1/admin/trade-in-requests/{id}", adminOnly(tradeInHandler.ReviewTradeIn))

	// Observability
	mux.Handle("GET /metrics", promhttp.Handler())

	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler)

	addr := fmt.Sprintf(":%s", cfg.Port)

	// 50 req/s, burst 100, cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		50,
		100,
		time.Minute,
		3*time.Minute,
	)

	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = middleware.Metrics(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	log.Info().Msgf("Server starting on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()
	log.Info().Msg("Server exited properly")
}
