package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	cartapi "github.com/mytheresa/go-bulk-cart/app/cart"
	"github.com/mytheresa/go-bulk-cart/app/catalog"
	"github.com/mytheresa/go-bulk-cart/app/categories"
	"github.com/mytheresa/go-bulk-cart/cart"
	"github.com/mytheresa/go-bulk-cart/config"
	"github.com/mytheresa/go-bulk-cart/events"
	"github.com/mytheresa/go-bulk-cart/metrics"
	"github.com/mytheresa/go-bulk-cart/models"
	"github.com/mytheresa/go-bulk-cart/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).AutoMigrate(&models.Category{}, &models.Product{}, &models.PriceBreak{}); err != nil {
		return err
	}

	store, err := newStorage(ctx, cfg, db)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cartMetrics := metrics.NewCartMetrics(reg)

	c := cart.New(ctx, cart.NewPersister(store, logger.Named("persistence")),
		cart.WithLogger(logger.Named("cart")),
		cart.WithRecorder(cartMetrics))

	writer, err := events.NewKafkaWriter(events.ParseBrokers(cfg.KafkaBrokers), cfg.KafkaTopic)
	switch {
	case errors.Is(err, events.ErrDisabled):
		logger.Info("kafka publishing disabled")
	case err != nil:
		return err
	default:
		defer writer.Close()
		publisher := events.NewPublisher(writer, cfg.CartKey, logger.Named("events"))
		defer publisher.Close()
		unsubscribe := c.Subscribe(publisher.Handle)
		defer unsubscribe()
		logger.Info("publishing cart changes", zap.String("topic", cfg.KafkaTopic))
	}

	productsRepo := models.NewProductsRepository(db)
	catHandler := catalog.NewCatalogHandler(productsRepo)
	categoriesHandler := categories.NewCategoryHandler(models.NewCategoriesRepository(db))
	cartHandler := cartapi.NewCartHandler(c, productsRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /catalog", catHandler.HandleGet)
	mux.HandleFunc("GET /catalog/{id}", catHandler.HandleGetProduct)
	mux.HandleFunc("GET /catalog/{id}/quote", catHandler.HandleGetQuote)
	mux.HandleFunc("GET /categories", categoriesHandler.HandleGetAll)
	mux.HandleFunc("POST /categories", categoriesHandler.HandleCreate)
	mux.HandleFunc("GET /cart", cartHandler.HandleGet)
	mux.HandleFunc("DELETE /cart", cartHandler.HandleClear)
	mux.HandleFunc("POST /cart/items", cartHandler.HandleAddItem)
	mux.HandleFunc("GET /cart/items/{productId}", cartHandler.HandleGetItem)
	mux.HandleFunc("PATCH /cart/items/{productId}", cartHandler.HandleUpdateItem)
	mux.HandleFunc("DELETE /cart/items/{productId}", cartHandler.HandleRemoveItem)
	mux.Handle("GET /metrics", metrics.Handler(reg))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("storage", cfg.CartStorage))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newStorage(ctx context.Context, cfg *config.Config, db *gorm.DB) (cart.Storage, error) {
	switch cfg.CartStorage {
	case config.StorageDB:
		s := storage.NewDBStore(db, cfg.CartKey)
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageMemory:
		return storage.NewMemoryStore(cfg.CartKey), nil
	default:
		return storage.NewFileStore(cfg.CartFile), nil
	}
}
