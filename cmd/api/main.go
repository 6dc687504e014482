package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-api/internal/badge"
	"storefront-api/internal/catalog"
	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/httpserver"
	sessionrepo "storefront-api/internal/repository/session"
	cartsvc "storefront-api/internal/service/cart"
	viewsvc "storefront-api/internal/service/view"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()

	var pool *pgxpool.Pool
	var slots sessionrepo.Repository
	if cfg.DBConnString != "" {
		var err error
		pool, err = db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer pool.Close()
		slots = sessionrepo.NewPostgres(pool, cfg.SessionTTL)
		logger.Printf("session slots: postgres")
	} else {
		slots = sessionrepo.NewMemory(cfg.SessionTTL)
		logger.Printf("session slots: in-memory (set DB_DSN for postgres)")
	}

	broadcaster := badge.New()
	cartService := cartsvc.New(slots, broadcaster, logger)
	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	viewService := viewsvc.New(catalogClient, cartService, logger)

	srv := httpserver.New(cfg.HTTPAddr, logger, pool, httpserver.Deps{
		Carts: cartService,
		Views: viewService,
		Badge: broadcaster,
	}, cfg.CORSAllowOrigins)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
