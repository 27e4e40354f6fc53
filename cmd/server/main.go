/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the order management server: configuration,
  store selection, dependency wiring, graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (env / .env, flags override)
  2. Pick stores: SQLite when a database path is configured, in-memory
     otherwise
  3. Wire services and the order engine
  4. Start HTTP server; shut down gracefully on SIGINT/SIGTERM

EXAMPLES:
  # Ephemeral in-memory state
  ./server

  # Persistent SQLite database
  ./server -db=./orders.db

  # Different port
  ./server -port=3000
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vydibot/order-engine/api"
	"github.com/vydibot/order-engine/catalog"
	"github.com/vydibot/order-engine/config"
	"github.com/vydibot/order-engine/customers"
	"github.com/vydibot/order-engine/orders"
	"github.com/vydibot/order-engine/store/memory"
	"github.com/vydibot/order-engine/store/sqlite"
)

func main() {
	port := flag.String("port", "", "HTTP server port (overrides PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DB_PATH; empty = in-memory)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	logger := newLogger(cfg.Environment)
	defer logger.Sync()

	var (
		itemStore     catalog.Store
		customerStore customers.Store
		orderStore    orders.Store
	)
	if cfg.Database.Path != "" {
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			logger.Fatal("failed to open database", zap.Error(err))
		}
		defer db.Close()
		itemStore, customerStore, orderStore = db.Items(), db.Customers(), db.Orders()
		logger.Info("using sqlite stores", zap.String("path", cfg.Database.Path))
	} else {
		itemStore, customerStore, orderStore = memory.NewItems(), memory.NewCustomers(), memory.NewOrders()
		logger.Info("using in-memory stores; state is lost on exit")
	}

	catalogSvc := catalog.NewService(itemStore)
	customerSvc := customers.NewService(customerStore)
	engine := orders.NewEngine(orderStore, catalogSvc, customerSvc, logger)

	handler := api.NewHandler(catalogSvc, customerSvc, engine, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(environment string) *zap.Logger {
	if environment == "production" {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}
