// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/crm-backend/internal/config"
	"github.com/unclebandit/crm-backend/internal/controller"
	"github.com/unclebandit/crm-backend/internal/handler"
	"github.com/unclebandit/crm-backend/internal/logger"
	"github.com/unclebandit/crm-backend/internal/queue"
	"github.com/unclebandit/crm-backend/internal/repository"
	"github.com/unclebandit/crm-backend/internal/router"
	"github.com/unclebandit/crm-backend/internal/service"
	"github.com/unclebandit/crm-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Development(), cfg.LogFile)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer backend.Close()

	customerRepo := repository.NewCustomerRepository(backend, cfg.StorageKey)
	auditRepo := repository.NewAuditRepository(backend, cfg.AuditKey)

	// Events go to RabbitMQ when configured and cmd/worker records them.
	// Otherwise they are logged and recorded in process.
	var q queue.Queue
	if cfg.AMQPURL != "" {
		aq, err := queue.DialAMQP(cfg.AMQPURL, log)
		if err != nil {
			log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer aq.Close()
		q = aq
	} else {
		mq := queue.NewInMemoryQueue(log)
		if err := queue.StartCustomerEventLogger(mq, log); err != nil {
			log.Fatal("failed to subscribe event logger", zap.Error(err))
		}
		if err := service.StartAuditWorker(mq, auditRepo, log); err != nil {
			log.Fatal("failed to subscribe audit worker", zap.Error(err))
		}
		q = mq
	}

	store := service.NewCustomerStore(customerRepo, q, log)
	store.StrictLoad = cfg.StrictLoad
	if err := store.Load(ctx); err != nil {
		log.Fatal("failed to load customers", zap.Error(err))
	}

	customerController := &controller.CustomerController{
		Store: store,
		Audit: auditRepo,
		Log:   log,
	}
	transferHandler := handler.NewTransferHandler(store, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(customerController, transferHandler, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("🚀 Server running", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
