// cmd/seeder/main.go
package main

import (
	"context"
	"errors"
	"flag"

	"go.uber.org/zap"

	"github.com/unclebandit/crm-backend/internal/config"
	"github.com/unclebandit/crm-backend/internal/logger"
	"github.com/unclebandit/crm-backend/internal/repository"
	"github.com/unclebandit/crm-backend/internal/service"
	"github.com/unclebandit/crm-backend/internal/storage"
)

func main() {
	force := flag.Bool("force", false, "overwrite customers that are already stored")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Development(), cfg.LogFile)
	defer log.Sync()

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer backend.Close()

	repo := repository.NewCustomerRepository(backend, cfg.StorageKey)

	existing, err := repo.Load(ctx)
	switch {
	case err == nil && !*force:
		log.Info("customers already stored, use -force to overwrite", zap.Int("count", len(existing)))
		return
	case err != nil && !errors.Is(err, storage.ErrNotFound) && !*force:
		log.Fatal("stored customers are unreadable, use -force to overwrite", zap.Error(err))
	}

	if err := repo.Save(ctx, service.DefaultCustomers()); err != nil {
		log.Fatal("failed to seed customers", zap.Error(err))
	}
	log.Info("Database seeding completed successfully!", zap.String("key", cfg.StorageKey))
}
