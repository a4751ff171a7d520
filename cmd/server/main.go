// Package main is the entry point for the messpay API server. It wires
// configuration, storage, cache, events, and the ledger services, then
// starts the HTTP server.
package main

import (
	"context"
	"log"
	"strings"
	"time"

	"messpay/internal/config"
	"messpay/internal/events"
	eventskafka "messpay/internal/events/kafka"
	"messpay/internal/models"
	"messpay/internal/repositories"
	"messpay/internal/repositories/cache"
	"messpay/internal/repositories/memory"
	"messpay/internal/routes"
	"messpay/internal/services/ledger"
	"messpay/internal/services/skipcredit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func main() {
	config.LoadEnv()

	// Storage backend: PostgreSQL by default, in-memory for local
	// development.
	var repo repositories.LedgerRepository
	var catalog repositories.MealCatalog
	var db *gorm.DB
	if config.GetEnv("STORE", "postgres") == "memory" {
		log.Println("using in-memory store")
		store := memory.NewStore()
		repo = store
		catalog = store
	} else {
		var err error
		db, err = repositories.Connect(repositories.DefaultDBConfig())
		if err != nil {
			log.Fatalf("failed to initialize database: %v", err)
		}
		repo = repositories.NewLedgerRepository(db)
		catalog = repositories.NewMealCatalog(db)
	}

	// Balance cache is optional; without redis every read hits the
	// account store.
	var balanceCache *cache.BalanceCache
	var svcCache ledger.BalanceCache
	if host := config.GetEnv("REDIS_HOST", ""); host != "" {
		client := cache.NewRedisClient(&cache.RedisConfig{
			Host:     host,
			Port:     config.GetEnv("REDIS_PORT", "6379"),
			Password: config.GetEnv("REDIS_PASSWORD", ""),
			DB:       config.GetIntEnv("REDIS_DB", 0),
		})
		balanceCache = cache.NewBalanceCache(client, config.GetDurationEnv("CACHE_TTL", 5*time.Minute))
		svcCache = balanceCache
		defer balanceCache.Close()
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if brokers := config.GetEnv("KAFKA_BROKERS", ""); brokers != "" {
		kafkaPublisher := eventskafka.NewPublisher(strings.Split(brokers, ","))
		publisher = kafkaPublisher
		defer kafkaPublisher.Close()
	}

	ledgerService := ledger.NewService(repo, svcCache, publisher, nil)
	skipService := skipcredit.NewService(ledgerService, repo)

	app := fiber.New(fiber.Config{
		AppName:      "messpay",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max:        config.GetIntEnv("RATE_LIMIT", 100),
		Expiration: time.Minute,
	}))

	routes.SetupRoutes(app, routes.Deps{
		DB:            db,
		BalanceCache:  balanceCache,
		LedgerService: ledgerService,
		SkipService:   skipService,
		MealCatalog:   catalog,
	})

	ensureSystemAccount(ledgerService)

	port := config.GetEnv("PORT", "8080")
	log.Printf("starting server on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// ensureSystemAccount provisions the sentinel mint/sink account on
// first boot. Safe to run repeatedly.
func ensureSystemAccount(svc ledger.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := svc.GetAccount(ctx, models.SystemAccountID); err == nil {
		return
	}
	if _, err := svc.CreateAccount(ctx, models.SystemAccountID, models.AccountKindSystem); err != nil {
		log.Fatalf("failed to create system account: %v", err)
	}
	log.Println("created system account")
}
