// Command seed provisions the sentinel SYSTEM account and, when
// SEED_DEMO=true, a handful of demo student and vendor accounts. Safe
// to run repeatedly.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"messpay/internal/config"
	"messpay/internal/models"
	"messpay/internal/repositories"
	"messpay/internal/services/ledger"

	"github.com/shopspring/decimal"
)

func main() {
	config.LoadEnv()

	db, err := repositories.Connect(repositories.DefaultDBConfig())
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer func() {
		sqlDB, err := db.DB()
		if err != nil {
			log.Printf("failed to get database instance: %v", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			log.Printf("failed to close database connection: %v", err)
		}
	}()

	repo := repositories.NewLedgerRepository(db)
	svc := ledger.NewService(repo, nil, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	createAccount(ctx, svc, models.SystemAccountID, models.AccountKindSystem)

	if config.GetEnv("SEED_DEMO", "false") != "true" {
		return
	}

	meal := models.Meal{
		ID:       "demo-meal-1",
		Date:     time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		Type:     "lunch",
		Price:    decimal.NewFromInt(50),
		Cutoff:   time.Now().Add(24 * time.Hour),
		IsActive: true,
	}
	if err := db.WithContext(ctx).Where("id = ?", meal.ID).FirstOrCreate(&meal).Error; err != nil {
		log.Fatalf("failed to seed meal %s: %v", meal.ID, err)
	}

	students := []string{"demo-student-1", "demo-student-2"}
	for _, id := range students {
		createAccount(ctx, svc, id, models.AccountKindStudent)
	}
	createAccount(ctx, svc, "demo-vendor-1", models.AccountKindVendor)

	// Give demo students a starting balance through the normal commit
	// path so the ledger stays complete.
	for _, id := range students {
		_, err := svc.Transfer(ctx, ledger.TransferRequest{
			SenderID:    models.SystemAccountID,
			ReceiverID:  id,
			Amount:      decimal.NewFromInt(100),
			Kind:        models.EntryKindAdminAdjustment,
			Description: "Demo seed credit",
			Reference:   ref("seed:" + id),
		})
		if err != nil {
			if errors.Is(err, ledger.ErrDuplicateReference) {
				continue
			}
			log.Fatalf("failed to seed balance for %s: %v", id, err)
		}
	}
	log.Println("demo accounts seeded")
}

func createAccount(ctx context.Context, svc ledger.Service, id, kind string) {
	if _, err := svc.GetAccount(ctx, id); err == nil {
		log.Printf("account %s already exists", id)
		return
	}
	if _, err := svc.CreateAccount(ctx, id, kind); err != nil {
		log.Fatalf("failed to create account %s: %v", id, err)
	}
	log.Printf("created %s account %s", kind, id)
}

func ref(s string) *string {
	return &s
}
