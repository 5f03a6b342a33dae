// Seeds demo accounts for local development.
package main

import (
	"errors"
	"log"

	"payflow/internal/config"
	"payflow/internal/models"
	"payflow/internal/repositories"

	"github.com/shopspring/decimal"
)

func main() {
	config.LoadEnv()

	db, err := repositories.InitDB(repositories.DBConfigFromEnv())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		sqlDB, err := db.DB()
		if err != nil {
			log.Printf("Failed to get SQL DB instance: %v", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			log.Printf("Failed to close PostgreSQL connection: %v", err)
		}
	}()

	balance, err := decimal.NewFromString(config.GetEnv("SEED_BALANCE", "100.00"))
	if err != nil {
		log.Fatalf("Invalid SEED_BALANCE: %v", err)
	}

	repo := repositories.NewAccountRepository(db)
	seeds := []models.Account{
		{Name: "Alice Demo", Email: "alice@payflow.local", Balance: balance},
		{Name: "Bob Demo", Email: "bob@payflow.local", Balance: balance},
		{Name: "Shopping Agent", Email: "agent@payflow.local", Balance: balance, IsAgent: true},
	}

	for i := range seeds {
		if err := repo.Create(&seeds[i]); err != nil {
			if errors.Is(err, repositories.ErrDuplicateEmail) {
				log.Printf("Account %s already exists, skipping", seeds[i].Email)
				continue
			}
			log.Fatalf("Failed to seed account %s: %v", seeds[i].Email, err)
		}
		log.Printf("Seeded account %s (%s) with balance %s",
			seeds[i].Name, seeds[i].ID, seeds[i].Balance.StringFixed(2))
	}
}
