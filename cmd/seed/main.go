// Command seed loads reference data into an empty database: the software
// catalog, a demo admin and a standard user. It is idempotent enough for
// local development; reruns fail on the unique employee logins and leave
// existing rows untouched.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/licensedesk/revenue-api/internal/config"
	"github.com/licensedesk/revenue-api/internal/database"
	"github.com/licensedesk/revenue-api/internal/model"
	"github.com/licensedesk/revenue-api/internal/repository"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	catalog := []struct {
		name, description, version, category string
		priceGrosz                           int64
	}{
		{"LedgerPro", "Double-entry accounting suite", "4.2.0", "finance", 1_200_000},
		{"EduTrack", "Student progress tracking", "2.8.1", "education", 650_000},
		{"ShopFlow", "Inventory and order management", "7.0.3", "retail", 980_000},
	}
	for _, s := range catalog {
		_, err := db.ExecContext(ctx,
			`INSERT INTO software (name, description, current_version, category, upfront_price_grosz)
			 VALUES (?,?,?,?,?)`,
			s.name, s.description, s.version, s.category, s.priceGrosz)
		if err != nil {
			log.Printf("seed software %q: %v", s.name, err)
		}
	}

	employees := repository.NewEmployeeRepo(db)
	seedEmployee(ctx, employees, "admin", "admin123", model.RoleAdmin, "Ada", "Admin", cfg.BcryptCost)
	seedEmployee(ctx, employees, "staff", "staff123", model.RoleStandard, "Stan", "Staff", cfg.BcryptCost)

	log.Println("seed complete")
}

func seedEmployee(ctx context.Context, repo *repository.EmployeeRepo, login, password, role, first, last string, cost int) {
	if _, err := repo.Create(ctx, login, password, role, first, last, cost); err != nil {
		if errors.Is(err, repository.ErrLoginExists) {
			log.Printf("employee %q already present", login)
			return
		}
		log.Printf("seed employee %q: %v", login, err)
	}
}
