package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/licensedesk/revenue-api/internal/config"
	"github.com/licensedesk/revenue-api/internal/database"
	"github.com/licensedesk/revenue-api/internal/handler"
	"github.com/licensedesk/revenue-api/internal/queue"
	"github.com/licensedesk/revenue-api/internal/repository"
	"github.com/licensedesk/revenue-api/internal/router"
	"github.com/licensedesk/revenue-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate cache and rate limiting disabled")
	}

	clients := repository.NewClientRepo(db)
	software := repository.NewSoftwareRepo(db)
	contracts := repository.NewContractRepo(db)
	discounts := repository.NewDiscountRepo(db)
	employees := repository.NewEmployeeRepo(db)
	revenue := repository.NewRevenueRepo(db)

	pricing := service.NewPricingService(discounts)
	converter := service.NewCurrencyConverter(cfg.RatesURL, rdb, cfg.RateCacheTTL)
	publisher := queue.NewPublisher(cfg.AMQPURL)
	lifecycle := service.NewContractService(db, clients, software, contracts, pricing, publisher)
	revenueSvc := service.NewRevenueService(revenue, converter)

	// Consume lifecycle events in the background; the loop reconnects on
	// broker failures and never takes the API down.
	go queue.StartContractConsumer()

	e := echo.New()
	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(employees),
		Client:   handler.NewClientHandler(clients, lifecycle),
		Software: handler.NewSoftwareHandler(software),
		Contract: handler.NewContractHandler(lifecycle, contracts, clients, software),
		Revenue:  handler.NewRevenueHandler(revenueSvc, software),
		Discount: handler.NewDiscountHandler(discounts),
	}, employees, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
