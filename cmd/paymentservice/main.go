package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raft-seat-reservation/internal/config"
	"github.com/iliyamo/raft-seat-reservation/internal/database"
	"github.com/iliyamo/raft-seat-reservation/internal/handler"
	"github.com/iliyamo/raft-seat-reservation/internal/paymentsvc"
	"github.com/iliyamo/raft-seat-reservation/internal/repository"
	"github.com/iliyamo/raft-seat-reservation/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("info: .env not found; using defaults/env")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("payment-service: open database: %v", err)
	}

	transactions := repository.NewTransactionRepo(db)
	svc := paymentsvc.New(transactions)

	e := echo.New()
	router.RegisterPaymentRoutes(e, handler.NewPaymentHandler(svc))

	addr := ":" + cfg.Port
	log.Printf("payment-service: listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
