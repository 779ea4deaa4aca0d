package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raft-seat-reservation/internal/authsvc"
	"github.com/iliyamo/raft-seat-reservation/internal/config"
	"github.com/iliyamo/raft-seat-reservation/internal/database"
	"github.com/iliyamo/raft-seat-reservation/internal/handler"
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
		log.Fatalf("auth-service: open database: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	svc := authsvc.New(users, tokens, cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays, cfg.BcryptCost)

	if err := svc.EnsureAdmin(context.Background()); err != nil {
		log.Fatalf("auth-service: seed admin account: %v", err)
	}

	e := echo.New()
	router.RegisterAuthRoutes(e, handler.NewAuthHandler(svc))

	addr := ":" + cfg.Port
	log.Printf("auth-service: listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
