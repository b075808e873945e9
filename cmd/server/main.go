package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "inventory-api/internal/adapters/web"
	"inventory-api/internal/app"
	"inventory-api/internal/core"
	"inventory-api/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	locationService := core.NewLocationService(pool)
	stockService := core.NewStockService(pool)
	transferService := core.NewTransferService(pool, stockService)
	replenishmentService := core.NewReplenishmentService(pool, locationService, transferService)

	svc := app.NewAppService(pool, locationService, stockService, transferService, replenishmentService)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
