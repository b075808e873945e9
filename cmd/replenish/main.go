package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"inventory-api/internal/core"
	"inventory-api/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	locationID := flag.Int("location", 0, "restrict the sweep to one destination location ID (0 = all)")
	force := flag.Bool("force", false, "re-evaluate products already covered by open transfers")
	flag.Parse()

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
	engine := core.NewReplenishmentService(pool, locationService, transferService)

	scope := core.ReplenishScope{
		TriggerType: "scheduled",
		ForceCheck:  *force,
	}
	if *locationID > 0 {
		scope.LocationID = locationID
	}

	summary, err := engine.CheckAndCreateTransfers(ctx, scope)
	if err != nil {
		log.Printf("replenishment: %v", err)
		os.Exit(1)
	}

	fmt.Printf("products checked:  %d\n", summary.ProductsChecked)
	fmt.Printf("critical items:    %d\n", summary.CriticalCount)
	fmt.Printf("low items:         %d\n", summary.LowCount)
	fmt.Printf("transfers created: %d\n", summary.TransfersCreated)
	fmt.Printf("transfers skipped: %d\n", summary.TransfersSkipped)
	for _, dest := range summary.Destinations {
		if dest.TransferID != "" {
			fmt.Printf("  %s: transfer %s (%d lines)\n", dest.LocationCode, dest.TransferID, len(dest.Decisions))
		}
	}
	for _, w := range summary.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, e := range summary.Errors {
		fmt.Printf("error: %s\n", e)
	}
	fmt.Println(summary.Message)

	if len(summary.Errors) > 0 {
		os.Exit(1)
	}
}
