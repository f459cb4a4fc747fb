package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/rmagsino/backend-tindahan/internal/catalog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	repo := &catalog.Repo{Pool: pool}
	for _, p := range sampleProducts() {
		if err := repo.UpsertProduct(ctx, p); err != nil {
			log.Fatalf("Failed to seed %s: %v", p.Title, err)
		}
		log.Printf("Seeded %s (%s)", p.Title, p.ID)
	}
	log.Println("Seeding completed successfully!")
}

// Fixed ids keep reseeding idempotent.
func sampleProducts() []catalog.Product {
	return []catalog.Product{
		{
			ID:    "5f1d2a9c-8f7e-4c55-9f3a-0d9c1a2b3c4d",
			SKU:   "FERT-AMSUL-21",
			Title: "Ammonium Sulfate 21-0-0",
			Price: decimal.NewFromInt(1400),
			Units: []catalog.Unit{
				{ID: "amsul-sack", Label: "50kg", ConversionFactor: 50, IsBaseUnit: true, Price: decimal.NewFromInt(1400), MinSellable: 0.25},
				{ID: "amsul-kilo", Label: "1kg", ConversionFactor: 1, Price: decimal.NewFromInt(30), MinSellable: 0.25},
			},
		},
		{
			ID:    "7b4e6f21-3c8d-4a19-b6e5-2f1a0c9d8e7f",
			SKU:   "FERT-UREA-46",
			Title: "Urea 46-0-0",
			Price: decimal.NewFromInt(1750),
			Units: []catalog.Unit{
				{ID: "urea-sack", Label: "50kg", ConversionFactor: 50, IsBaseUnit: true, Price: decimal.NewFromInt(1750), MinSellable: 1},
				{ID: "urea-kilo", Label: "1kg", ConversionFactor: 1, Price: decimal.NewFromInt(38), MinSellable: 1},
			},
		},
		{
			ID:    "9a2c5e8b-1d4f-4b77-8c3e-6e5d4a3b2c1a",
			SKU:   "FEED-HOG-GROWER",
			Title: "Hog Grower Pellets",
			Price: decimal.NewFromInt(1250),
			Units: []catalog.Unit{
				{ID: "hog-sack", Label: "25kg", ConversionFactor: 25, IsBaseUnit: true, Price: decimal.NewFromInt(1250), MinSellable: 0.5},
				{ID: "hog-kilo", Label: "1kg", ConversionFactor: 1, Price: decimal.NewFromInt(54), MinSellable: 0.5},
			},
		},
		{
			ID:    "3e7a1c5d-9b2f-4e88-a4d6-8c7b6a5e4d3c",
			SKU:   "SEED-RICE-RC222",
			Title: "Certified Rice Seed RC222",
			Price: decimal.NewFromInt(1950),
			Units: []catalog.Unit{
				{ID: "rice-bag", Label: "20kg", ConversionFactor: 20, IsBaseUnit: true, Price: decimal.NewFromInt(1950), MinSellable: 1},
				{ID: "rice-kilo", Label: "1kg", ConversionFactor: 1, Price: decimal.NewFromInt(105), MinSellable: 1},
			},
		},
	}
}
