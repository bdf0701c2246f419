package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/shopspring/decimal"

	"finance-dashboard/internal/config"
	"finance-dashboard/internal/ledger"
)

func main() {
	migrateCmd := flag.Bool("migrate", false, "Run database migration and seed data")
	seedDemoCmd := flag.Bool("seed-demo", false, "Seed demo transactions (idempotent)")
	memoryCmd := flag.Bool("memory", false, "Serve an in-memory ledger instead of PostgreSQL")
	flag.Parse()

	// amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.LoadLedger()
	ctx := context.Background()

	var repo ledger.Repository
	if *memoryCmd {
		mem := ledger.NewMemory()
		if *seedDemoCmd {
			if err := mem.SeedDemo(ctx); err != nil {
				log.Fatalf("Seeding demo data failed: %v", err)
			}
			log.Println("Demo data seeded")
		}
		repo = mem
	} else {
		db, err := ledger.Connect(ctx, cfg.DatabaseURL, ledger.DefaultRetry)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		if *migrateCmd {
			log.Println("Migration completed successfully")
			db.Close()
			os.Exit(0)
		}
		if *seedDemoCmd {
			if err := db.SeedDemo(ctx); err != nil {
				log.Fatalf("Seeding demo data failed: %v", err)
			}
			log.Println("Demo data seeded")
			db.Close()
			os.Exit(0)
		}
		repo = db
	}

	var cache ledger.Cache
	client, err := ledger.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis: %v", err)
		log.Println("Continuing without Redis cache...")
	} else {
		log.Println("Redis connection established")
		defer client.Close()
		cache = ledger.NewRedisCache(client)
	}

	r := ledger.NewRouter(ledger.NewHandler(repo, cache), cfg.CORSOrigins)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
