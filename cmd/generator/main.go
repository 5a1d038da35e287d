// Command generator seeds the energy_data table with a synthetic hourly
// dataset. It is an offline tool and shares the server's configuration.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/energy-data-api/internal/config"
	"github.com/energy-data-api/internal/generator"
	"github.com/energy-data-api/internal/models"
	"github.com/energy-data-api/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const batchSize = 500

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	startArg := flag.String("start", "2024-01-01", "first day to generate (YYYY-MM-DD)")
	endArg := flag.String("end", "2025-04-05", "last day to generate (YYYY-MM-DD)")
	seed := flag.Int64("seed", 42, "random seed, fixed for reproducibility")
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startArg)
	if err != nil {
		log.Fatalf("Invalid -start: %v", err)
	}
	end, err := time.Parse("2006-01-02", *endArg)
	if err != nil {
		log.Fatalf("Invalid -end: %v", err)
	}
	if end.Before(start) {
		log.Fatalf("-end %s is before -start %s", *endArg, *startArg)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.EnergyRecord{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	records := generator.New(*seed).Generate(start, end)

	energyRepo := repository.NewEnergyRecordRepository(db)
	if err := energyRepo.CreateBatch(records, batchSize); err != nil {
		log.Fatalf("Failed to insert records: %v", err)
	}

	log.Printf("Inserted %d energy records covering %s..%s", len(records), *startArg, *endArg)
}
