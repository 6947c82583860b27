// Command main fills a development database with demo bag requests.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"bagportal/internal/config"
	"bagportal/internal/database"
	"bagportal/internal/quota"
	"bagportal/internal/repository"
	"bagportal/internal/sectordoc"
	"bagportal/internal/seed"
	"bagportal/internal/service"
)

func main() {
	requesters := flag.Int("requesters", 20, "Number of residents to create")
	properties := flag.Int("properties", 1, "Properties per resident")
	requests := flag.Int("requests", 2, "Requests per property")
	year := flag.Int("year", 0, "Year the requests are created in (defaults to the current year)")
	decideEvery := flag.Int("decide-every", 3, "Decide every n-th request and export it to sector documents; 0 leaves all awaiting")
	seedValue := flag.Int64("seed", 0, "Random seed for a reproducible run")
	clean := flag.Bool("clean", true, "Remove residents, properties and requests before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	codec, err := sectordoc.CodecFor(cfg.SectorDocFormat)
	if err != nil {
		log.Fatalf("Failed to select sector document format: %v", err)
	}
	store, err := sectordoc.NewStore(cfg.SectorDocDir, sectordoc.WithCodec(codec))
	if err != nil {
		log.Fatalf("Failed to open sector documents: %v", err)
	}

	requestRepo := repository.NewBagRequestRepository(db)
	decisions := service.NewDecisionService(requestRepo, quota.NewLedger(requestRepo), store, nil,
		time.Duration(cfg.ExportTimeoutSeconds)*time.Second)

	sum, err := seed.Seed(context.Background(), db, decisions, seed.Options{
		Requesters:          *requesters,
		PropertiesPerPerson: *properties,
		RequestsPerProperty: *requests,
		MaxBags:             cfg.MaxBagsPerRequest / 10,
		Year:                *year,
		DecideEvery:         *decideEvery,
		Seed:                *seedValue,
		Clean:               *clean,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d residents, %d properties, %d requests (%d approved, %d declined)",
		sum.Requesters, sum.Properties, sum.Requests, sum.Approved, sum.Declined)
}
