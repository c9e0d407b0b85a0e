package main

import (
	"log"
	"os"

	"github.com/tyagiprnv/Job-Tracker/internal/cli"
	"github.com/tyagiprnv/Job-Tracker/internal/config"
	"github.com/tyagiprnv/Job-Tracker/internal/database"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.StorePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := cli.Execute(db, cfg); err != nil {
		os.Exit(1)
	}
}
