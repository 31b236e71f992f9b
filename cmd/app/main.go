package main

import (
	"flag"
	"log"
	"os"

	"RecoPulse/internal/di"
	"RecoPulse/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s tickers=%d technical=%s classifier=%s",
		cfg.Environment, len(cfg.Scoring.Tickers), cfg.Sources.Technical.Provider, cfg.Sources.Sentiment.Classifier)
	for _, w := range cfg.Warnings() {
		log.Printf("warning: %s", w)
	}

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	runErr := app.Run()
	cleanup()
	if runErr != nil {
		log.Printf("app error: %v", runErr)
		os.Exit(1)
	}
}
