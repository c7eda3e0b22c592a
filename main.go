package main

import (
	"log"

	"github.com/joho/godotenv"

	"datavet/adapters/api"
	"datavet/adapters/codec"
	"datavet/app"
	"datavet/internal"
	"datavet/internal/config"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))

	service := app.NewValidationService(codec.NewJSONCodec(), cfg.Validator, logger)
	server := api.NewServer(service, logger)
	if err := server.Start(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
