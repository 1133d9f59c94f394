// chatd/config.go
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the chat service environment settings.
type Config struct {
	Port   string
	APIKey string
}

func loadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v. Proceeding with system environment variables.", err)
	}

	cfg := Config{
		Port:   os.Getenv("PORT"),
		APIKey: os.Getenv("GOOGLE_API_KEY"),
	}
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	return cfg
}
