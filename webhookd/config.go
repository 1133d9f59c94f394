// webhookd/config.go
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the webhook service reads from the environment.
type Config struct {
	Port          string
	VerifyToken   string
	APIToken      string
	PhoneNumberID string
	APIVersion    string
	ProjectID     string
	NATSURL       string
	AppSecret     string
}

func loadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v. Proceeding with system environment variables.", err)
	}

	cfg := Config{
		Port:          os.Getenv("PORT"),
		VerifyToken:   os.Getenv("WEBHOOK_VERIFY_TOKEN"),
		APIToken:      os.Getenv("WHATSAPP_API_TOKEN"),
		PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		APIVersion:    os.Getenv("WHATSAPP_API_VERSION"),
		ProjectID:     os.Getenv("GOOGLE_CLOUD_PROJECT"),
		NATSURL:       os.Getenv("NATS_URL"),
		AppSecret:     os.Getenv("APP_SECRET"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.VerifyToken == "" {
		log.Println("Warning: WEBHOOK_VERIFY_TOKEN not set; webhook verification will reject all requests")
	}
	if cfg.APIToken == "" || cfg.PhoneNumberID == "" {
		log.Println("Warning: WhatsApp credentials incomplete; outbound sends will fail")
	}

	return cfg
}
