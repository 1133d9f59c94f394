// chatd/main.go
package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Luca AI Assistant...")

	cfg := loadConfig()
	ctx := context.Background()

	sessions := NewSessionService()

	var runner AgentRunner
	if cfg.APIKey == "" {
		log.Println("Warning: GOOGLE_API_KEY not set in environment variables; /chat will answer 503")
	} else {
		r, err := NewRunner(ctx, cfg.APIKey, sessions)
		if err != nil {
			log.Printf("Failed to initialize Gemini agent: %v. /chat will answer 503.", err)
		} else {
			runner = r
		}
	}

	srv := NewServer(runner)

	router := gin.Default()
	srv.RegisterRoutes(router)

	log.Printf("Luca AI Assistant listening on :%s", cfg.Port)
	log.Fatal(router.Run(":" + cfg.Port))
}
