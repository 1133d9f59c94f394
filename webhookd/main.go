// webhookd/main.go
package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
)

func main() {
	log.Println("Starting LUCA Webhook service...")

	cfg := loadConfig()
	ctx := context.Background()

	store := NewUserStore(ctx, cfg.ProjectID)
	messenger := NewMessenger(cfg.APIToken, cfg.PhoneNumberID, WithAPIVersion(cfg.APIVersion))

	var events *EventPublisher
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Printf("Failed to connect to NATS at %s: %v. Event publishing disabled.", cfg.NATSURL, err)
		} else {
			defer nc.Close()
			events = NewEventPublisher(nc)
			log.Println("Connected to NATS server; message events enabled.")
		}
	}

	srv := NewServer(cfg, store, messenger, events)

	router := gin.Default()
	srv.RegisterRoutes(router)

	log.Printf("LUCA Webhook listening on :%s", cfg.Port)
	log.Fatal(router.Run(":" + cfg.Port))
}
