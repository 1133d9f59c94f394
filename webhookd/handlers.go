// webhookd/handlers.go
package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	greetingMessage = "¡Hola! Soy LUCA, tu asistente financiero. ¿Cómo te llamas?"
	ackPrefix       = "Recibido: "
)

// Server wires the webhook handlers to their collaborators.
type Server struct {
	cfg       Config
	store     UserStore
	messenger TextSender
	events    *EventPublisher
}

func NewServer(cfg Config, store UserStore, messenger TextSender, events *EventPublisher) *Server {
	return &Server{cfg: cfg, store: store, messenger: messenger, events: events}
}

func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/", s.handleHealth)
	router.GET("/webhook", s.handleVerify)
	router.POST("/webhook", s.handleWebhook)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "LUCA Webhook"})
}

// handleVerify answers the WhatsApp webhook subscription handshake.
func (s *Server) handleVerify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Missing parameters"})
		return
	}
	if mode != "subscribe" || token != s.cfg.VerifyToken {
		log.Println("Webhook verification failed. Token mismatch.")
		c.JSON(http.StatusForbidden, gin.H{"detail": "Verification failed"})
		return
	}

	log.Println("Webhook verified successfully.")
	c.String(http.StatusOK, challenge)
}

// handleWebhook processes one webhook delivery. Downstream failures never
// surface here; the platform only needs a fast acknowledgment.
func (s *Server) handleWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid JSON"})
		return
	}

	if s.cfg.AppSecret != "" {
		if !validSignature(body, c.GetHeader("X-Hub-Signature-256"), s.cfg.AppSecret) {
			log.Println("Invalid webhook signature")
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid signature"})
			return
		}
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid JSON"})
		return
	}

	msg, outcome := ExtractMessage(payload)
	switch outcome {
	case ExtractStatusUpdate:
		c.JSON(http.StatusOK, gin.H{"status": "ignored_status_update"})
		return
	case ExtractMalformed:
		c.JSON(http.StatusOK, gin.H{"status": "ignored_malformed"})
		return
	}

	ctx := c.Request.Context()
	log.Printf("Message from %s: %s", msg.SenderID, msg.Text)
	s.events.PublishInbound(msg)

	if _, found := s.store.Get(ctx, msg.SenderID); !found {
		log.Printf("New user %s. Starting onboarding.", msg.SenderID)
		s.store.Upsert(ctx, msg.SenderID, map[string]any{
			"status":     "onboarding",
			"created_at": ServerTimestamp,
		})
		result := s.messenger.SendText(ctx, msg.SenderID, greetingMessage)
		s.events.PublishOutbound(msg.SenderID, greetingMessage, result.OK)
	} else {
		log.Printf("User %s found. Processing message.", msg.SenderID)
		// TODO: hand the message to the conversational agent once the
		// orchestrator lands; until then acknowledge with an echo.
		reply := ackPrefix + msg.Text
		result := s.messenger.SendText(ctx, msg.SenderID, reply)
		s.events.PublishOutbound(msg.SenderID, reply, result.OK)
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

// validSignature checks the X-Hub-Signature-256 HMAC over the raw body.
func validSignature(body []byte, signature, appSecret string) bool {
	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return hmac.Equal(sig, mac.Sum(nil))
}
