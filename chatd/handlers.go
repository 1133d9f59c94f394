// chatd/handlers.go
package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	defaultUserID    = "default_user"
	defaultSessionID = "default_session"
)

// Server holds the chat endpoint's collaborators. A nil runner means the
// agent backend is unavailable (no API key at startup).
type Server struct {
	runner AgentRunner
}

func NewServer(runner AgentRunner) *Server {
	return &Server{runner: runner}
}

func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)
	router.POST("/chat", s.handleChat)
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Luca AI Assistant!", "status": "running"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// handleChat runs one agent turn and returns the terminal event's text.
func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid JSON"})
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}
	if req.SessionID == "" {
		req.SessionID = defaultSessionID
	}

	if s.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Agent unavailable"})
		return
	}

	events, err := s.runner.Run(c.Request.Context(), req.UserID, req.SessionID, req.Message)
	if err != nil {
		log.Printf("Error starting agent run for user %s: %v", req.UserID, err)
		c.JSON(http.StatusBadGateway, gin.H{"detail": "Agent error"})
		return
	}

	var response string
	var runErr error
	for event := range events {
		if event.Err != nil {
			runErr = event.Err
			continue
		}
		if event.Final {
			response = event.Text
		}
	}
	if runErr != nil {
		log.Printf("Agent run failed for user %s: %v", req.UserID, runErr)
		c.JSON(http.StatusBadGateway, gin.H{"detail": "Agent error"})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Response:  response,
		UserID:    req.UserID,
		SessionID: req.SessionID,
	})
}
