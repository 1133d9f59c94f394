// chatd/agent.go
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	appName          = "luca"
	modelID          = "gemini-2.0-flash"
	agentInstruction = "You are a helpful AI assistant named Luca. Be concise and friendly in your responses."
)

// AgentRunner executes one agent turn and exposes it as an event stream.
// The channel is closed after the terminal event.
type AgentRunner interface {
	Run(ctx context.Context, userID, sessionID, message string) (<-chan AgentEvent, error)
}

// Runner binds the Gemini model to the session service. Each session keeps
// its own chat history inside the model SDK.
type Runner struct {
	model    *genai.GenerativeModel
	sessions *SessionService
}

// NewRunner initializes the Gemini client and configures the Luca agent.
func NewRunner(ctx context.Context, apiKey string, sessions *SessionService) (*Runner, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelID)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(agentInstruction)},
	}

	log.Printf("Gemini agent %q initialized (model %s)", appName, modelID)
	return &Runner{model: model, sessions: sessions}, nil
}

// Run submits the message to the session's chat and streams events until the
// model finishes. The number and size of intermediate events is up to the
// model backend; only the terminal event's text is the completed reply.
func (r *Runner) Run(ctx context.Context, userID, sessionID, message string) (<-chan AgentEvent, error) {
	session, _ := r.sessions.GetOrCreate(appName, userID, sessionID)

	events := make(chan AgentEvent)
	go func() {
		defer close(events)

		session.mu.Lock()
		defer session.mu.Unlock()

		if session.chat == nil {
			session.chat = r.model.StartChat()
		}

		iter := session.chat.SendMessageStream(ctx, genai.Text(message))
		var full strings.Builder
		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				log.Printf("Error streaming response for user %s: %v", userID, err)
				events <- AgentEvent{Final: true, Err: err}
				return
			}
			if chunk := firstTextPart(resp); chunk != "" {
				full.WriteString(chunk)
				events <- AgentEvent{Text: chunk}
			}
		}
		events <- AgentEvent{Text: full.String(), Final: true}
	}()

	return events, nil
}

// firstTextPart returns the first text part of the response's top candidate,
// or "" when the chunk carries no text.
func firstTextPart(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return ""
}
