// chatd/types.go
package main

// ChatRequest is the inbound chat body. UserID and SessionID fall back to
// fixed defaults when omitted.
type ChatRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// ChatResponse echoes the session coordinates along with the agent's reply.
type ChatResponse struct {
	Response  string `json:"response"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// AgentEvent is one item in the agent's response stream. Intermediate events
// carry partial text; the terminal event has Final set and carries the
// completed reply (or Err when the run failed).
type AgentEvent struct {
	Text  string
	Final bool
	Err   error
}
