// chatd/sessions.go
package main

import (
	"sync"

	"github.com/google/generative-ai-go/genai"
)

// sessionKey identifies one conversation context.
type sessionKey struct {
	App       string
	UserID    string
	SessionID string
}

// Session holds the chat state for one (app, user, session) triple. The
// mutex serializes same-session runs; distinct sessions never contend.
type Session struct {
	mu   sync.Mutex
	chat *genai.ChatSession
}

// SessionService tracks sessions in process memory. Sessions are created
// lazily on first use and lost on restart.
type SessionService struct {
	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

func NewSessionService() *SessionService {
	return &SessionService{sessions: make(map[sessionKey]*Session)}
}

// GetOrCreate retrieves an existing session or creates a new one. The second
// return value reports whether the session already existed.
func (s *SessionService) GetOrCreate(app, userID, sessionID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey{App: app, UserID: userID, SessionID: sessionID}
	session, ok := s.sessions[key]
	if !ok {
		session = &Session{}
		s.sessions[key] = session
	}
	return session, ok
}
