// webhookd/store.go
package main

import (
	"context"
	"log"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
)

const usersCollection = "users"

// serverTimestampSentinel marks a field whose value is assigned by the store
// at write time.
type serverTimestampSentinel struct{}

// ServerTimestamp is the sentinel value for server-assigned timestamps in
// Upsert field maps.
var ServerTimestamp = serverTimestampSentinel{}

// UserStore reads and merge-writes user profiles keyed by phone number.
// Both operations fail soft: Get reports absent on any backend error and
// Upsert returns false, with details kept in logs only.
type UserStore interface {
	Get(ctx context.Context, userID string) (map[string]any, bool)
	Upsert(ctx context.Context, userID string, fields map[string]any) bool
}

// NewUserStore builds the Firestore-backed store, or falls back to an
// in-memory store when no project is configured or the client cannot be
// built. The fallback keeps the service serving, with profiles living only
// for the process lifetime.
func NewUserStore(ctx context.Context, projectID string) UserStore {
	if projectID == "" {
		log.Println("GOOGLE_CLOUD_PROJECT not set; running with in-memory user store (degraded mode)")
		return newMemoryStore()
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		log.Printf("Could not initialize Firestore client: %v. Running with in-memory user store (degraded mode).", err)
		return newMemoryStore()
	}
	log.Printf("Firestore user store initialized (project %s)", projectID)
	return &firestoreStore{client: client}
}

type firestoreStore struct {
	client *firestore.Client
}

func (s *firestoreStore) Get(ctx context.Context, userID string) (map[string]any, bool) {
	snap, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, false
	}
	if err != nil {
		log.Printf("Error fetching user %s: %v", userID, err)
		return nil, false
	}
	return snap.Data(), true
}

func (s *firestoreStore) Upsert(ctx context.Context, userID string, fields map[string]any) bool {
	data := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestampSentinel); ok {
			data[k] = firestore.ServerTimestamp
			continue
		}
		data[k] = v
	}
	_, err := s.client.Collection(usersCollection).Doc(userID).Set(ctx, data, firestore.MergeAll)
	if err != nil {
		log.Printf("Error creating/updating user %s: %v", userID, err)
		return false
	}
	return true
}

// memoryStore is the credential-less fallback. It implements the same
// merge-on-write semantics as the Firestore store.
type memoryStore struct {
	mu   sync.Mutex
	docs map[string]map[string]any
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: make(map[string]map[string]any)}
}

func (s *memoryStore) Get(_ context.Context, userID string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[userID]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, true
}

func (s *memoryStore) Upsert(_ context.Context, userID string, fields map[string]any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[userID]
	if !ok {
		doc = make(map[string]any, len(fields))
		s.docs[userID] = doc
	}
	for k, v := range fields {
		if _, isTS := v.(serverTimestampSentinel); isTS {
			doc[k] = time.Now().UTC()
			continue
		}
		doc[k] = v
	}
	return true
}
