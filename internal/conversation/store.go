// Package conversation keeps multi-turn query history so follow-up
// questions can carry prior context into the prompt.
package conversation

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Turn is one query/response exchange.
type Turn struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is an ordered sequence of turns.
type Conversation struct {
	ID        string    `json:"conversation_id"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a thread-safe in-memory conversation registry with TTL
// eviction. Conversations idle past the TTL are dropped by Cleanup.
type Store struct {
	mu            sync.Mutex
	conversations map[string]*Conversation
	ttl           time.Duration
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		conversations: make(map[string]*Conversation),
		ttl:           ttl,
	}
}

// GetOrCreate returns the conversation with the given ID, or a fresh
// one when the ID is empty or unknown. An unknown ID starts a new
// conversation rather than failing, matching how clients resume after
// server restarts.
func (s *Store) GetOrCreate(id string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if conv, ok := s.conversations[id]; ok {
			return conv
		}
	}

	now := time.Now()
	conv := &Conversation{
		ID:        NewID(),
		Turns:     []Turn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations[conv.ID] = conv
	return conv
}

// AddTurn appends a query/response pair to the conversation.
func (s *Store) AddTurn(id, query, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return
	}
	now := time.Now()
	conv.Turns = append(conv.Turns, Turn{
		Query:     query,
		Response:  response,
		Timestamp: now,
	})
	conv.UpdatedAt = now
}

// Context renders the most recent turns as prompt history, oldest
// first. An empty string means there is no history to include.
func (s *Store) Context(id string, maxTurns int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok || len(conv.Turns) == 0 {
		return ""
	}

	turns := conv.Turns
	if maxTurns > 0 && len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}

	parts := make([]string, 0, len(turns)*2)
	for _, turn := range turns {
		parts = append(parts, fmt.Sprintf("Previous Q: %s", turn.Query))
		parts = append(parts, fmt.Sprintf("Previous A: %s", turn.Response))
	}
	return strings.Join(parts, "\n")
}

// Len reports the number of live conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// Cleanup removes conversations idle past the TTL.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, conv := range s.conversations {
		if now.Sub(conv.UpdatedAt) > s.ttl {
			delete(s.conversations, id)
		}
	}
}
