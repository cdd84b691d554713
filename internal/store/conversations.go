// Package store holds the in-memory working sets the chat controller
// operates on: the conversation list for the current user and the message
// history of the selected conversation. The gateway stays the source of
// truth; these containers only mirror it between fetches.
package store

import (
	"sync"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

// ConversationStore is an ordered, id-keyed collection of conversations.
// An id appears at most once; Prepend and ReplaceAll enforce that.
type ConversationStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*domain.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{byID: make(map[string]*domain.Conversation)}
}

func (s *ConversationStore) ReplaceAll(conversations []*domain.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = s.order[:0]
	s.byID = make(map[string]*domain.Conversation, len(conversations))
	for _, c := range conversations {
		if _, seen := s.byID[c.ID]; seen {
			continue
		}
		s.order = append(s.order, c.ID)
		s.byID[c.ID] = c
	}
}

func (s *ConversationStore) Prepend(c *domain.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[c.ID]; exists {
		s.removeLocked(c.ID)
	}
	s.order = append([]string{c.ID}, s.order...)
	s.byID[c.ID] = c
}

// Update replaces the stored conversation with the same id, keeping its
// position. Returns false when the id is unknown.
func (s *ConversationStore) Update(c *domain.Conversation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[c.ID]; !exists {
		return false
	}
	s.byID[c.ID] = c
	return true
}

func (s *ConversationStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

func (s *ConversationStore) removeLocked(id string) bool {
	if _, exists := s.byID[id]; !exists {
		return false
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *ConversationStore) Get(id string) (*domain.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	return c, ok
}

func (s *ConversationStore) All() []*domain.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Conversation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *ConversationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *ConversationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.byID = make(map[string]*domain.Conversation)
}
