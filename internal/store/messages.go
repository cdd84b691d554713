package store

import (
	"sync"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

// MessageStore holds the selected conversation's messages in ascending
// CreatedAt order. Pagination prepends older pages at the front; new sends
// append at the tail. Edits and removals never reorder.
type MessageStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{byID: make(map[string]*domain.Message)}
}

// ReplaceAll installs a fresh first page. Messages must already be in
// ascending CreatedAt order.
func (s *MessageStore) ReplaceAll(messages []*domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = s.order[:0]
	s.byID = make(map[string]*domain.Message, len(messages))
	for _, m := range messages {
		if _, seen := s.byID[m.ID]; seen {
			continue
		}
		s.order = append(s.order, m.ID)
		s.byID[m.ID] = m
	}
}

// PrependPage puts an older page (ascending order within itself) in front
// of the current sequence. Ids already present are skipped.
func (s *MessageStore) PrependPage(messages []*domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var front []string
	for _, m := range messages {
		if _, seen := s.byID[m.ID]; seen {
			continue
		}
		front = append(front, m.ID)
		s.byID[m.ID] = m
	}
	s.order = append(front, s.order...)
}

// Append adds a message at the tail of the sequence.
func (s *MessageStore) Append(m *domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[m.ID]; exists {
		return false
	}
	s.order = append(s.order, m.ID)
	s.byID[m.ID] = m
	return true
}

// Update replaces the message with the same id in place.
func (s *MessageStore) Update(m *domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[m.ID]; !exists {
		return false
	}
	s.byID[m.ID] = m
	return true
}

// Reconcile swaps a provisional local record for the authoritative one the
// gateway returned, keeping the original position in the sequence.
func (s *MessageStore) Reconcile(localID string, m *domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[localID]; !exists {
		return false
	}
	if localID == m.ID {
		s.byID[localID] = m
		return true
	}
	delete(s.byID, localID)
	s.byID[m.ID] = m
	for i, id := range s.order {
		if id == localID {
			s.order[i] = m.ID
			break
		}
	}
	return true
}

func (s *MessageStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

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

func (s *MessageStore) Get(id string) (*domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	return m, ok
}

func (s *MessageStore) All() []*domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Message, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *MessageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.byID = make(map[string]*domain.Message)
}
