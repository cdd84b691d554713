package store

import (
	"testing"

	"github.com/gigstage/console/chat-bridge/internal/domain"
)

func conv(id string) *domain.Conversation {
	return domain.NewDirectConversation(id,
		[]string{"admin@gigstage.io", id + "@gigstage.io"},
		[]string{"Admin", "Artist " + id},
	)
}

func convIDs(conversations []*domain.Conversation) []string {
	out := make([]string, len(conversations))
	for i, c := range conversations {
		out[i] = c.ID
	}
	return out
}

func TestConversationStoreReplaceAll(t *testing.T) {
	s := NewConversationStore()
	s.Prepend(conv("stale"))

	s.ReplaceAll([]*domain.Conversation{conv("a"), conv("b"), conv("a")})

	got := convIDs(s.All())
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected [a b], got %v", got)
	}
	if _, ok := s.Get("stale"); ok {
		t.Error("ReplaceAll should drop previous contents")
	}
}

func TestConversationStorePrependMovesExisting(t *testing.T) {
	s := NewConversationStore()
	s.ReplaceAll([]*domain.Conversation{conv("a"), conv("b"), conv("c")})

	s.Prepend(conv("c"))

	got := convIDs(s.All())
	if got[0] != "c" || len(got) != 3 {
		t.Fatalf("expected c first with no duplicate, got %v", got)
	}
}

func TestConversationStoreUpdate(t *testing.T) {
	s := NewConversationStore()
	s.ReplaceAll([]*domain.Conversation{conv("a"), conv("b")})

	updated := conv("a")
	updated.UnreadCount = 5
	if !s.Update(updated) {
		t.Fatal("update of existing conversation should succeed")
	}

	got, _ := s.Get("a")
	if got.UnreadCount != 5 {
		t.Errorf("expected unread 5, got %d", got.UnreadCount)
	}
	if ids := convIDs(s.All()); ids[0] != "a" {
		t.Errorf("update must not reorder, got %v", ids)
	}

	if s.Update(conv("missing")) {
		t.Error("update of unknown conversation should fail")
	}
}

func TestConversationStoreRemove(t *testing.T) {
	s := NewConversationStore()
	s.ReplaceAll([]*domain.Conversation{conv("a"), conv("b")})

	if !s.Remove("a") {
		t.Fatal("remove of existing conversation should succeed")
	}
	if s.Remove("a") {
		t.Error("second remove should fail")
	}
	if got := convIDs(s.All()); len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected [b], got %v", got)
	}
}

func TestConversationStoreClear(t *testing.T) {
	s := NewConversationStore()
	s.ReplaceAll([]*domain.Conversation{conv("a")})
	s.Clear()

	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}
